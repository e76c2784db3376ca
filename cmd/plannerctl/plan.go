package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/starstrip/starstrip-planner/internal/api/validate"
	"github.com/starstrip/starstrip-planner/internal/catalog"
	"github.com/starstrip/starstrip-planner/internal/model"
	"github.com/starstrip/starstrip-planner/internal/profile"
	"github.com/starstrip/starstrip-planner/internal/session"
)

const maxPlanDays = 60

func newPlanCmd() *cobra.Command {
	planCmd := &cobra.Command{Use: "plan", Short: "Local route planner"}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the active plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(_ context.Context, s *session.Session) error {
				return printJSON(cmd.OutOrStdout(), s.Planner.State())
			})
		},
	}
	planCmd.AddCommand(show)

	var city, from, to, scheme string
	set := &cobra.Command{
		Use:   "set",
		Short: "Update start, dates or scheme; the itinerary regenerates once all are set",
		RunE: func(cmd *cobra.Command, args []string) error {
			var u profile.PlannerUpdate
			if cmd.Flags().Changed("city") {
				u.StartLocation = &city
			}
			if from != "" || to != "" {
				f, t, err := validate.DateRange(from, to, maxPlanDays)
				if err != nil {
					return err
				}
				u.DateRange = &model.DateRange{From: &f, To: &t}
			}
			if scheme != "" {
				sc, err := validate.Scheme(scheme)
				if err != nil {
					return err
				}
				u.Scheme = &sc
			}
			return withSession(cmd, func(_ context.Context, s *session.Session) error {
				return printJSON(cmd.OutOrStdout(), s.Planner.Update(u))
			})
		},
	}
	set.Flags().StringVar(&city, "city", "", "Start city")
	set.Flags().StringVar(&from, "from", "", "First day (YYYY-MM-DD)")
	set.Flags().StringVar(&to, "to", "", "Last day (YYYY-MM-DD)")
	set.Flags().StringVar(&scheme, "scheme", "", "time, experience, value or lowCarbon")
	planCmd.AddCommand(set)

	step := &cobra.Command{
		Use:   "step N",
		Short: "Move the wizard to step N (0-3)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("step must be a number")
			}
			return withSession(cmd, func(_ context.Context, s *session.Session) error {
				return printJSON(cmd.OutOrStdout(), s.Planner.SetStep(n))
			})
		},
	}
	planCmd.AddCommand(step)

	planCmd.AddCommand(&cobra.Command{
		Use:   "regenerate",
		Short: "Draw a new itinerary for the current inputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(_ context.Context, s *session.Session) error {
				return printJSON(cmd.OutOrStdout(), s.Planner.Regenerate())
			})
		},
	})

	planCmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Clear the active plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(_ context.Context, s *session.Session) error {
				return printJSON(cmd.OutOrStdout(), s.Planner.Reset())
			})
		},
	})

	planCmd.AddCommand(&cobra.Command{
		Use:   "add-attraction DATE ID",
		Short: "Add a catalog attraction to a day",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := validate.Date("date", args[0]); err != nil {
				return err
			}
			a, ok := catalog.Default().Attraction(args[1])
			if !ok {
				return fmt.Errorf("unknown attraction %q", args[1])
			}
			return withSession(cmd, func(_ context.Context, s *session.Session) error {
				return printJSON(cmd.OutOrStdout(), s.Planner.AddAttraction(args[0], a))
			})
		},
	})

	planCmd.AddCommand(&cobra.Command{
		Use:   "remove-attraction DATE ID",
		Short: "Remove an attraction from a day",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(_ context.Context, s *session.Session) error {
				return printJSON(cmd.OutOrStdout(), s.Planner.RemoveAttraction(args[0], args[1]))
			})
		},
	})

	return planCmd
}
