package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/starstrip/starstrip-planner/internal/model"
	"github.com/starstrip/starstrip-planner/internal/profile"
	"github.com/starstrip/starstrip-planner/internal/session"
)

func newPrefsCmd() *cobra.Command {
	prefsCmd := &cobra.Command{Use: "prefs", Short: "Traveller preferences shared by every profile on this device"}

	prefsCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show saved preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(_ context.Context, s *session.Session) error {
				return printJSON(cmd.OutOrStdout(), s.Preferences.Get())
			})
		},
	})

	var nationality, pace, budget string
	var interests []string
	var completed bool
	set := &cobra.Command{
		Use:   "set",
		Short: "Update the given fields; others are kept",
		RunE: func(cmd *cobra.Command, args []string) error {
			var u profile.PreferencesUpdate
			flags := cmd.Flags()
			if flags.Changed("nationality") {
				u.Nationality = &nationality
			}
			if flags.Changed("pace") {
				p := model.TravelPace(pace)
				u.TravelPace = &p
			}
			if flags.Changed("budget") {
				b := model.BudgetLevel(budget)
				u.BudgetLevel = &b
			}
			if flags.Changed("interest") {
				u.Interests = interests
			}
			if flags.Changed("completed") {
				u.HasCompletedProfile = &completed
			}
			return withSession(cmd, func(_ context.Context, s *session.Session) error {
				got, err := s.Preferences.Update(u)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), got)
			})
		},
	}
	set.Flags().StringVar(&nationality, "nationality", "", "Two-letter nationality code, empty to clear")
	set.Flags().StringVar(&pace, "pace", "", "relaxed, moderate or fast")
	set.Flags().StringVar(&budget, "budget", "", "budget, moderate or luxury")
	set.Flags().StringSliceVar(&interests, "interest", nil, "Interest tag; repeat or comma-separate to replace the list")
	set.Flags().BoolVar(&completed, "completed", false, "Mark the profile questionnaire as done")
	prefsCmd.AddCommand(set)

	prefsCmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restore default preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(_ context.Context, s *session.Session) error {
				return printJSON(cmd.OutOrStdout(), s.Preferences.Reset())
			})
		},
	})
	return prefsCmd
}

// savedNationality returns the nationality from local preferences, if any.
func savedNationality(cmd *cobra.Command) (string, error) {
	var n string
	err := withSession(cmd, func(_ context.Context, s *session.Session) error {
		n = s.Preferences.Get().Nationality
		return nil
	})
	return n, err
}
