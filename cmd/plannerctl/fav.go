package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/starstrip/starstrip-planner/internal/catalog"
	"github.com/starstrip/starstrip-planner/internal/session"
)

func newFavCmd() *cobra.Command {
	favCmd := &cobra.Command{Use: "fav", Short: "Local favorites"}

	favCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List favorites of the active profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(_ context.Context, s *session.Session) error {
				return printJSON(cmd.OutOrStdout(), s.Favorites.List())
			})
		},
	})

	favCmd.AddCommand(&cobra.Command{
		Use:   "add-attraction ID",
		Short: "Favorite a catalog attraction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ok := catalog.Default().Attraction(args[0])
			if !ok {
				return fmt.Errorf("unknown attraction %q", args[0])
			}
			return withSession(cmd, func(_ context.Context, s *session.Session) error {
				return printJSON(cmd.OutOrStdout(), s.Favorites.AddAttraction(a))
			})
		},
	})

	favCmd.AddCommand(&cobra.Command{
		Use:   "add-restaurant ID",
		Short: "Favorite a catalog meal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, ok := catalog.Default().Meal(args[0])
			if !ok {
				return fmt.Errorf("unknown meal %q", args[0])
			}
			return withSession(cmd, func(_ context.Context, s *session.Session) error {
				return printJSON(cmd.OutOrStdout(), s.Favorites.AddRestaurant(m))
			})
		},
	})

	favCmd.AddCommand(&cobra.Command{
		Use:   "rm-attraction ID",
		Short: "Unfavorite an attraction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(_ context.Context, s *session.Session) error {
				return printJSON(cmd.OutOrStdout(), s.Favorites.RemoveAttraction(args[0]))
			})
		},
	})

	favCmd.AddCommand(&cobra.Command{
		Use:   "rm-restaurant ID",
		Short: "Unfavorite a meal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(_ context.Context, s *session.Session) error {
				return printJSON(cmd.OutOrStdout(), s.Favorites.RemoveRestaurant(args[0]))
			})
		},
	})

	return favCmd
}
