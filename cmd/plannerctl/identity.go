package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/starstrip/starstrip-planner/internal/model"
	"github.com/starstrip/starstrip-planner/internal/session"
)

type whoami struct {
	ActiveKey string      `json:"activeKey"`
	User      *model.User `json:"user,omitempty"`
	GuestID   string      `json:"guestId,omitempty"`
}

func identityView(s *session.Session) whoami {
	st := s.Identity.Snapshot()
	return whoami{ActiveKey: s.Identity.ActiveKey(), User: st.User, GuestID: st.GuestID}
}

func newIdentityCmd() *cobra.Command {
	identityCmd := &cobra.Command{Use: "identity", Short: "Local identity"}
	identityCmd.AddCommand(newShowIdentityCmd(), newGuestCmd(), newLoginCmd(), newLogoutCmd())
	return identityCmd
}

func newShowIdentityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the active identity and profile key",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(_ context.Context, s *session.Session) error {
				return printJSON(cmd.OutOrStdout(), identityView(s))
			})
		},
	}
}

func newGuestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guest",
		Short: "Start (or keep) a guest profile; no-op while signed in",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(_ context.Context, s *session.Session) error {
				s.Identity.EnsureGuest()
				return printJSON(cmd.OutOrStdout(), identityView(s))
			})
		},
	}
}

func newLoginCmd() *cobra.Command {
	var id, email, provider string
	var remember bool
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in; any guest profile is merged into the user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(_ context.Context, s *session.Session) error {
				s.Identity.SetRemember(remember)
				if id == "" {
					if _, err := s.Identity.LoginWithEmail(email); err != nil {
						return err
					}
				} else if err := s.Identity.Login(model.User{ID: id, Email: email, Provider: model.Provider(provider)}); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), identityView(s))
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "User ID from an external provider")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Email address")
	cmd.Flags().StringVar(&provider, "provider", "", "Auth provider (local, apple, google, facebook, credentials)")
	cmd.Flags().BoolVar(&remember, "remember", false, "Remember this login")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out, keeping any guest id",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(_ context.Context, s *session.Session) error {
				s.Identity.Logout()
				return printJSON(cmd.OutOrStdout(), identityView(s))
			})
		},
	}
}
