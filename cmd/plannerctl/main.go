package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/starstrip/starstrip-planner/internal/localstate"
	"github.com/starstrip/starstrip-planner/internal/logger"
)

var (
	apiURL  string
	homeDir string
	debug   bool
)

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "plannerctl",
		Short:         "Plan trips locally and talk to a StarsTrip planner service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log.Logger = logger.Console(cmd.ErrOrStderr(), debug)
			if homeDir != "" {
				return os.Setenv(localstate.EnvHome, homeDir)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api", getEnv("STARSTRIP_API_URL", "http://localhost:8080"), "Planner service base URL")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "Directory for local session state (default ~/.starstrip)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable verbose debug output")

	// Local session
	rootCmd.AddCommand(newIdentityCmd())
	rootCmd.AddCommand(newPlanCmd())
	rootCmd.AddCommand(newFavCmd())
	rootCmd.AddCommand(newPrefsCmd())

	// Remote service
	rootCmd.AddCommand(newRouteCmd())
	rootCmd.AddCommand(newTripsCmd())
	rootCmd.AddCommand(newCarbonCmd())
	rootCmd.AddCommand(newHolidaysCmd())
	rootCmd.AddCommand(newProfilesCmd())

	return rootCmd
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
