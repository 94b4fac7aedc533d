package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "seabattle",
		Short: "Battleship game server",
		Long: `seabattle runs the battleship game server: a websocket API for
registration, matchmaking rooms, fleet placement and turn-based play,
plus a single-player bot opponent.

Configuration is read from SEABATTLE_* environment variables.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
