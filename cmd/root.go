package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/olivia646/spotify-concerts/internal/logging"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

var (
	logFile  string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "spotify-concerts",
	Short: "Find live concerts by the artists you listen to",
	Long: `spotify-concerts turns your Spotify listening history into a list of
upcoming concerts near a city.

It reads your top artists across the short, medium and long term windows,
looks each one up in the Ticketmaster catalog, and merges their upcoming
music events into one date-ordered list.

Run 'spotify-concerts auth' once, then 'spotify-concerts find --city Chicago'.`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path (default: stderr)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// newLogger builds the command logger, using fallback when --log-level is unset.
func newLogger(fallback string) zerolog.Logger {
	level := logLevel
	if level == "" {
		level = fallback
	}
	return logging.Setup(logFile, level)
}
