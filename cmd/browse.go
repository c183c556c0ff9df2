package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/olivia646/spotify-concerts/internal/concerts"
	"github.com/olivia646/spotify-concerts/internal/config"
	"github.com/olivia646/spotify-concerts/internal/tui"
)

// browseCmd represents the browse command
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse upcoming concerts in a terminal UI",
	Long: `Open a terminal browser of upcoming concerts by your top artists.

The browser includes:
- A date-ordered list of concerts with artist and venue
- Details for the selected concert, including the ticket link
- A summary of how many artists had events, no catalog match, or were rate limited

Press 'c' to search another city, 'r' to reload, 'q' to quit.
Logs go to --log-file, or nowhere, while the browser is open.`,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)

	browseCmd.Flags().StringP("city", "c", "", "City to start with (overrides config)")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Console logs would draw over the UI
	logger := zerolog.Nop()
	if logFile != "" {
		logger = newLogger("info")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if city, _ := cmd.Flags().GetString("city"); city != "" {
		cfg.City = city
	}
	if err := cfg.Validate(config.SectionFind); err != nil {
		return err
	}

	p, err := newPipeline(cfg, nil, logger)
	if err != nil {
		return err
	}

	app := tui.New(cachedLoader(p, cfg, logger), cfg.City)
	return app.Run(ctx)
}

// cachedLoader fetches top artists once and reuses them for every city.
func cachedLoader(p *pipeline, cfg *config.Config, logger zerolog.Logger) tui.Loader {
	var (
		mu      sync.Mutex
		artists []concerts.Artist
	)

	return func(ctx context.Context, city string) (*concerts.Result, error) {
		mu.Lock()
		defer mu.Unlock()

		if artists == nil {
			loaded, err := p.topArtists(ctx, cfg, logger)
			if err != nil {
				return nil, err
			}
			artists = loaded
		}
		return p.resolver.Resolve(ctx, artists, city)
	}
}
