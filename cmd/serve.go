package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/olivia646/spotify-concerts/internal/concerts"
	"github.com/olivia646/spotify-concerts/internal/config"
	"github.com/olivia646/spotify-concerts/internal/session"
	"github.com/olivia646/spotify-concerts/internal/web"
)

const sessionCleanupInterval = time.Hour

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the concert finder web server",
	Long: `Run an HTTP server that lets visitors log in with Spotify and list
upcoming concerts by their top artists.

Routes:
- /login and /callback run the Spotify authorization flow
- /concerts?city=NAME returns the concerts as JSON (the city is remembered)
- /logout ends the session
- /healthz and /metrics for monitoring

Sessions are stored in SQLite. The server handles graceful shutdown on
SIGINT/SIGTERM; a second signal forces exit.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if err := cfg.Validate(config.SectionServe); err != nil {
		return err
	}

	logger := newLogger("info")
	logger.Info().
		Str("version", version).
		Msg("Starting spotify-concerts server")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	p, err := newPipeline(cfg, concerts.NewMetrics(registry), logger)
	if err != nil {
		return err
	}

	store, err := session.NewStore(cfg.Server.SessionDB, cfg.Server.SessionMaxAge)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer store.Close()
	logger.Info().Str("session_db", cfg.Server.SessionDB).Msg("Using session database")

	redirectURI := cfg.Spotify.RedirectURI
	if cfg.Server.BaseURL != "" {
		redirectURI = strings.TrimRight(cfg.Server.BaseURL, "/") + "/callback"
	}

	server := web.New(web.Config{
		Addr:           cfg.Server.Addr,
		RedirectURI:    redirectURI,
		DefaultCity:    cfg.City,
		SessionMaxAge:  cfg.Server.SessionMaxAge,
		RequestTimeout: cfg.Server.RequestTimeout,
		SecureCookies:  strings.HasPrefix(redirectURI, "https://"),
	}, web.Deps{
		Auth:      p.spotify,
		Collector: p.collector,
		Resolver:  p.resolver,
		Sessions:  store,
		Registry:  registry,
	}, logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle first signal gracefully, second signal forces exit
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
		case <-ctx.Done():
			return
		}
		logger.Info().Msg("Shutdown signal received, initiating graceful shutdown")
		cancel()

		<-sigChan
		logger.Warn().Msg("Second shutdown signal received, forcing exit")
		os.Exit(1)
	}()

	go cleanupSessions(ctx, store, logger)

	if err := server.Run(ctx); err != nil {
		return err
	}

	logger.Info().Msg("Server stopped")
	return nil
}

// cleanupSessions prunes idle sessions until ctx is done.
func cleanupSessions(ctx context.Context, store *session.Store, logger zerolog.Logger) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := store.Cleanup(ctx)
			if err != nil {
				logger.Warn().Err(err).Msg("Session cleanup failed")
				continue
			}
			if deleted > 0 {
				logger.Debug().Int64("deleted", deleted).Msg("Removed idle sessions")
			}
		}
	}
}
