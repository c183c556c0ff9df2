package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/olivia646/spotify-concerts/internal/concerts"
	"github.com/olivia646/spotify-concerts/internal/config"
	"github.com/olivia646/spotify-concerts/internal/listening"
	"github.com/olivia646/spotify-concerts/internal/logging"
	"github.com/olivia646/spotify-concerts/pkg/spotify"
	"github.com/olivia646/spotify-concerts/pkg/ticketmaster"
)

// refreshMargin renews tokens slightly before they lapse.
const refreshMargin = time.Minute

// pipeline bundles the clients a resolution needs.
type pipeline struct {
	spotify   *spotify.Client
	collector *listening.Collector
	resolver  *concerts.Resolver
}

func newSpotifyClient(cfg *config.Config, logger zerolog.Logger) (*spotify.Client, error) {
	return spotify.NewClient(spotify.Config{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		Logger:       logging.ForSDK(logger, "spotify"),
	})
}

// newPipeline wires both API clients into a collector and a resolver. The
// matcher and fetcher share one pacer so every catalog call is spaced out.
func newPipeline(cfg *config.Config, metrics *concerts.Metrics, logger zerolog.Logger) (*pipeline, error) {
	sp, err := newSpotifyClient(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create spotify client: %w", err)
	}

	tm, err := ticketmaster.NewClient(ticketmaster.Config{
		APIKey: cfg.Ticketmaster.APIKey,
		Logger: logging.ForSDK(logger, "ticketmaster"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ticketmaster client: %w", err)
	}

	clock := concerts.SystemClock()
	pacer := concerts.NewPacer(cfg.Resolve.PaceInterval, clock)

	resolver := concerts.NewResolver(
		concerts.NewAttractionMatcher(tm, pacer),
		concerts.NewEventFetcher(tm, pacer),
		concerts.Config{
			MaxArtists:       cfg.MaxArtists,
			RateLimitBackoff: cfg.Resolve.RateLimitBackoff,
			Clock:            clock,
			Metrics:          metrics,
		},
		logger,
	)

	return &pipeline{
		spotify:   sp,
		collector: listening.NewCollector(sp, logger),
		resolver:  resolver,
	}, nil
}

// accessToken returns a usable Spotify token, refreshing and saving it when
// the stored one has expired.
func (p *pipeline) accessToken(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (string, error) {
	if cfg.Spotify.AccessToken == "" {
		return "", fmt.Errorf("not logged in to Spotify. Run 'spotify-concerts auth' first")
	}

	stored := &spotify.Token{Expiry: cfg.Spotify.TokenExpiry}
	if !stored.Expired(time.Now().Add(refreshMargin)) {
		return cfg.Spotify.AccessToken, nil
	}
	if cfg.Spotify.RefreshToken == "" {
		return "", fmt.Errorf("spotify token expired. Run 'spotify-concerts auth' again")
	}

	logger.Info().Msg("Refreshing Spotify access token")
	token, err := p.spotify.RefreshToken(ctx, cfg.Spotify.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh spotify token: %w", err)
	}

	cfg.Spotify.AccessToken = token.AccessToken
	cfg.Spotify.RefreshToken = token.RefreshToken
	cfg.Spotify.TokenExpiry = token.Expiry
	if err := cfg.Save(); err != nil {
		logger.Warn().Err(err).Msg("Failed to save refreshed token")
	}
	return token.AccessToken, nil
}

// topArtists loads the listener's ranked artists.
func (p *pipeline) topArtists(ctx context.Context, cfg *config.Config, logger zerolog.Logger) ([]concerts.Artist, error) {
	token, err := p.accessToken(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	artists, err := p.collector.TopArtists(ctx, token)
	if errors.Is(err, spotify.ErrUnauthorized) {
		return nil, fmt.Errorf("spotify rejected the saved token. Run 'spotify-concerts auth' again: %w", err)
	}
	return artists, err
}
