// Package listening collects a listener's top artists from Spotify.
package listening

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/olivia646/spotify-concerts/internal/concerts"
	"github.com/olivia646/spotify-concerts/pkg/spotify"
)

// TopArtistsSource is the slice of the Spotify client the collector uses.
type TopArtistsSource interface {
	TopArtists(ctx context.Context, accessToken string, timeRange spotify.TimeRange, limit int) ([]spotify.Artist, error)
}

// Collector gathers top artists across every time window.
type Collector struct {
	source TopArtistsSource
	logger zerolog.Logger
}

// NewCollector creates a collector reading from source.
func NewCollector(source TopArtistsSource, logger zerolog.Logger) *Collector {
	return &Collector{
		source: source,
		logger: logger.With().Str("component", "listening").Logger(),
	}
}

// TopArtists fetches the short, medium and long term windows concurrently
// and aggregates them into one ranked list. Any window failing fails the
// whole collection.
func (c *Collector) TopArtists(ctx context.Context, accessToken string) ([]concerts.Artist, error) {
	windows := make([][]concerts.Artist, len(spotify.TimeRanges))

	g, ctx := errgroup.WithContext(ctx)
	for i, timeRange := range spotify.TimeRanges {
		g.Go(func() error {
			artists, err := c.source.TopArtists(ctx, accessToken, timeRange, spotify.MaxTopLimit)
			if err != nil {
				return fmt.Errorf("failed to fetch %s top artists: %w", timeRange, err)
			}
			windows[i] = normalize(artists)
			c.logger.Debug().
				Str("time_range", string(timeRange)).
				Int("artists", len(artists)).
				Msg("fetched top artists")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Windows are aggregated in fixed order regardless of completion order.
	ranked := concerts.Aggregate(windows...)
	c.logger.Info().Int("artists", len(ranked)).Msg("aggregated top artists")
	return ranked, nil
}

func normalize(artists []spotify.Artist) []concerts.Artist {
	out := make([]concerts.Artist, 0, len(artists))
	for _, a := range artists {
		artist := concerts.Artist{
			ID:     a.ID,
			Name:   a.Name,
			Genres: a.Genres,
		}
		if artist.Genres == nil {
			artist.Genres = []string{}
		}
		if len(a.Images) > 0 {
			artist.ImageURL = a.Images[0].URL
		}
		out = append(out, artist)
	}
	return out
}
