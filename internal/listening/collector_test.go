package listening

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olivia646/spotify-concerts/pkg/spotify"
)

type fakeSource struct {
	mu      sync.Mutex
	windows map[spotify.TimeRange][]spotify.Artist
	errs    map[spotify.TimeRange]error
	delays  map[spotify.TimeRange]time.Duration
	limits  []int
	tokens  []string
}

func (f *fakeSource) TopArtists(ctx context.Context, accessToken string, timeRange spotify.TimeRange, limit int) ([]spotify.Artist, error) {
	f.mu.Lock()
	f.limits = append(f.limits, limit)
	f.tokens = append(f.tokens, accessToken)
	f.mu.Unlock()

	if d := f.delays[timeRange]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := f.errs[timeRange]; err != nil {
		return nil, err
	}
	return f.windows[timeRange], nil
}

func TestCollector_AggregatesInWindowOrder(t *testing.T) {
	src := &fakeSource{
		windows: map[spotify.TimeRange][]spotify.Artist{
			spotify.ShortTerm:  {{ID: "a", Name: "Alpha"}, {ID: "b", Name: "Beta"}},
			spotify.MediumTerm: {{ID: "b", Name: "Beta"}, {ID: "c", Name: "Gamma"}},
			spotify.LongTerm:   {{ID: "c", Name: "Gamma"}, {ID: "b", Name: "Beta"}},
		},
		// The short window finishing last must not change the ranking.
		delays: map[spotify.TimeRange]time.Duration{spotify.ShortTerm: 20 * time.Millisecond},
	}
	c := NewCollector(src, zerolog.Nop())

	got, err := c.TopArtists(context.Background(), "token-123")

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Beta", got[0].Name)
	assert.Equal(t, 3, got[0].AppearanceCount)
	assert.Equal(t, "Gamma", got[1].Name)
	assert.Equal(t, "Alpha", got[2].Name)

	assert.Equal(t, []int{50, 50, 50}, src.limits)
	assert.Equal(t, []string{"token-123", "token-123", "token-123"}, src.tokens)
}

func TestCollector_NormalizesArtists(t *testing.T) {
	src := &fakeSource{windows: map[spotify.TimeRange][]spotify.Artist{
		spotify.ShortTerm: {{
			ID:     "x",
			Name:   "Xiu Xiu",
			Genres: []string{"experimental"},
			Images: []spotify.Image{{URL: "wide.jpg", Width: 640}, {URL: "narrow.jpg", Width: 64}},
		}},
		spotify.MediumTerm: {{ID: "y", Name: "Yo La Tengo"}},
	}}
	c := NewCollector(src, zerolog.Nop())

	got, err := c.TopArtists(context.Background(), "t")

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "wide.jpg", got[0].ImageURL)
	assert.Equal(t, []string{"experimental"}, got[0].Genres)
	assert.Equal(t, "", got[1].ImageURL)
	assert.Equal(t, []string{}, got[1].Genres)
}

func TestCollector_WindowErrorFailsCollection(t *testing.T) {
	unauthorized := &spotify.Error{StatusCode: 401, Message: "The access token expired"}
	src := &fakeSource{errs: map[spotify.TimeRange]error{spotify.MediumTerm: unauthorized}}
	c := NewCollector(src, zerolog.Nop())

	got, err := c.TopArtists(context.Background(), "stale")

	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, spotify.ErrUnauthorized))
	assert.Contains(t, err.Error(), "medium_term")
}
