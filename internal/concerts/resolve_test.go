package concerts

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olivia646/spotify-concerts/pkg/ticketmaster"
)

func newTestResolver(m Matcher, f Fetcher, clock Clock) *Resolver {
	return NewResolver(m, f, Config{Clock: clock}, zerolog.Nop())
}

func concertIDs(concerts []Concert) []string {
	out := make([]string, len(concerts))
	for i, c := range concerts {
		out[i] = c.ID
	}
	return out
}

func TestResolve_DeduplicatesAndKeepsFirstAttribution(t *testing.T) {
	m := &fakeMatcher{results: map[string]matchResult{
		"First":  {id: "K1"},
		"Second": {id: "K2"},
	}}
	f := &fakeFetcher{results: map[string]fetchResult{
		"K1": {concerts: []Concert{concert("shared", "2024-07-01"), concert("only1", "2024-07-03")}},
		"K2": {concerts: []Concert{concert("shared", "2024-07-01"), concert("only2", "2024-07-02")}},
	}}
	artists := []Artist{
		{ID: "a1", Name: "First", ImageURL: "first.jpg"},
		{ID: "a2", Name: "Second"},
	}

	res, err := newTestResolver(m, f, newVirtualClock()).Resolve(context.Background(), artists, "Denver")

	require.NoError(t, err)
	require.Len(t, res.Concerts, 3)
	assert.Equal(t, []string{"shared", "only2", "only1"}, concertIDs(res.Concerts))

	byID := map[string]Concert{}
	for _, c := range res.Concerts {
		byID[c.ID] = c
	}
	assert.Equal(t, ArtistRef{Name: "First", ImageURL: "first.jpg"}, byID["shared"].Artist)
	assert.Equal(t, "Second", byID["only2"].Artist.Name)

	require.Len(t, res.Outcomes, 2)
	assert.Equal(t, 2, res.Outcomes[0].Added)
	assert.Equal(t, 1, res.Outcomes[1].Added)
	assert.Equal(t, []string{"Denver", "Denver"}, f.cities)
}

func TestResolve_StableDateOrderWithSentinelLast(t *testing.T) {
	m := &fakeMatcher{results: map[string]matchResult{"A": {id: "K1"}, "B": {id: "K2"}}}
	f := &fakeFetcher{results: map[string]fetchResult{
		"K1": {concerts: []Concert{
			concert("undated", SentinelDate),
			concert("late", "2024-12-01"),
			concert("same-a", "2024-08-08"),
		}},
		"K2": {concerts: []Concert{
			concert("same-b", "2024-08-08"),
			concert("early", "2024-01-01"),
			concert("blank", ""),
		}},
	}}
	artists := []Artist{{ID: "1", Name: "A"}, {ID: "2", Name: "B"}}

	res, err := newTestResolver(m, f, newVirtualClock()).Resolve(context.Background(), artists, "Boston")

	require.NoError(t, err)
	assert.Equal(t,
		[]string{"early", "same-a", "same-b", "late", "undated", "blank"},
		concertIDs(res.Concerts))
}

func TestResolve_SkipsNoMatch(t *testing.T) {
	m := &fakeMatcher{results: map[string]matchResult{"Known": {id: "K1"}}}
	f := &fakeFetcher{results: map[string]fetchResult{
		"K1": {concerts: []Concert{concert("c1", "2024-03-03")}},
	}}
	artists := []Artist{{ID: "1", Name: "Unknown"}, {ID: "2", Name: "Known"}}

	res, err := newTestResolver(m, f, newVirtualClock()).Resolve(context.Background(), artists, "Seattle")

	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, concertIDs(res.Concerts))
	assert.Equal(t, []string{"K1"}, f.calls)
	require.Len(t, res.Outcomes, 2)
	assert.Equal(t, StateNoMatch, res.Outcomes[0].State)
	assert.Equal(t, StateFetched, res.Outcomes[1].State)
	assert.Equal(t, "K1", res.Outcomes[1].AttractionID)
}

func TestResolve_RateLimitBacksOffAndSkips(t *testing.T) {
	limited := &ticketmaster.Error{Op: "attractions", StatusCode: 429}
	m := &fakeMatcher{results: map[string]matchResult{
		"Busy":  {err: limited},
		"Calm":  {id: "K2"},
		"Flaky": {id: "K3"},
	}}
	f := &fakeFetcher{results: map[string]fetchResult{
		"K2": {concerts: []Concert{concert("c2", "2024-04-04")}},
		"K3": {err: &ticketmaster.Error{Op: "events", StatusCode: 429}},
	}}
	clock := newVirtualClock()
	artists := []Artist{{ID: "1", Name: "Busy"}, {ID: "2", Name: "Calm"}, {ID: "3", Name: "Flaky"}}

	res, err := newTestResolver(m, f, clock).Resolve(context.Background(), artists, "Miami")

	require.NoError(t, err)
	assert.Equal(t, []string{"c2"}, concertIDs(res.Concerts))
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, clock.Sleeps())

	states := make([]ArtistState, len(res.Outcomes))
	for i, o := range res.Outcomes {
		states[i] = o.State
	}
	assert.Equal(t, []ArtistState{StateRateLimited, StateFetched, StateRateLimited}, states)
}

func TestResolve_FatalErrorAborts(t *testing.T) {
	serverErr := &ticketmaster.Error{Op: "events", StatusCode: 500}
	m := &fakeMatcher{results: map[string]matchResult{
		"Good":   {id: "K1"},
		"Broken": {id: "K2"},
		"Later":  {id: "K3"},
	}}
	f := &fakeFetcher{results: map[string]fetchResult{
		"K1": {concerts: []Concert{concert("c1", "2024-02-02")}},
		"K2": {err: serverErr},
	}}
	artists := []Artist{{ID: "1", Name: "Good"}, {ID: "2", Name: "Broken"}, {ID: "3", Name: "Later"}}

	res, err := newTestResolver(m, f, newVirtualClock()).Resolve(context.Background(), artists, "Reno")

	require.Error(t, err)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), `"Broken"`)
	assert.True(t, errors.Is(err, &ticketmaster.Error{StatusCode: 500}))
	assert.False(t, errors.Is(err, ticketmaster.ErrRateLimited))
	assert.Equal(t, []string{"Good", "Broken"}, m.calls)
}

func TestResolve_MatcherNetworkErrorAborts(t *testing.T) {
	boom := errors.New("dial tcp: connection refused")
	m := &fakeMatcher{results: map[string]matchResult{"A": {err: boom}}}

	_, err := newTestResolver(m, &fakeFetcher{}, newVirtualClock()).
		Resolve(context.Background(), []Artist{{ID: "1", Name: "A"}}, "Tulsa")

	assert.ErrorIs(t, err, boom)
}

func TestResolve_CapsArtists(t *testing.T) {
	var artists []Artist
	results := map[string]matchResult{}
	for i := 0; i < 30; i++ {
		name := fmt.Sprintf("artist-%02d", i)
		artists = append(artists, Artist{ID: name, Name: name})
		results[name] = matchResult{id: "K" + name}
	}
	m := &fakeMatcher{results: results}
	f := &fakeFetcher{results: map[string]fetchResult{}}

	res, err := newTestResolver(m, f, newVirtualClock()).Resolve(context.Background(), artists, "Omaha")

	require.NoError(t, err)
	assert.Len(t, m.calls, DefaultMaxArtists)
	assert.Equal(t, "artist-24", m.calls[len(m.calls)-1])
	assert.Len(t, res.Outcomes, DefaultMaxArtists)
	assert.NotNil(t, res.Concerts)
	assert.Empty(t, res.Concerts)
}

func TestResolve_CustomCap(t *testing.T) {
	m := &fakeMatcher{}
	artists := []Artist{{ID: "1", Name: "A"}, {ID: "2", Name: "B"}, {ID: "3", Name: "C"}}
	r := NewResolver(m, &fakeFetcher{}, Config{MaxArtists: 2, Clock: newVirtualClock()}, zerolog.Nop())

	_, err := r.Resolve(context.Background(), artists, "Provo")

	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, m.calls)
}

func TestResolve_CancelledDuringBackoff(t *testing.T) {
	m := &fakeMatcher{results: map[string]matchResult{
		"A": {err: &ticketmaster.Error{StatusCode: 429}},
	}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestResolver(m, &fakeFetcher{}, newVirtualClock()).
		Resolve(ctx, []Artist{{ID: "1", Name: "A"}}, "Waco")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolve_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	m := &fakeMatcher{results: map[string]matchResult{"A": {id: "K1"}}}
	f := &fakeFetcher{results: map[string]fetchResult{
		"K1": {concerts: []Concert{concert("c1", "2024-01-01"), concert("c2", "2024-01-02")}},
	}}
	r := NewResolver(m, f, Config{Clock: newVirtualClock(), Metrics: metrics}, zerolog.Nop())

	_, err := r.Resolve(context.Background(), []Artist{{ID: "1", Name: "A"}, {ID: "2", Name: "B"}}, "Yuma")

	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.resolutions.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.artists.WithLabelValues("fetched")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.artists.WithLabelValues("no_match")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.concerts))
}

func TestAccumulator_AbsorbIsPure(t *testing.T) {
	start := accumulator{}
	first, added := start.absorb(Artist{Name: "A"}, []Concert{concert("x", "2024-01-01")})
	require.Equal(t, 1, added)

	second, added := first.absorb(Artist{Name: "B"}, []Concert{concert("x", "2024-01-01"), concert("y", "2024-01-02")})
	require.Equal(t, 1, added)

	assert.Empty(t, start.concerts)
	assert.Len(t, first.concerts, 1)
	assert.Len(t, first.seen, 1)
	assert.Len(t, second.concerts, 2)
	assert.Equal(t, "A", second.concerts[0].Artist.Name)
	assert.Equal(t, "B", second.concerts[1].Artist.Name)
}

func TestArtistState_String(t *testing.T) {
	assert.Equal(t, "pending", StatePending.String())
	assert.Equal(t, "rate_limited", StateRateLimited.String())
	assert.Equal(t, "ArtistState(42)", ArtistState(42).String())

	text, err := StateNoMatch.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "no_match", string(text))

	var decoded ArtistState
	require.NoError(t, decoded.UnmarshalText([]byte("rate_limited")))
	assert.Equal(t, StateRateLimited, decoded)
	assert.Error(t, decoded.UnmarshalText([]byte("bogus")))
}
