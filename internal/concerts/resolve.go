package concerts

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/olivia646/spotify-concerts/pkg/ticketmaster"
)

const (
	DefaultMaxArtists       = 25
	DefaultRateLimitBackoff = 2 * time.Second
)

// ArtistState is where an artist ended up during a resolution.
type ArtistState int

const (
	StatePending ArtistState = iota
	StateMatched
	StateNoMatch
	StateRateLimited
	StateFetched
	StateFailed
)

func (s ArtistState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateMatched:
		return "matched"
	case StateNoMatch:
		return "no_match"
	case StateRateLimited:
		return "rate_limited"
	case StateFetched:
		return "fetched"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("ArtistState(%d)", int(s))
	}
}

// MarshalText encodes the state by name.
func (s ArtistState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name produced by MarshalText.
func (s *ArtistState) UnmarshalText(text []byte) error {
	for state := StatePending; state <= StateFailed; state++ {
		if state.String() == string(text) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown artist state %q", text)
}

// Outcome records what happened to one artist.
type Outcome struct {
	Artist       string      `json:"artist"`
	AttractionID string      `json:"attraction_id,omitempty"`
	State        ArtistState `json:"state"`
	// Added counts concerts this artist contributed after deduplication.
	Added int `json:"added"`
}

// Result is the output of a resolution.
type Result struct {
	Concerts []Concert `json:"concerts"`
	Outcomes []Outcome `json:"outcomes"`
}

// Config tunes a Resolver. Zero values take the defaults.
type Config struct {
	MaxArtists       int
	RateLimitBackoff time.Duration
	Clock            Clock
	Metrics          *Metrics
}

// Resolver turns a ranked artist list into a deduplicated concert list.
type Resolver struct {
	matcher Matcher
	fetcher Fetcher
	cfg     Config
	logger  zerolog.Logger
}

// NewResolver creates a resolver around the given matcher and fetcher.
func NewResolver(matcher Matcher, fetcher Fetcher, cfg Config, logger zerolog.Logger) *Resolver {
	if cfg.MaxArtists <= 0 {
		cfg.MaxArtists = DefaultMaxArtists
	}
	if cfg.RateLimitBackoff <= 0 {
		cfg.RateLimitBackoff = DefaultRateLimitBackoff
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock()
	}
	return &Resolver{
		matcher: matcher,
		fetcher: fetcher,
		cfg:     cfg,
		logger:  logger.With().Str("component", "resolver").Logger(),
	}
}

// Resolve walks the top MaxArtists artists in rank order, one at a time.
//
// Artists without a catalog match, and artists whose lookups were rate
// limited, are skipped. Any other catalog error aborts the resolution and is
// returned wrapped with the artist's name. Concerts are deduplicated by id,
// keeping the first artist that produced them, and returned in ascending
// RawDate order.
func (r *Resolver) Resolve(ctx context.Context, artists []Artist, city string) (*Result, error) {
	started := r.cfg.Clock.Now()

	ranked := artists
	if len(ranked) > r.cfg.MaxArtists {
		ranked = ranked[:r.cfg.MaxArtists]
	}

	acc := accumulator{}
	outcomes := make([]Outcome, 0, len(ranked))

	for _, artist := range ranked {
		outcome := Outcome{Artist: artist.Name, State: StatePending}

		state, attractionID, batch, err := r.visit(ctx, artist, city)
		outcome.State = state
		outcome.AttractionID = attractionID
		r.cfg.Metrics.observeArtist(state)

		if state == StateFailed {
			r.logger.Error().Err(err).Str("artist", artist.Name).Msg("resolution aborted")
			r.cfg.Metrics.observeResolution(false, r.cfg.Clock.Now().Sub(started), 0)
			return nil, fmt.Errorf("resolve concerts for %q: %w", artist.Name, err)
		}
		if state == StateFetched {
			var added int
			acc, added = acc.absorb(artist, batch)
			outcome.Added = added
		}

		outcomes = append(outcomes, outcome)
	}

	result := &Result{
		Concerts: acc.sorted(),
		Outcomes: outcomes,
	}

	r.logger.Info().
		Int("artists", len(ranked)).
		Int("concerts", len(result.Concerts)).
		Str("city", city).
		Msg("resolution complete")
	r.cfg.Metrics.observeResolution(true, r.cfg.Clock.Now().Sub(started), len(result.Concerts))

	return result, nil
}

// visit runs match then fetch for one artist and reports its final state.
func (r *Resolver) visit(ctx context.Context, artist Artist, city string) (ArtistState, string, []Concert, error) {
	log := r.logger.With().Str("artist", artist.Name).Logger()

	attractionID, ok, err := r.matcher.Match(ctx, artist.Name)
	if err != nil {
		state, err := r.classify(ctx, err)
		log.Debug().Stringer("state", state).Err(err).Msg("match failed")
		return state, "", nil, err
	}
	if !ok {
		log.Debug().Msg("no attraction match")
		return StateNoMatch, "", nil, nil
	}
	log.Debug().Str("attraction_id", attractionID).Stringer("state", StateMatched).Msg("matched attraction")

	batch, err := r.fetcher.Fetch(ctx, attractionID, city)
	if err != nil {
		state, err := r.classify(ctx, err)
		log.Debug().Stringer("state", state).Err(err).Msg("fetch failed")
		return state, attractionID, nil, err
	}
	log.Debug().Int("events", len(batch)).Msg("fetched events")
	return StateFetched, attractionID, batch, nil
}

// classify turns a catalog error into a skip or an abort. Rate limiting
// waits out the backoff and skips; everything else is fatal.
func (r *Resolver) classify(ctx context.Context, err error) (ArtistState, error) {
	if !errors.Is(err, ticketmaster.ErrRateLimited) {
		return StateFailed, err
	}

	r.logger.Warn().Dur("backoff", r.cfg.RateLimitBackoff).Msg("catalog rate limited, skipping artist")
	if sleepErr := r.cfg.Clock.Sleep(ctx, r.cfg.RateLimitBackoff); sleepErr != nil {
		return StateFailed, sleepErr
	}
	return StateRateLimited, nil
}

// accumulator is the fold state of a resolution. absorb never mutates its
// receiver.
type accumulator struct {
	concerts []Concert
	seen     map[string]struct{}
}

// absorb adds the not-yet-seen concerts of batch, attributed to artist, and
// reports how many were added.
func (a accumulator) absorb(artist Artist, batch []Concert) (accumulator, int) {
	next := accumulator{
		concerts: slices.Clone(a.concerts),
		seen:     maps.Clone(a.seen),
	}
	if next.seen == nil {
		next.seen = make(map[string]struct{})
	}

	added := 0
	for _, concert := range batch {
		if _, dup := next.seen[concert.ID]; dup {
			continue
		}
		next.seen[concert.ID] = struct{}{}
		concert.Artist = ArtistRef{Name: artist.Name, ImageURL: artist.ImageURL}
		next.concerts = append(next.concerts, concert)
		added++
	}
	return next, added
}

// sorted returns the concerts in stable ascending RawDate order.
func (a accumulator) sorted() []Concert {
	out := slices.Clone(a.concerts)
	if out == nil {
		out = []Concert{}
	}
	slices.SortStableFunc(out, func(x, y Concert) int {
		return cmp.Compare(sortKey(x), sortKey(y))
	})
	return out
}

func sortKey(c Concert) string {
	if c.RawDate == "" {
		return SentinelDate
	}
	return c.RawDate
}
