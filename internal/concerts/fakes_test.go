package concerts

import (
	"context"
	"sync"
	"time"

	"github.com/olivia646/spotify-concerts/pkg/ticketmaster"
)

// virtualClock advances only when something sleeps on it.
type virtualClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newVirtualClock() *virtualClock {
	return &virtualClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *virtualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *virtualClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func (c *virtualClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

type matchResult struct {
	id  string
	err error
}

// fakeMatcher answers from a table keyed by artist name; unknown names do not match.
type fakeMatcher struct {
	results map[string]matchResult
	calls   []string
}

func (m *fakeMatcher) Match(_ context.Context, name string) (string, bool, error) {
	m.calls = append(m.calls, name)
	r, ok := m.results[name]
	if !ok {
		return "", false, nil
	}
	if r.err != nil {
		return "", false, r.err
	}
	return r.id, true, nil
}

type fetchResult struct {
	concerts []Concert
	err      error
}

// fakeFetcher answers from a table keyed by attraction id.
type fakeFetcher struct {
	results map[string]fetchResult
	calls   []string
	cities  []string
}

func (f *fakeFetcher) Fetch(_ context.Context, attractionID, city string) ([]Concert, error) {
	f.calls = append(f.calls, attractionID)
	f.cities = append(f.cities, city)
	r := f.results[attractionID]
	return r.concerts, r.err
}

// fakeCatalog implements both catalog searchers and records queries.
type fakeCatalog struct {
	attractions  []ticketmaster.Attraction
	events       []ticketmaster.Event
	err          error
	attractionQs []ticketmaster.AttractionQuery
	eventQs      []ticketmaster.EventQuery
}

func (c *fakeCatalog) SearchAttractions(_ context.Context, q ticketmaster.AttractionQuery) ([]ticketmaster.Attraction, error) {
	c.attractionQs = append(c.attractionQs, q)
	if c.err != nil {
		return nil, c.err
	}
	return c.attractions, nil
}

func (c *fakeCatalog) SearchEvents(_ context.Context, q ticketmaster.EventQuery) ([]ticketmaster.Event, error) {
	c.eventQs = append(c.eventQs, q)
	if c.err != nil {
		return nil, c.err
	}
	return c.events, nil
}

func concert(id, rawDate string) Concert {
	return Concert{ID: id, Name: "Event " + id, Venue: "TBA", RawDate: rawDate}
}

func event(id, localDate, localTime string) ticketmaster.Event {
	var e ticketmaster.Event
	e.ID = id
	e.Name = "Event " + id
	e.URL = "https://tickets.example/" + id
	e.Dates.Start.LocalDate = localDate
	e.Dates.Start.LocalTime = localTime
	return e
}
