package concerts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olivia646/spotify-concerts/pkg/ticketmaster"
)

const paceInterval = 150 * time.Millisecond

func TestPacer_SpacesCalls(t *testing.T) {
	clock := newVirtualClock()
	p := NewPacer(paceInterval, clock)

	for i := 0; i < 4; i++ {
		require.NoError(t, p.Wait(context.Background()))
	}

	sleeps := clock.Sleeps()
	require.Len(t, sleeps, 3)
	for _, d := range sleeps {
		assert.InDelta(t, float64(paceInterval), float64(d), float64(time.Millisecond))
	}
}

func TestPacer_NoWaitAfterIdle(t *testing.T) {
	clock := newVirtualClock()
	p := NewPacer(paceInterval, clock)

	require.NoError(t, p.Wait(context.Background()))
	require.NoError(t, clock.Sleep(context.Background(), time.Second))
	require.NoError(t, p.Wait(context.Background()))

	assert.Equal(t, []time.Duration{time.Second}, clock.Sleeps())
}

func TestPacer_NilAndDisabled(t *testing.T) {
	var p *Pacer
	assert.NoError(t, p.Wait(context.Background()))

	clock := newVirtualClock()
	disabled := NewPacer(0, clock)
	for i := 0; i < 3; i++ {
		require.NoError(t, disabled.Wait(context.Background()))
	}
	assert.Empty(t, clock.Sleeps())
}

func TestPacer_CancelledContext(t *testing.T) {
	clock := newVirtualClock()
	p := NewPacer(paceInterval, clock)
	require.NoError(t, p.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, p.Wait(ctx), context.Canceled)
}

func TestPacer_SharedByMatcherAndFetcher(t *testing.T) {
	clock := newVirtualClock()
	pacer := NewPacer(paceInterval, clock)
	catalog := &fakeCatalog{
		attractions: []ticketmaster.Attraction{{ID: "K1", Name: "Wilco"}},
		events:      []ticketmaster.Event{event("e1", "2024-05-05", "")},
	}
	m := NewAttractionMatcher(catalog, pacer)
	f := NewEventFetcher(catalog, pacer)

	_, _, err := m.Match(context.Background(), "Wilco")
	require.NoError(t, err)
	_, err = f.Fetch(context.Background(), "K1", "Chicago")
	require.NoError(t, err)
	_, _, err = m.Match(context.Background(), "Wilco")
	require.NoError(t, err)

	// Three calls through one bucket: two waits.
	assert.Len(t, clock.Sleeps(), 2)
}
