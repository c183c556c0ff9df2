package concerts

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports resolution counters. A nil *Metrics records nothing.
type Metrics struct {
	resolutions *prometheus.CounterVec
	artists     *prometheus.CounterVec
	concerts    prometheus.Counter
	duration    prometheus.Histogram
}

// NewMetrics creates the resolver metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "concerts",
			Name:      "resolutions_total",
			Help:      "Concert resolutions by result.",
		}, []string{"result"}),
		artists: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "concerts",
			Name:      "artists_total",
			Help:      "Artists visited by final state.",
		}, []string{"state"}),
		concerts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "concerts",
			Name:      "concerts_emitted_total",
			Help:      "Concerts returned after deduplication.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "concerts",
			Name:      "resolution_duration_seconds",
			Help:      "Wall time of a resolution.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40},
		}),
	}
	if reg != nil {
		reg.MustRegister(m.resolutions, m.artists, m.concerts, m.duration)
	}
	return m
}

func (m *Metrics) observeArtist(state ArtistState) {
	if m == nil {
		return
	}
	m.artists.WithLabelValues(state.String()).Inc()
}

func (m *Metrics) observeResolution(ok bool, elapsed time.Duration, emitted int) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.resolutions.WithLabelValues(result).Inc()
	m.concerts.Add(float64(emitted))
	m.duration.Observe(elapsed.Seconds())
}
