package concerts

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/olivia646/spotify-concerts/pkg/ticketmaster"
)

func TestFormatDate(t *testing.T) {
	tests := []struct {
		name string
		date string
		time string
		want string
	}{
		{"date and time", "2024-07-04", "19:30:00", "Jul 04, 2024 at 07:30 PM"},
		{"morning", "2025-01-15", "09:05:00", "Jan 15, 2025 at 09:05 AM"},
		{"date only", "2024-12-31", "", "Dec 31, 2024"},
		{"empty date", "", "19:30:00", ""},
		{"bad date", "TBD", "", "TBD"},
		{"bad time falls back to raw date", "2024-07-04", "evening", "2024-07-04"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDate(tt.date, tt.time))
		})
	}
}

func TestNormalizeEvent(t *testing.T) {
	e := event("ev1", "2024-08-10", "20:00:00")
	e.Images = []ticketmaster.Image{
		{URL: "small.jpg", Width: 100},
		{URL: "large.jpg", Width: 640},
		{URL: "huge.jpg", Width: 1024},
	}
	e.Embedded.Venues = []ticketmaster.Venue{{Name: "The Fillmore"}, {Name: "Elsewhere"}}

	got := NormalizeEvent(e)

	assert.Equal(t, "ev1", got.ID)
	assert.Equal(t, "Event ev1", got.Name)
	assert.Equal(t, "The Fillmore", got.Venue)
	assert.Equal(t, "2024-08-10", got.RawDate)
	assert.Equal(t, "Aug 10, 2024 at 08:00 PM", got.FormattedDate)
	assert.Equal(t, "large.jpg", got.ImageURL)
	assert.Equal(t, "https://tickets.example/ev1", got.URL)
	assert.Empty(t, got.Artist.Name)
}

func TestNormalizeEvent_Defaults(t *testing.T) {
	e := event("ev2", "", "")
	e.Images = []ticketmaster.Image{{URL: "thumb.jpg", Width: 299}}

	got := NormalizeEvent(e)

	assert.Equal(t, "TBA", got.Venue)
	assert.Equal(t, SentinelDate, got.RawDate)
	assert.Equal(t, "", got.FormattedDate)
	assert.Equal(t, "", got.ImageURL)
}

func TestNormalizeEvent_UnparseableDateSortsLast(t *testing.T) {
	got := NormalizeEvent(event("ev3", "2024-13-45", ""))
	assert.Equal(t, SentinelDate, got.RawDate)
	assert.Equal(t, "2024-13-45", got.FormattedDate)
}
