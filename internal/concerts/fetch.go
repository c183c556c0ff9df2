package concerts

import (
	"context"

	"github.com/olivia646/spotify-concerts/pkg/ticketmaster"
)

const (
	// SearchRadiusMiles bounds event search around the city.
	SearchRadiusMiles = 20

	maxEventsPerArtist = 10
	minImageWidth      = 300
	unknownVenue       = "TBA"
)

// Fetcher lists upcoming concerts for an attraction near a city.
type Fetcher interface {
	Fetch(ctx context.Context, attractionID, city string) ([]Concert, error)
}

// EventSearcher is the catalog capability the fetcher needs.
type EventSearcher interface {
	SearchEvents(ctx context.Context, q ticketmaster.EventQuery) ([]ticketmaster.Event, error)
}

// EventFetcher queries catalog events and normalizes them.
type EventFetcher struct {
	catalog EventSearcher
	pacer   *Pacer
}

// NewEventFetcher creates a fetcher. pacer may be shared with an AttractionMatcher.
func NewEventFetcher(catalog EventSearcher, pacer *Pacer) *EventFetcher {
	return &EventFetcher{catalog: catalog, pacer: pacer}
}

// Fetch returns up to ten music events within 20 miles of city, in the
// catalog's ascending date order. Concerts carry no artist provenance yet.
func (f *EventFetcher) Fetch(ctx context.Context, attractionID, city string) ([]Concert, error) {
	if err := f.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	events, err := f.catalog.SearchEvents(ctx, ticketmaster.EventQuery{
		AttractionID:   attractionID,
		City:           city,
		Radius:         SearchRadiusMiles,
		Unit:           "miles",
		Classification: ticketmaster.ClassificationMusic,
		Size:           maxEventsPerArtist,
		Sort:           "date,asc",
	})
	if err != nil {
		return nil, err
	}

	if len(events) > maxEventsPerArtist {
		events = events[:maxEventsPerArtist]
	}
	concerts := make([]Concert, 0, len(events))
	for _, event := range events {
		concerts = append(concerts, NormalizeEvent(event))
	}
	return concerts, nil
}

// NormalizeEvent converts a catalog event into a Concert.
func NormalizeEvent(event ticketmaster.Event) Concert {
	start := event.Dates.Start
	return Concert{
		ID:            event.ID,
		Name:          event.Name,
		Venue:         venueName(event.Venues()),
		RawDate:       sortableDate(start.LocalDate),
		FormattedDate: FormatDate(start.LocalDate, start.LocalTime),
		URL:           event.URL,
		ImageURL:      pickImage(event.Images),
	}
}

func venueName(venues []ticketmaster.Venue) string {
	if len(venues) == 0 || venues[0].Name == "" {
		return unknownVenue
	}
	return venues[0].Name
}

// pickImage returns the first image at least minImageWidth wide.
func pickImage(images []ticketmaster.Image) string {
	for _, img := range images {
		if img.Width >= minImageWidth {
			return img.URL
		}
	}
	return ""
}
