package concerts

import (
	"time"
)

// SentinelDate sorts after every real YYYY-MM-DD date.
const SentinelDate = "9999-99-99"

const (
	catalogDateLayout = "2006-01-02"
	catalogTimeLayout = "15:04:05"
	displayDateLayout = "Jan 02, 2006"
	displayTimeLayout = "03:04 PM"
)

// Concert is a normalized upcoming event.
type Concert struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Venue         string    `json:"venue"`
	RawDate       string    `json:"raw_date"`
	FormattedDate string    `json:"formatted_date"`
	URL           string    `json:"url"`
	ImageURL      string    `json:"image_url,omitempty"`
	Artist        ArtistRef `json:"artist"`
}

// ArtistRef records which top artist led to a concert.
type ArtistRef struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
}

// FormatDate renders a catalog local date (and optional local time) for
// display, e.g. "Jul 04, 2024 at 07:30 PM". If either part fails to parse
// the raw date is returned unchanged.
func FormatDate(localDate, localTime string) string {
	if localDate == "" {
		return ""
	}

	d, err := time.Parse(catalogDateLayout, localDate)
	if err != nil {
		return localDate
	}
	formatted := d.Format(displayDateLayout)

	if localTime != "" {
		t, err := time.Parse(catalogTimeLayout, localTime)
		if err != nil {
			return localDate
		}
		formatted += " at " + t.Format(displayTimeLayout)
	}
	return formatted
}

// sortableDate returns the date used for ordering: the local date when it
// parses, SentinelDate otherwise.
func sortableDate(localDate string) string {
	if _, err := time.Parse(catalogDateLayout, localDate); err != nil {
		return SentinelDate
	}
	return localDate
}
