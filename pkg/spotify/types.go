package spotify

import (
	"time"
)

// TimeRange selects the listening-history window for top items.
type TimeRange string

const (
	ShortTerm  TimeRange = "short_term"  // roughly the last 4 weeks
	MediumTerm TimeRange = "medium_term" // roughly the last 6 months
	LongTerm   TimeRange = "long_term"   // several years
)

// TimeRanges lists every window in short→medium→long order.
var TimeRanges = []TimeRange{ShortTerm, MediumTerm, LongTerm}

// MaxTopLimit is the largest page the top-items endpoint accepts.
const MaxTopLimit = 50

// Token is an OAuth access token returned by the accounts service.
type Token struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	Scope        string    `json:"scope"`
	ExpiresIn    int       `json:"expires_in"` // seconds
	RefreshToken string    `json:"refresh_token"`
	Expiry       time.Time `json:"-"` // computed from ExpiresIn on receipt
}

// Expired reports whether the token is past its expiry.
// Tokens with an unknown expiry are treated as valid.
func (t *Token) Expired(now time.Time) bool {
	if t.Expiry.IsZero() {
		return false
	}
	return !now.Before(t.Expiry)
}

// Artist is a full artist object from the Web API.
type Artist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Genres     []string `json:"genres"`
	Images     []Image  `json:"images"`
	Popularity int      `json:"popularity"`
}

// Image is a cover or profile image; Spotify lists the widest first.
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}
