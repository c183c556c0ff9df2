package concerts

import (
	"context"
	"strings"

	"github.com/olivia646/spotify-concerts/pkg/ticketmaster"
)

// matchCandidates is how many ranked attractions are considered per artist.
const matchCandidates = 5

// Matcher resolves an artist name to a catalog attraction id.
type Matcher interface {
	Match(ctx context.Context, name string) (attractionID string, ok bool, err error)
}

// AttractionSearcher is the catalog capability the matcher needs.
type AttractionSearcher interface {
	SearchAttractions(ctx context.Context, q ticketmaster.AttractionQuery) ([]ticketmaster.Attraction, error)
}

// AttractionMatcher matches artists against catalog attractions by name.
type AttractionMatcher struct {
	catalog AttractionSearcher
	pacer   *Pacer
}

// NewAttractionMatcher creates a matcher. pacer may be shared with an EventFetcher.
func NewAttractionMatcher(catalog AttractionSearcher, pacer *Pacer) *AttractionMatcher {
	return &AttractionMatcher{catalog: catalog, pacer: pacer}
}

// Match searches the catalog for name and returns the id of the first
// candidate, in catalog order, whose name equals or contains name
// (case-insensitive). Catalog errors are returned untouched.
func (m *AttractionMatcher) Match(ctx context.Context, name string) (string, bool, error) {
	if strings.TrimSpace(name) == "" {
		return "", false, nil
	}

	if err := m.pacer.Wait(ctx); err != nil {
		return "", false, err
	}

	candidates, err := m.catalog.SearchAttractions(ctx, ticketmaster.AttractionQuery{
		Keyword:        name,
		Classification: ticketmaster.ClassificationMusic,
		Size:           matchCandidates,
	})
	if err != nil {
		return "", false, err
	}

	if len(candidates) > matchCandidates {
		candidates = candidates[:matchCandidates]
	}
	for _, candidate := range candidates {
		if NameMatches(name, candidate.Name) {
			return candidate.ID, true, nil
		}
	}
	return "", false, nil
}

// NameMatches reports whether a catalog name refers to the queried artist:
// equal, or containing the query, ignoring case. Short names can
// over-match ("Air" matches "Fresh Air Live").
func NameMatches(query, candidate string) bool {
	q := strings.ToLower(query)
	c := strings.ToLower(candidate)
	return c == q || strings.Contains(c, q)
}
