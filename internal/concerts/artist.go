package concerts

import (
	"cmp"
	"slices"
)

// Artist is a listener's top artist, normalized from the listening source.
type Artist struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	ImageURL        string   `json:"image_url,omitempty"`
	Genres          []string `json:"genres"`
	AppearanceCount int      `json:"appearance_count"`
}

// Aggregate merges per-window top-artist lists into one ranked list.
//
// Windows are read in the order given (short, medium, long). Each artist is
// counted at most once per window; the result is sorted by descending
// appearance count with ties kept in order of first observation. When an
// artist repeats, the metadata seen last wins.
func Aggregate(windows ...[]Artist) []Artist {
	counts := make(map[string]int)
	latest := make(map[string]Artist)
	var order []string

	for _, window := range windows {
		inWindow := make(map[string]struct{}, len(window))
		for _, artist := range window {
			if artist.ID == "" {
				continue
			}
			if _, ok := counts[artist.ID]; !ok {
				order = append(order, artist.ID)
			}
			if _, dup := inWindow[artist.ID]; !dup {
				inWindow[artist.ID] = struct{}{}
				counts[artist.ID]++
			}
			latest[artist.ID] = artist
		}
	}

	ranked := make([]Artist, 0, len(order))
	for _, id := range order {
		artist := latest[id]
		artist.AppearanceCount = counts[id]
		ranked = append(ranked, artist)
	}

	slices.SortStableFunc(ranked, func(a, b Artist) int {
		return cmp.Compare(b.AppearanceCount, a.AppearanceCount)
	})
	return ranked
}
