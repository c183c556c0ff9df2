// Package concerts resolves a listener's top artists into upcoming concerts
// near a city.
//
// The pipeline matches each artist to a catalog attraction, fetches that
// attraction's events, and merges the results into one deduplicated,
// date-ordered list. Catalog calls are paced by a shared Pacer; rate-limited
// artists are skipped after a backoff.
package concerts
