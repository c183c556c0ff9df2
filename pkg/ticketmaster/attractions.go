package ticketmaster

import (
	"context"
	"net/url"
	"strconv"
)

type attractionsResponse struct {
	Embedded *struct {
		Attractions []Attraction `json:"attractions"`
	} `json:"_embedded"`
}

// SearchAttractions runs a keyword search over attractions.
//
// Results keep the catalog's relevance order. A response without an
// _embedded section yields an empty slice and no error.
func (c *Client) SearchAttractions(ctx context.Context, q AttractionQuery) ([]Attraction, error) {
	params := url.Values{}
	params.Set("keyword", q.Keyword)
	if q.Classification != "" {
		params.Set("classificationName", q.Classification)
	}
	if q.Size > 0 {
		params.Set("size", strconv.Itoa(q.Size))
	}

	var resp attractionsResponse
	if err := c.get(ctx, "attractions", "/attractions.json", params, &resp); err != nil {
		return nil, err
	}

	if resp.Embedded == nil {
		return []Attraction{}, nil
	}
	return resp.Embedded.Attractions, nil
}
