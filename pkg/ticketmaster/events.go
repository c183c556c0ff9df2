package ticketmaster

import (
	"context"
	"net/url"
	"strconv"
)

type eventsResponse struct {
	Embedded *struct {
		Events []Event `json:"events"`
	} `json:"_embedded"`
}

// SearchEvents lists events for an attraction near a city.
//
// A response without an _embedded section (no upcoming events) yields an
// empty slice and no error.
func (c *Client) SearchEvents(ctx context.Context, q EventQuery) ([]Event, error) {
	params := url.Values{}
	params.Set("attractionId", q.AttractionID)
	if q.City != "" {
		params.Set("city", q.City)
	}
	if q.Radius > 0 {
		params.Set("radius", strconv.Itoa(q.Radius))
		unit := q.Unit
		if unit == "" {
			unit = "miles"
		}
		params.Set("unit", unit)
	}
	if q.Classification != "" {
		params.Set("classificationName", q.Classification)
	}
	if q.Size > 0 {
		params.Set("size", strconv.Itoa(q.Size))
	}
	if q.Sort != "" {
		params.Set("sort", q.Sort)
	}

	var resp eventsResponse
	if err := c.get(ctx, "events", "/events.json", params, &resp); err != nil {
		return nil, err
	}

	if resp.Embedded == nil {
		return []Event{}, nil
	}
	return resp.Embedded.Events, nil
}
