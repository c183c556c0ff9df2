package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

type topArtistsResponse struct {
	Items []Artist `json:"items"`
	Total int      `json:"total"`
}

// TopArtists returns the user's most listened-to artists for a time range,
// ranked by affinity. limit is clamped to 1..MaxTopLimit.
func (c *Client) TopArtists(ctx context.Context, accessToken string, timeRange TimeRange, limit int) ([]Artist, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("spotify: access token is required")
	}
	if limit <= 0 || limit > MaxTopLimit {
		limit = MaxTopLimit
	}
	if timeRange == "" {
		timeRange = MediumTerm
	}

	params := url.Values{}
	params.Set("time_range", string(timeRange))
	params.Set("limit", strconv.Itoa(limit))
	reqURL := c.apiBaseURL + "/me/top/artists?" + params.Encode()

	body, err := c.do(ctx, "top artists "+string(timeRange), func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+accessToken)
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	var resp topArtistsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("spotify: failed to parse top artists: %w", err)
	}
	if resp.Items == nil {
		return []Artist{}, nil
	}
	return resp.Items, nil
}
