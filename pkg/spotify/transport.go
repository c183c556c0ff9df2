package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

const maxRetries = 3

// do executes a request with retry logic.
//
// newRequest is called once per attempt so request bodies can be replayed.
// Network errors and 5xx responses are retried with exponential backoff;
// other non-2xx responses are parsed into *Error and returned at once.
func (c *Client) do(ctx context.Context, op string, newRequest func() (*http.Request, error)) ([]byte, error) {
	var lastErr error
	backoff := c.backoff

	for i := 0; i < maxRetries; i++ {
		c.logDebugf("spotify: %s (attempt %d/%d)", op, i+1, maxRetries)

		req, err := newRequest()
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", "spotify-concerts/1.0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if shouldRetryNetworkError(err) && i < maxRetries-1 {
				c.logDebugf("spotify: network error, retrying: %v", err)
				if !sleep(ctx, backoff) {
					return nil, ctx.Err()
				}
				backoff = nextBackoff(backoff)
				continue
			}
			return nil, fmt.Errorf("http request failed: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			c.logDebugf("spotify: %s succeeded", op)
			return body, nil
		}

		apiErr := parseError(resp.StatusCode, body)
		if apiErr.Temporary() && i < maxRetries-1 {
			c.logDebugf("spotify: server error, retrying: %v", apiErr)
			lastErr = apiErr
			if !sleep(ctx, backoff) {
				return nil, ctx.Err()
			}
			backoff = nextBackoff(backoff)
			continue
		}
		return nil, apiErr
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// parseError builds an *Error from either Spotify error body shape.
func parseError(status int, body []byte) *Error {
	apiErr := &Error{StatusCode: status}

	var ab apiErrorBody
	if json.Unmarshal(body, &ab) == nil && ab.Error.Message != "" {
		apiErr.Message = ab.Error.Message
		return apiErr
	}

	var auth authErrorBody
	if json.Unmarshal(body, &auth) == nil && auth.Error != "" {
		apiErr.Code = auth.Error
		apiErr.Message = auth.ErrorDescription
	}
	return apiErr
}

// shouldRetryNetworkError checks if a network error is retryable.
func shouldRetryNetworkError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// sleep waits for the specified duration or until context is cancelled.
// Returns true if sleep completed, false if context was cancelled.
func sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(duration):
		return true
	}
}

// nextBackoff calculates the next backoff duration with exponential increase.
// Maximum backoff is capped at 30 seconds.
func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > 30*time.Second {
		return 30 * time.Second
	}
	return next
}
