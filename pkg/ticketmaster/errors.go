package ticketmaster

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for Discovery API operations.
var (
	// ErrRateLimited matches any *Error with status 429.
	ErrRateLimited = errors.New("ticketmaster: rate limited")

	// ErrUnauthorized matches any *Error with status 401 or 403.
	ErrUnauthorized = errors.New("ticketmaster: unauthorized")
)

// Error represents a non-2xx response from the Discovery API.
type Error struct {
	Op         string // "attractions" or "events"
	StatusCode int
	Message    string // fault or error detail from the body, if any
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ticketmaster %s: status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("ticketmaster %s: status %d", e.Op, e.StatusCode)
}

// Is lets errors.Is match status-derived sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.StatusCode == t.StatusCode
}

// errorBody covers both error shapes the gateway returns.
type errorBody struct {
	Fault struct {
		FaultString string `json:"faultstring"`
	} `json:"fault"`
	Errors []struct {
		Code   string `json:"code"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

func (b errorBody) message() string {
	if b.Fault.FaultString != "" {
		return b.Fault.FaultString
	}
	if len(b.Errors) > 0 {
		return b.Errors[0].Detail
	}
	return ""
}
