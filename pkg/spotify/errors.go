package spotify

import (
	"errors"
	"fmt"
	"net/http"
)

// Predefined errors for common cases.
var (
	// ErrUnauthorized matches an *Error with status 401 (expired or invalid token).
	ErrUnauthorized = errors.New("spotify: unauthorized")

	// ErrRateLimited matches an *Error with status 429.
	ErrRateLimited = errors.New("spotify: rate limited")
)

// Error represents an error response from the Spotify Web API or the
// accounts service.
type Error struct {
	StatusCode int    // HTTP status
	Code       string // OAuth error code (accounts service only), e.g. "invalid_grant"
	Message    string // Message or error_description from the body
}

// Error returns the error message.
func (e *Error) Error() string {
	switch {
	case e.Code != "" && e.Message != "":
		return fmt.Sprintf("spotify: status %d: %s: %s", e.StatusCode, e.Code, e.Message)
	case e.Code != "":
		return fmt.Sprintf("spotify: status %d: %s", e.StatusCode, e.Code)
	case e.Message != "":
		return fmt.Sprintf("spotify: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("spotify: status %d", e.StatusCode)
}

// Is lets errors.Is match status-derived sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	}
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.StatusCode == t.StatusCode
}

// Temporary reports whether the request may succeed if retried.
func (e *Error) Temporary() bool {
	return e.StatusCode >= 500
}

// apiErrorBody is the Web API error shape: {"error":{"status":401,"message":"..."}}.
type apiErrorBody struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// authErrorBody is the accounts service shape: {"error":"invalid_grant","error_description":"..."}.
type authErrorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}
