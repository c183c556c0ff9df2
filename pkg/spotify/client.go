package spotify

import (
	"fmt"
	"net/http"
	"time"
)

// Config holds client configuration.
type Config struct {
	ClientID     string       // Required: Spotify application client id
	ClientSecret string       // Required: Spotify application client secret
	HTTPClient   *http.Client // Optional: HTTP client (defaults to http.DefaultClient)
	APIBaseURL   string       // Optional: Web API base URL (used for testing)
	AccountsURL  string       // Optional: Accounts service base URL (used for testing)
	Logger       Logger       // Optional: Logger interface for debug logging
}

// Logger is an optional interface for logging.
type Logger interface {
	// Debugf logs a debug message with format and arguments.
	Debugf(format string, args ...interface{})
}

// Client is the main entry point for Spotify API operations.
type Client struct {
	clientID     string
	clientSecret string
	httpClient   *http.Client
	apiBaseURL   string
	accountsURL  string
	logger       Logger

	// initial retry backoff; tests shrink it
	backoff time.Duration
}

const (
	// DefaultAPIBaseURL is the Web API endpoint.
	DefaultAPIBaseURL = "https://api.spotify.com/v1"

	// DefaultAccountsURL is the accounts (OAuth) service endpoint.
	DefaultAccountsURL = "https://accounts.spotify.com"

	// Scopes requested during authorization.
	Scopes = "user-top-read"
)

// NewClient creates a new Spotify API client.
//
// Returns an error if required configuration (ClientID, ClientSecret) is missing.
func NewClient(cfg Config) (*Client, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("spotify: ClientID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, fmt.Errorf("spotify: ClientSecret is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	apiBaseURL := cfg.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = DefaultAPIBaseURL
	}

	accountsURL := cfg.AccountsURL
	if accountsURL == "" {
		accountsURL = DefaultAccountsURL
	}

	return &Client{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   httpClient,
		apiBaseURL:   apiBaseURL,
		accountsURL:  accountsURL,
		logger:       cfg.Logger,
		backoff:      1 * time.Second,
	}, nil
}

// logDebugf logs a debug message if a logger is configured.
func (c *Client) logDebugf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debugf(format, args...)
	}
}
