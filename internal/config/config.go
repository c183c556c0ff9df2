package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	appName   = "spotify-concerts"
	envPrefix = "CONCERTS"

	DefaultCity = "San Francisco"
)

// Config holds application configuration
type Config struct {
	// City to search around when none is given
	City string `key:"city" validate:"required"`

	// How many ranked artists a resolution visits
	MaxArtists int `key:"max_artists" validate:"gte=1,lte=50"`

	// Per-concert output template for the find command; empty prints a table
	OutputFormat string `key:"output_format"`

	Spotify      SpotifyConfig
	Ticketmaster TicketmasterConfig
	Resolve      ResolveConfig
	Server       ServerConfig

	path string
}

// SpotifyConfig holds Spotify app credentials and the saved user token
type SpotifyConfig struct {
	ClientID     string    `key:"spotify.client_id" validate:"required"`
	ClientSecret string    `key:"spotify.client_secret" validate:"required"`
	RedirectURI  string    `key:"spotify.redirect_uri" validate:"required,url"`
	AccessToken  string    `key:"spotify.access_token" validate:"required"`
	RefreshToken string    `key:"spotify.refresh_token"`
	TokenExpiry  time.Time `key:"spotify.token_expiry"`
}

// TicketmasterConfig holds Discovery API credentials
type TicketmasterConfig struct {
	APIKey string `key:"ticketmaster.api_key" validate:"required"`
}

// ResolveConfig tunes catalog pacing
type ResolveConfig struct {
	PaceInterval     time.Duration `key:"resolve.pace_interval" validate:"gte=0"`
	RateLimitBackoff time.Duration `key:"resolve.rate_limit_backoff" validate:"gte=0"`
}

// ServerConfig holds settings for the serve command
type ServerConfig struct {
	Addr           string        `key:"server.addr" validate:"required,hostname_port"`
	BaseURL        string        `key:"server.base_url" validate:"omitempty,url"`
	SessionDB      string        `key:"server.session_db" validate:"required"`
	SessionMaxAge  time.Duration `key:"server.session_max_age" validate:"gt=0"`
	RequestTimeout time.Duration `key:"server.request_timeout" validate:"gt=0"`
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	return load(getConfigDir(), ".")
}

func load(paths ...string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Config file locations (in order of precedence)
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	configDir := getConfigDir()
	v.SetDefault("city", DefaultCity)
	v.SetDefault("max_artists", 25)
	v.SetDefault("spotify.redirect_uri", "http://127.0.0.1:8080/callback")
	v.SetDefault("resolve.pace_interval", 150*time.Millisecond)
	v.SetDefault("resolve.rate_limit_backoff", 2*time.Second)
	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.session_db", filepath.Join(configDir, "sessions.db"))
	v.SetDefault("server.session_max_age", 7*24*time.Hour)
	v.SetDefault("server.request_timeout", 60*time.Second)

	// Read config file (optional - don't fail if missing)
	var notFound viper.ConfigFileNotFoundError
	if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
		return nil, err
	}

	// CONCERTS_SPOTIFY_CLIENT_ID overrides spotify.client_id
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		City:         v.GetString("city"),
		MaxArtists:   v.GetInt("max_artists"),
		OutputFormat: v.GetString("output_format"),
		Spotify: SpotifyConfig{
			ClientID:     v.GetString("spotify.client_id"),
			ClientSecret: v.GetString("spotify.client_secret"),
			RedirectURI:  v.GetString("spotify.redirect_uri"),
			AccessToken:  v.GetString("spotify.access_token"),
			RefreshToken: v.GetString("spotify.refresh_token"),
			TokenExpiry:  v.GetTime("spotify.token_expiry"),
		},
		Ticketmaster: TicketmasterConfig{
			APIKey: v.GetString("ticketmaster.api_key"),
		},
		Resolve: ResolveConfig{
			PaceInterval:     v.GetDuration("resolve.pace_interval"),
			RateLimitBackoff: v.GetDuration("resolve.rate_limit_backoff"),
		},
		Server: ServerConfig{
			Addr:           v.GetString("server.addr"),
			BaseURL:        v.GetString("server.base_url"),
			SessionDB:      v.GetString("server.session_db"),
			SessionMaxAge:  v.GetDuration("server.session_max_age"),
			RequestTimeout: v.GetDuration("server.request_timeout"),
		},
		path: v.ConfigFileUsed(),
	}

	return cfg, nil
}

// getConfigDir returns the configuration directory path
// Creates the directory if it doesn't exist
func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	configDir := filepath.Join(homeDir, ".config", appName)

	// Create config directory if it doesn't exist
	_ = os.MkdirAll(configDir, 0755)

	return configDir
}

// GetConfigDir returns the configuration directory path (public helper)
func GetConfigDir() string {
	return getConfigDir()
}

// Path returns the file Save writes to.
func (c *Config) Path() string {
	if c.path != "" {
		return c.path
	}
	return filepath.Join(getConfigDir(), "config.yaml")
}

// Save writes configuration to file
func (c *Config) Save() error {
	v := viper.New()

	v.Set("city", c.City)
	v.Set("max_artists", c.MaxArtists)
	v.Set("output_format", c.OutputFormat)
	v.Set("spotify.client_id", c.Spotify.ClientID)
	v.Set("spotify.client_secret", c.Spotify.ClientSecret)
	v.Set("spotify.redirect_uri", c.Spotify.RedirectURI)
	v.Set("spotify.access_token", c.Spotify.AccessToken)
	v.Set("spotify.refresh_token", c.Spotify.RefreshToken)
	if !c.Spotify.TokenExpiry.IsZero() {
		v.Set("spotify.token_expiry", c.Spotify.TokenExpiry.Format(time.RFC3339))
	}
	v.Set("ticketmaster.api_key", c.Ticketmaster.APIKey)
	v.Set("resolve.pace_interval", c.Resolve.PaceInterval.String())
	v.Set("resolve.rate_limit_backoff", c.Resolve.RateLimitBackoff.String())
	v.Set("server.addr", c.Server.Addr)
	v.Set("server.base_url", c.Server.BaseURL)
	v.Set("server.session_db", c.Server.SessionDB)
	v.Set("server.session_max_age", c.Server.SessionMaxAge.String())
	v.Set("server.request_timeout", c.Server.RequestTimeout.String())

	// Tokens live here; keep the file private.
	path := c.Path()
	if err := v.WriteConfigAs(path); err != nil {
		return err
	}
	return os.Chmod(path, 0600)
}
