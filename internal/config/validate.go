package config

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Section names the subset of settings a command needs.
type Section string

const (
	// SectionAuth covers the Spotify app credentials.
	SectionAuth Section = "auth"
	// SectionFind covers a full CLI resolution.
	SectionFind Section = "find"
	// SectionServe covers the web server.
	SectionServe Section = "serve"
)

var sectionFields = map[Section][]string{
	SectionAuth: {
		"Spotify.ClientID",
		"Spotify.ClientSecret",
		"Spotify.RedirectURI",
	},
	SectionFind: {
		"City",
		"MaxArtists",
		"Spotify.ClientID",
		"Spotify.ClientSecret",
		"Spotify.AccessToken",
		"Ticketmaster.APIKey",
		"Resolve.PaceInterval",
		"Resolve.RateLimitBackoff",
	},
	SectionServe: {
		"City",
		"MaxArtists",
		"Spotify.ClientID",
		"Spotify.ClientSecret",
		"Spotify.RedirectURI",
		"Ticketmaster.APIKey",
		"Resolve.PaceInterval",
		"Resolve.RateLimitBackoff",
		"Server.Addr",
		"Server.BaseURL",
		"Server.SessionDB",
		"Server.SessionMaxAge",
		"Server.RequestTimeout",
	},
}

var validate = func() *validator.Validate {
	v := validator.New()

	// Report config keys instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if key := fld.Tag.Get("key"); key != "" {
			return key
		}
		return fld.Name
	})

	return v
}()

// Validate checks the settings a section depends on. The error lists every
// offending key with the environment variable that can supply it.
func (c *Config) Validate(section Section) error {
	fields, ok := sectionFields[section]
	if !ok {
		return fmt.Errorf("unknown config section %q", section)
	}

	err := validate.StructPartial(c, fields...)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		msgs = append(msgs, fmt.Sprintf("%s %s (%s)", e.Field(), friendlyMessage(e), EnvVar(e.Field())))
	}
	sort.Strings(msgs)

	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

// EnvVar returns the environment variable that overrides key.
func EnvVar(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "hostname_port":
		return "must be host:port"
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	default:
		return "is invalid"
	}
}
