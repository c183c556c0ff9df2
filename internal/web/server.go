// Package web serves the concert finder over HTTP.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/olivia646/spotify-concerts/internal/concerts"
	"github.com/olivia646/spotify-concerts/internal/session"
	"github.com/olivia646/spotify-concerts/pkg/spotify"
)

const sessionCookie = "concerts_session"

// Authenticator runs the Spotify authorization code flow.
type Authenticator interface {
	AuthURL(redirectURI, state string) string
	ExchangeCode(ctx context.Context, code, redirectURI string) (*spotify.Token, error)
}

// ArtistCollector returns a listener's ranked top artists.
type ArtistCollector interface {
	TopArtists(ctx context.Context, accessToken string) ([]concerts.Artist, error)
}

// ConcertResolver turns ranked artists into concerts near a city.
type ConcertResolver interface {
	Resolve(ctx context.Context, artists []concerts.Artist, city string) (*concerts.Result, error)
}

// SessionStore persists login sessions.
type SessionStore interface {
	Create(ctx context.Context) (*session.Session, error)
	Get(ctx context.Context, id string) (*session.Session, error)
	SetAccessToken(ctx context.Context, id, token string) error
	SetCity(ctx context.Context, id, city string) error
	Delete(ctx context.Context, id string) error
}

// Config holds server settings
type Config struct {
	Addr           string        // Listen address
	RedirectURI    string        // OAuth callback registered with Spotify
	DefaultCity    string        // City used before the user picks one
	SessionMaxAge  time.Duration // Cookie lifetime
	RequestTimeout time.Duration // Upper bound on a /concerts request
	SecureCookies  bool          // Set when served over https
}

// Deps are the collaborators the handlers call.
type Deps struct {
	Auth      Authenticator
	Collector ArtistCollector
	Resolver  ConcertResolver
	Sessions  SessionStore
	// Registry receives HTTP metrics and is exposed on /metrics. Optional.
	Registry *prometheus.Registry
}

// Server is the HTTP front end
type Server struct {
	cfg     Config
	deps    Deps
	router  *chi.Mux
	metrics *httpMetrics
	logger  zerolog.Logger
}

// New creates a server with all routes mounted.
func New(cfg Config, deps Deps, logger zerolog.Logger) *Server {
	if cfg.DefaultCity == "" {
		cfg.DefaultCity = "San Francisco"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		router: chi.NewRouter(),
		logger: logger.With().Str("component", "web").Logger(),
	}
	if deps.Registry != nil {
		s.metrics = newHTTPMetrics(deps.Registry)
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.logRequests)
	s.router.Use(middleware.Recoverer)
	if s.metrics != nil {
		s.router.Use(s.metrics.instrument)
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	if s.deps.Registry != nil {
		s.router.Handle("/metrics", promHandler(s.deps.Registry))
	}

	s.router.Get("/", s.handleIndex)
	s.router.Get("/login", s.handleLogin)
	s.router.Get("/callback", s.handleCallback)
	s.router.Get("/logout", s.handleLogout)

	s.router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
		r.Get("/concerts", s.handleConcerts)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.cfg.Addr).Msg("Listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// logRequests writes one zerolog line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// currentSession returns the caller's session, or nil when there is none.
func (s *Server) currentSession(r *http.Request) (*session.Session, error) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, nil
	}
	sess, err := s.deps.Sessions.Get(r.Context(), cookie.Value)
	if errors.Is(err, session.ErrNotFound) {
		return nil, nil
	}
	return sess, err
}

// ensureSession returns the caller's session, creating one if needed.
func (s *Server) ensureSession(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	sess, err := s.currentSession(r)
	if err != nil || sess != nil {
		return sess, err
	}

	sess, err = s.deps.Sessions.Create(r.Context())
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(s.cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return sess, nil
}

func (s *Server) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// pickCity prefers the query parameter, then the session, then the default.
func (s *Server) pickCity(query string, sess *session.Session) string {
	if city := strings.TrimSpace(query); city != "" {
		return city
	}
	if sess != nil && sess.City != "" {
		return sess.City
	}
	return s.cfg.DefaultCity
}
