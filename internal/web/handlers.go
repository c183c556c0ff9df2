package web

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/olivia646/spotify-concerts/internal/concerts"
	"github.com/olivia646/spotify-concerts/pkg/spotify"
)

// IndexPage describes the caller's login state.
type IndexPage struct {
	LoggedIn bool   `json:"logged_in"`
	City     string `json:"city"`
}

// ConcertsPage is the result of a concert search.
type ConcertsPage struct {
	City     string             `json:"city"`
	Artists  int                `json:"artists"`
	Concerts []concerts.Concert `json:"concerts"`
	Outcomes []concerts.Outcome `json:"outcomes,omitempty"`
}

func promHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.logger)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, err := s.currentSession(r)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load session")
		writeError(w, http.StatusInternalServerError, "internal server error", s.logger)
		return
	}

	writeJSON(w, http.StatusOK, IndexPage{
		LoggedIn: sess != nil && sess.LoggedIn(),
		City:     s.pickCity("", sess),
	}, s.logger)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	sess, err := s.ensureSession(w, r)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to create session")
		writeError(w, http.StatusInternalServerError, "internal server error", s.logger)
		return
	}

	http.Redirect(w, r, s.deps.Auth.AuthURL(s.cfg.RedirectURI, sess.State), http.StatusFound)
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if authErr := q.Get("error"); authErr != "" {
		writeError(w, http.StatusBadRequest, "spotify authorization failed: "+authErr, s.logger)
		return
	}

	code := q.Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing authorization code", s.logger)
		return
	}

	sess, err := s.currentSession(r)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load session")
		writeError(w, http.StatusInternalServerError, "internal server error", s.logger)
		return
	}
	if sess == nil || q.Get("state") != sess.State {
		writeError(w, http.StatusBadRequest, "login state mismatch, start again from /login", s.logger)
		return
	}

	token, err := s.deps.Auth.ExchangeCode(r.Context(), code, s.cfg.RedirectURI)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Token exchange failed")
		writeError(w, http.StatusBadGateway, "failed to log in with spotify", s.logger)
		return
	}

	if err := s.deps.Sessions.SetAccessToken(r.Context(), sess.ID, token.AccessToken); err != nil {
		s.logger.Error().Err(err).Msg("Failed to store access token")
		writeError(w, http.StatusInternalServerError, "internal server error", s.logger)
		return
	}

	http.Redirect(w, r, "/concerts", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess, err := s.currentSession(r); err == nil && sess != nil {
		if err := s.deps.Sessions.Delete(r.Context(), sess.ID); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to delete session")
		}
	}
	s.clearCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleConcerts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := s.currentSession(r)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load session")
		writeError(w, http.StatusInternalServerError, "internal server error", s.logger)
		return
	}
	if sess == nil || !sess.LoggedIn() {
		writeError(w, http.StatusUnauthorized, "not logged in, visit /login", s.logger)
		return
	}

	city := s.pickCity(r.URL.Query().Get("city"), sess)
	if city != sess.City {
		if err := s.deps.Sessions.SetCity(ctx, sess.ID, city); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to remember city")
		}
	}

	page := ConcertsPage{City: city, Concerts: []concerts.Concert{}}

	artists, err := s.deps.Collector.TopArtists(ctx, sess.AccessToken)
	if err != nil {
		status := http.StatusBadGateway
		msg := "failed to load top artists: " + err.Error()
		if errors.Is(err, spotify.ErrUnauthorized) {
			status = http.StatusUnauthorized
			msg = "spotify session expired, visit /login"
		}
		writeEnvelope(w, status, Envelope{Data: page, Error: msg}, s.logger)
		return
	}
	page.Artists = len(artists)

	result, err := s.deps.Resolver.Resolve(ctx, artists, city)
	if err != nil {
		s.logger.Warn().Err(err).Str("city", city).Msg("Resolution failed")
		writeEnvelope(w, http.StatusBadGateway, Envelope{Data: page, Error: err.Error()}, s.logger)
		return
	}

	page.Concerts = result.Concerts
	page.Outcomes = result.Outcomes
	writeJSON(w, http.StatusOK, page, s.logger)
}
