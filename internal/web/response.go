package web

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Success bool   `json:"success"`
}

func writeEnvelope(w http.ResponseWriter, status int, env Envelope, logger zerolog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(env); err != nil {
		logger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func writeJSON(w http.ResponseWriter, status int, data any, logger zerolog.Logger) {
	writeEnvelope(w, status, Envelope{Data: data, Success: status < 400}, logger)
}

func writeError(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	writeEnvelope(w, status, Envelope{Error: message}, logger)
}
