package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"server/internal/credentials"
	"server/internal/domain"
	"server/internal/providers/image"
	"server/internal/service"
)

// App carries the wired services into the HTTP handlers.
type App struct {
	Users        domain.UserRepository
	Playlists    *service.PlaylistService
	Infographics *service.InfographicService
	Resolver     *credentials.Resolver
	Images       image.Generator
	Logger       zerolog.Logger
}

// envelope is the uniform response shape. Either data or error is populated;
// missingKeys accompanies 403 responses for unconfigured free-plan keys.
type envelope struct {
	Success     bool            `json:"success"`
	Data        any             `json:"data,omitempty"`
	Error       string          `json:"error,omitempty"`
	MissingKeys map[string]bool `json:"missingKeys,omitempty"`
}

func (a *App) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		a.Logger.Error().Err(err).Msg("cannot encode response")
	}
}

func (a *App) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Error: msg})
}

func (a *App) writeMissingKeys(w http.ResponseWriter, e *credentials.MissingKeysError) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(envelope{
		Success:     false,
		Error:       "API keys required. Please configure your API keys in settings.",
		MissingKeys: e.Missing,
	})
}

// serviceError maps domain errors onto HTTP statuses.
func (a *App) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	var missing *credentials.MissingKeysError
	switch {
	case errors.As(err, &missing):
		a.writeMissingKeys(w, missing)
	case errors.Is(err, domain.ErrNotFound):
		a.writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrUnauthorized):
		a.writeError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, domain.ErrNoVideosSelected):
		a.writeError(w, http.StatusBadRequest, err.Error())
	default:
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		a.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (a *App) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer func() {
		_ = r.Body.Close()
	}()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
