package handlers

import (
	"net/http"
	"strings"

	"server/internal/domain"
	"server/internal/middleware"
)

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Plan  string `json:"plan"`
	// Booleans only: stored keys are never echoed back.
	HasApifyAPIToken    bool `json:"hasApifyApiToken"`
	HasGeminiAPIKey     bool `json:"hasGeminiApiKey"`
	HasAtlasCloudAPIKey bool `json:"hasAtlasCloudApiKey"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:                  u.ID,
		Email:               u.Email,
		Name:                u.Name,
		Plan:                string(u.Plan),
		HasApifyAPIToken:    u.ApifyAPIToken != "",
		HasGeminiAPIKey:     u.GeminiAPIKey != "",
		HasAtlasCloudAPIKey: u.AtlasCloudAPIKey != "",
	}
}

// Me returns the authenticated user's profile and key configuration state.
func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		a.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	a.writeJSON(w, http.StatusOK, toUserResponse(user))
}

type updateKeysRequest struct {
	ApifyAPIToken    *string `json:"apifyApiToken"`
	GeminiAPIKey     *string `json:"geminiApiKey"`
	AtlasCloudAPIKey *string `json:"atlasCloudApiKey"`
}

// UpdateAPIKeys stores the user's self-supplied provider keys. Omitted fields
// keep their stored value; an empty string clears a key.
func (a *App) UpdateAPIKeys(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		a.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req updateKeysRequest
	if !a.decodeBody(w, r, &req) {
		return
	}
	trim(req.ApifyAPIToken)
	trim(req.GeminiAPIKey)
	trim(req.AtlasCloudAPIKey)

	updated, err := a.Users.UpdateAPIKeys(r.Context(), user.ID, req.ApifyAPIToken, req.GeminiAPIKey, req.AtlasCloudAPIKey)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, toUserResponse(updated))
}

func trim(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
