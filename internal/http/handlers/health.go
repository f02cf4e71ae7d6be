package handlers

import "net/http"

// Health reports liveness.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
