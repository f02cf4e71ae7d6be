package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/http/handlers"
	"server/internal/infra/geoip"
	"server/internal/middleware"
)

// Options carries everything the router needs beyond the handlers.
type Options struct {
	JWTSecret       string
	AllowedOrigins  []string
	RateLimitPerMin int
	Users           domain.UserRepository
	Geo             geoip.CountryResolver
	Logger          zerolog.Logger
}

// NewRouter assembles the HTTP surface. Everything under /api requires a
// valid bearer token; the health endpoint stays open.
func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(opts.AllowedOrigins))
	r.Use(middleware.NewRateLimiter(opts.RateLimitPerMin).Handler)
	r.Use(middleware.Locale(opts.Geo))

	r.Get("/health", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.JWTAuth(opts.JWTSecret, opts.Users, opts.Logger))

		r.Route("/auth", func(r chi.Router) {
			r.Get("/me", app.Me)
			r.Put("/api-keys", app.UpdateAPIKeys)
		})

		r.Route("/playlist", func(r chi.Router) {
			r.Post("/extract", app.Extract)
			r.Get("/{id}", app.GetPlaylist)
			r.Get("/{id}/infographics", app.PlaylistInfographics)
			r.Get("/{id}/infographics/download", app.DownloadInfographics)
		})
		r.Get("/playlists", app.ListPlaylists)

		r.Route("/infographic", func(r chi.Router) {
			r.Post("/generate", app.Generate)
			r.Get("/job/{jobID}", app.JobStatus)
			r.Get("/jobs", app.ListJobs)
			r.Get("/{videoID}", app.GetInfographic)
		})
	})

	return r
}
