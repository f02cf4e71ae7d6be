// Command api runs the infographic generation backend.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"server/internal/adapter/repo"
	"server/internal/analysis"
	"server/internal/credentials"
	"server/internal/http/handlers"
	"server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/infra/geoip"
	"server/internal/providers/image"
	"server/internal/providers/llm"
	"server/internal/providers/scrape"
	"server/internal/service"
	"server/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		logger := infra.NewLogger("development")
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to database")
	}
	defer pool.Close()

	users := repo.NewUserRepository(pool)
	playlists := repo.NewPlaylistRepository(pool)
	videos := repo.NewVideoRepository(pool)
	infographics := repo.NewInfographicRepository(pool)
	jobs := repo.NewJobRepository(pool)

	scraper := scrape.NewClient(scrape.Options{BaseURL: cfg.ApifyBaseURL})

	gemini := llm.NewGemini(llm.GeminiOptions{Model: cfg.GeminiModel, BaseURL: cfg.GeminiBaseURL})
	var generator llm.Generator = gemini
	if cfg.OpenAIAPIKey != "" {
		fallback, err := llm.NewOpenAI(llm.OpenAIOptions{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("cannot configure fallback generator")
		}
		generator = llm.NewFailover(gemini, fallback, logger)
	}
	analyzer := analysis.NewAnalyzer(generator)

	atlas := image.NewAtlas(image.AtlasOptions{BaseURL: cfg.AtlasBaseURL})

	var files *storage.FileStore
	if cfg.StoragePath != "" {
		files, err = storage.NewFileStore(cfg.StoragePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("cannot prepare storage path")
		}
		logger.Info().Str("path", files.BasePath()).Msg("image mirroring enabled")
	}

	geo, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot open geoip database")
	}

	resolver := credentials.NewResolver(credentials.Keys{
		ApifyAPIToken:    cfg.ApifyAPIToken,
		GeminiAPIKey:     cfg.GeminiAPIKey,
		AtlasCloudAPIKey: cfg.AtlasCloudAPIKey,
	})
	jobCreds := credentials.NewJobStore()

	playlistSvc := service.NewPlaylistService(playlists, videos, infographics, scraper, logger)
	transcriptSvc := service.NewTranscriptService(videos, scraper, logger)
	infographicSvc := service.NewInfographicService(
		playlists, videos, infographics, jobs,
		transcriptSvc, analyzer, atlas,
		jobCreds, files, logger,
	)

	app := &handlers.App{
		Users:        users,
		Playlists:    playlistSvc,
		Infographics: infographicSvc,
		Resolver:     resolver,
		Images:       atlas,
		Logger:       logger,
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		JWTSecret:       cfg.JWTSecret,
		AllowedOrigins:  cfg.AllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		Users:           users,
		Geo:             geo,
		Logger:          logger,
	})

	server := infra.NewHTTPServer(cfg, router)
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("server listening")
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown failed")
		}
	}
}
