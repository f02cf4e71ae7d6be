// Command userkeys sets a user's self-supplied provider keys directly,
// bypassing the HTTP API. Useful for support and local testing.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"

	"server/internal/adapter/repo"
	"server/internal/infra"
)

func main() {
	_ = godotenv.Load()

	subject := flag.String("subject", "", "auth subject of the user")
	apify := flag.String("apify", "", "scraper API token")
	gemini := flag.String("gemini", "", "language model API key")
	atlas := flag.String("atlas", "", "image API key")
	flag.Parse()

	logger := infra.NewLogger(os.Getenv("APP_ENV"))
	if *subject == "" {
		logger.Fatal().Msg("usage: userkeys --subject <subject> [--apify ...] [--gemini ...] [--atlas ...]")
	}

	cfg, err := infra.LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to database")
	}
	defer pool.Close()

	users := repo.NewUserRepository(pool)
	user, err := users.GetBySubject(ctx, *subject)
	if err != nil {
		logger.Fatal().Err(err).Str("subject", *subject).Msg("cannot load user")
	}

	// Flags left empty keep the stored key.
	updated, err := users.UpdateAPIKeys(ctx, user.ID, optional(*apify), optional(*gemini), optional(*atlas))
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot update keys")
	}
	logger.Info().
		Str("subject", *subject).
		Bool("apify", updated.ApifyAPIToken != "").
		Bool("gemini", updated.GeminiAPIKey != "").
		Bool("atlas", updated.AtlasCloudAPIKey != "").
		Msg("keys updated")
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
