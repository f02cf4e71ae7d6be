// Command userplan switches a user between the FREE and PAID plans.
package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"server/internal/domain"
	"server/internal/infra"
)

func main() {
	_ = godotenv.Load()

	subject := flag.String("subject", "", "auth subject of the user")
	planFlag := flag.String("plan", "", "target plan: FREE or PAID")
	flag.Parse()

	logger := infra.NewLogger(os.Getenv("APP_ENV"))

	plan := strings.ToUpper(strings.TrimSpace(*planFlag))
	if *subject == "" || (plan != string(domain.UserPlanFree) && plan != string(domain.UserPlanPaid)) {
		logger.Fatal().Msg("usage: userplan --subject <subject> --plan FREE|PAID")
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

	tag, err := pool.Exec(ctx,
		`UPDATE users SET plan = $2, updated_at = NOW() WHERE subject = $1`, *subject, plan)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot update plan")
	}
	if tag.RowsAffected() == 0 {
		logger.Fatal().Str("subject", *subject).Msg("no such user")
	}
	logger.Info().Str("subject", *subject).Str("plan", plan).Msg("plan updated")
}
