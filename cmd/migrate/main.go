// Command migrate applies db/schema.sql to the configured database.
package main

import (
	"database/sql"
	"flag"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"server/internal/infra"
)

func main() {
	_ = godotenv.Load()

	schemaPath := flag.String("schema", "db/schema.sql", "path to the schema file")
	flag.Parse()

	logger := infra.NewLogger(os.Getenv("APP_ENV"))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal().Msg("DATABASE_URL is required")
	}

	schema, err := os.ReadFile(*schemaPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", *schemaPath).Msg("cannot read schema")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot open database")
	}
	defer func() {
		_ = db.Close()
	}()

	if _, err := db.Exec(string(schema)); err != nil {
		logger.Fatal().Err(err).Msg("cannot apply schema")
	}
	logger.Info().Str("path", *schemaPath).Msg("schema applied")
}
