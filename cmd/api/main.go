// Command api serves persisted crosstab runs over HTTP. Without
// DATABASE_URL it falls back to an in-memory store seeded with one
// synthetic run, which is enough to explore the endpoints.
package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"wavetrack/adapters/api"
	"wavetrack/adapters/postgres"
	"wavetrack/internal"
	"wavetrack/internal/engine"
	"wavetrack/internal/testkit"
	"wavetrack/internal/wavecalc"
	"wavetrack/ports"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	logger := internal.NewDefaultLogger()

	repo, err := buildRepository(logger)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	addr := ":" + getEnvOrDefault("PORT", "8080")
	if err := api.NewServer(repo, logger).Start(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func buildRepository(logger *internal.Logger) (ports.CrosstabRepository, error) {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		db, err := postgres.Connect(url)
		if err != nil {
			return nil, err
		}
		if err := postgres.EnsureSchema(context.Background(), db); err != nil {
			return nil, err
		}
		return postgres.NewCrosstabRepository(db), nil
	}

	logger.Warn("DATABASE_URL not set, serving an in-memory demo run")
	repo := testkit.NewInMemoryCrosstabRepository()

	study, cfg := testkit.GenerateStudy(testkit.DefaultStudyConfig())
	results, err := wavecalc.New(study, logger).BuildTrendResults(cfg)
	if err != nil {
		return nil, err
	}
	ct, err := engine.NewBuilder(logger).Build(results, cfg, nil)
	if err != nil {
		return nil, err
	}
	if err := repo.Save(context.Background(), ct); err != nil {
		return nil, err
	}
	logger.Info("seeded demo run %s", ct.RunID)
	return repo, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
