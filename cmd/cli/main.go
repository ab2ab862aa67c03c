// Command cli runs one tracking crosstab end to end: a synthetic study, the
// per-wave calculator, the engine, and JSON on stdout. With DATABASE_URL
// set the run is also persisted.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/joho/godotenv"

	"wavetrack/adapters/postgres"
	"wavetrack/domain/crosstab"
	"wavetrack/internal"
	"wavetrack/internal/engine"
	"wavetrack/internal/testkit"
	"wavetrack/internal/wavecalc"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	logger := internal.NewDefaultLogger()

	study, cfg := testkit.GenerateStudy(testkit.DefaultStudyConfig())
	cfg.ApplyEnv()

	calc := wavecalc.New(study, logger)
	results, err := calc.BuildTrendResults(cfg)
	if err != nil {
		log.Fatalf("Failed to compute wave results: %v", err)
	}

	ct, err := engine.NewBuilder(logger).Build(results, cfg, nil)
	if err != nil {
		log.Fatalf("Failed to build crosstab: %v", err)
	}
	logger.Info("run %s: %d rows across %d waves", ct.RunID, len(ct.Rows), len(ct.Waves))

	if url := os.Getenv("DATABASE_URL"); url != "" {
		if err := persist(ct, url); err != nil {
			log.Fatalf("Failed to persist run: %v", err)
		}
		logger.Info("run %s persisted", ct.RunID)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ct); err != nil {
		log.Fatalf("Failed to encode crosstab: %v", err)
	}
}

func persist(ct *crosstab.Crosstab, url string) error {
	db, err := postgres.Connect(url)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return err
	}
	return postgres.NewCrosstabRepository(db).Save(ctx, ct)
}
