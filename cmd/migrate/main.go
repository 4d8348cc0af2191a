package main

import (
	"context"
	"flag"
	"os"

	"cloud.google.com/go/bigquery"

	"github.com/dvloznov/spendsense/internal/config"
	infraBQ "github.com/dvloznov/spendsense/internal/infra/bigquery"
	"github.com/dvloznov/spendsense/internal/logger"
)

func main() {
	var (
		configPath = flag.String("config", os.Getenv("SPENDSENSE_CONFIG"), "path to YAML config file")
		projectID  = flag.String("project", "", "GCP project ID (defaults to ledger.project / GCP_PROJECT)")
		datasetID  = flag.String("dataset", "", "BigQuery dataset ID (defaults to ledger.dataset / BQ_DATASET)")
		appliedBy  = flag.String("applied-by", "migrate-cli", "Name of the tool applying migrations")
		dryRun     = flag.Bool("dry-run", false, "List pending migrations without applying them")
	)
	flag.Parse()

	log := logger.New()

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.LoadFromFile(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		log.Fatal().Err(err).Msg("Invalid environment")
	}
	if *projectID == "" {
		*projectID = cfg.Ledger.Project
	}
	if *datasetID == "" {
		*datasetID = cfg.Ledger.Dataset
	}
	if *projectID == "" || *datasetID == "" {
		log.Fatal().Msg("Project and dataset are required: pass -project/-dataset or set GCP_PROJECT/BQ_DATASET")
	}

	ctx := context.Background()

	client, err := bigquery.NewClient(ctx, *projectID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery client")
	}
	defer client.Close()

	log.Info().Str("project", *projectID).Str("dataset", *datasetID).Msg("Connected to BigQuery")

	migrator := infraBQ.NewMigrator(client, *datasetID, *appliedBy)

	if err := migrator.EnsureSchemaMigrationsTable(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure schema_migrations table")
	}

	migrations, skipped, err := infraBQ.ReadMigrations(infraBQ.EmbeddedMigrations(), *projectID, *datasetID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read migrations")
	}
	for _, name := range skipped {
		log.Warn().Str("file", name).Msg("Skipping file with invalid format")
	}

	applied, err := migrator.Applied(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get applied migrations")
	}

	pending, err := infraBQ.Pending(migrations, applied)
	if err != nil {
		log.Fatal().Err(err).Msg("Migration history does not match shipped migrations")
	}

	log.Info().
		Int("found", len(migrations)).
		Int("applied", len(applied)).
		Int("pending", len(pending)).
		Msg("Migration status")

	for _, m := range pending {
		if *dryRun {
			log.Info().Int("version", m.Version).Str("name", m.Name).Msg("Pending")
			continue
		}

		log.Info().Int("version", m.Version).Str("name", m.Name).Msg("Applying migration")
		if err := migrator.Apply(ctx, m); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migration")
		}
	}

	if len(pending) == 0 {
		log.Info().Msg("No new migrations to apply. Dataset is up to date.")
	} else if !*dryRun {
		log.Info().Int("count", len(pending)).Msg("Migrations applied")
	}
}
