package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/cmlabs-hris/conveyance-backend-go/internal/config"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/fixtures"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/conveyance-backend-go/migrations"
)

func main() {
	seed := flag.Bool("seed", false, "create the default admin, team lead and employee accounts after migrating")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Error loading config", "error", err)
		os.Exit(1)
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := database.Migrate(ctx, db, migrations.Files); err != nil {
		slog.Error("Migration failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Migrations completed successfully")

	if !*seed {
		return
	}

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		slog.Error("SEED_PASSWORD is required when -seed is set")
		os.Exit(1)
	}

	ids, err := fixtures.SeedDefaultUsers(ctx, postgresql.NewUserRepository(db), password)
	if err != nil {
		slog.Error("Seeding failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Seeding completed", "users", len(ids))
}
