package main

// Run database migrations:
//   go run ./cmd/migrate
//   go run ./cmd/migrate -status

import (
	"context"
	"flag"
	"log"
	"os"

	"studyhub-backend/internal/shared/config"
	"studyhub-backend/internal/shared/storage/db"
)

func main() {
	status := flag.Bool("status", false, "print applied and pending migrations instead of migrating")
	flag.Parse()

	cfg := config.Load()
	ctx := context.Background()

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	run := db.RunMigrations
	if *status {
		run = db.MigrationStatus
	}
	if err := run(ctx, sqlDB); err != nil {
		log.Printf("migrate: %v", err)
		os.Exit(1)
	}
}
