package main

import (
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-planner/backend/config"
	"github.com/pageza/alchemorsel-planner/backend/internal/database"
	"github.com/pageza/alchemorsel-planner/backend/internal/logging"
)

func main() {
	migrationsDir := flag.String("dir", "migrations", "Directory holding SQL migrations")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger, err := logging.New(logging.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "alchemorsel-planner-migrate",
		Environment: string(cfg.Environment),
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	if err := database.RunMigrations(db, *migrationsDir, logger); err != nil {
		logger.Fatal("Migration failed", zap.Error(err))
	}
	logger.Info("Migrations complete")
}
