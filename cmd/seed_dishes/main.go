package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/alchemorsel-planner/backend/config"
	"github.com/pageza/alchemorsel-planner/backend/internal/database"
	"github.com/pageza/alchemorsel-planner/backend/internal/dishgen"
	"github.com/pageza/alchemorsel-planner/backend/internal/logging"
	"github.com/pageza/alchemorsel-planner/backend/internal/model"
	"github.com/pageza/alchemorsel-planner/backend/internal/planner"
)

const batchSize = 100

func main() {
	file := flag.String("file", "", "JSON file with an array of dishes; random dishes are generated when empty")
	count := flag.Int("count", 50, "Number of random dishes to generate")
	seed := flag.Int64("seed", 1, "Seed for generated dishes")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger, err := logging.New(logging.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "alchemorsel-planner-seed",
		Environment: string(cfg.Environment),
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	dishes, err := loadDishes(*file, *count, *seed)
	if err != nil {
		logger.Fatal("Failed to load dishes", zap.Error(err))
	}

	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	if err := database.RunMigrations(db, "migrations", logger); err != nil {
		logger.Fatal("Migration failed", zap.Error(err))
	}
	if err := insert(db, dishes); err != nil {
		logger.Fatal("Failed to seed dishes", zap.Error(err))
	}
	logger.Info("Seeded dishes", zap.Int("count", len(dishes)))
}

// loadDishes reads dishes from path, or generates count of them.
func loadDishes(path string, count int, seed int64) ([]model.Dish, error) {
	if path == "" {
		return dishgen.New(seed).Dishes(count), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []planner.Dish
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	dishes := make([]model.Dish, 0, len(entries))
	for i, e := range entries {
		if e.Name == "" || e.Calories <= 0 || e.Cost < 0 || e.PrepMinutes < 0 {
			return nil, fmt.Errorf("dish %d (%q) has an empty name or invalid numbers", i, e.Name)
		}
		dishes = append(dishes, model.DishFromPlanner(e))
	}
	return dishes, nil
}

func insert(db *gorm.DB, dishes []model.Dish) error {
	if len(dishes) == 0 {
		return nil
	}
	return db.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(dishes, batchSize).Error
	})
}
