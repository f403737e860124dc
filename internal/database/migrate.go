package database

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/alchemorsel-planner/backend/internal/model"
)

// Models lists every table the service owns.
func Models() []interface{} {
	return []interface{}{
		&model.Dish{},
		&model.MealPlan{},
		&model.Preference{},
		&model.Feedback{},
	}
}

// RunMigrations creates the tables and then, on postgres, applies the SQL
// files in migrationsDir that have not been applied yet. A missing directory
// is not an error.
func RunMigrations(db *gorm.DB, migrationsDir string, logger *zap.Logger) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}
	if db.Dialector.Name() == "sqlite" {
		logger.Info("Using GORM auto-migration for SQLite")
		return nil
	}

	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Info("No migrations directory, skipping SQL migrations", zap.String("dir", migrationsDir))
			return nil
		}
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	// Sort files by name to ensure correct order
	sort.Slice(files, func(i, j int) bool {
		return files[i].Name() < files[j].Name()
	})

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		var count int64
		if err := db.Table("migrations").Where("name = ?", file.Name()).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if count > 0 {
			logger.Debug("Skipping migration (already applied)", zap.String("name", file.Name()))
			continue
		}

		content, err := os.ReadFile(filepath.Join(migrationsDir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file.Name(), err)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(content)).Error; err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", file.Name(), err)
			}
			if err := tx.Exec("INSERT INTO migrations (name) VALUES (?)", file.Name()).Error; err != nil {
				return fmt.Errorf("failed to record migration %s: %w", file.Name(), err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		logger.Info("Applied migration", zap.String("name", file.Name()))
	}

	return nil
}
