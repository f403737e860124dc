// Package testhelpers holds shared fixtures for package tests.
package testhelpers

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/alchemorsel-planner/backend/config"
	"github.com/pageza/alchemorsel-planner/backend/internal/database"
	"github.com/pageza/alchemorsel-planner/backend/internal/model"
)

// SetupTestDatabase opens a migrated sqlite database private to the test.
func SetupTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, database.RunMigrations(db, "", zap.NewNop()))
	return db
}

// SeedDishes inserts dishes and returns them with their ids.
func SeedDishes(t *testing.T, db *gorm.DB, dishes ...model.Dish) []model.Dish {
	t.Helper()
	for i := range dishes {
		require.NoError(t, db.Create(&dishes[i]).Error)
	}
	return dishes
}

// ScenarioDishes returns the two-dish catalog used by the end-to-end tests:
// 500 and 300 calories, 5.00 and 3.00 per serving.
func ScenarioDishes() []model.Dish {
	return []model.Dish{
		{Name: "Pasta", Cuisine: "italian", PrepMinutes: 20, Calories: 500, Cost: 5, Ingredients: model.JSONBStringArray{"pasta", "tomato"}},
		{Name: "Rice bowl", Cuisine: "japanese", PrepMinutes: 10, Calories: 300, Cost: 3, Ingredients: model.JSONBStringArray{"rice", "tomato"}},
	}
}
