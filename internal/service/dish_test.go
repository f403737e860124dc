package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/alchemorsel-planner/backend/internal/model"
	"github.com/pageza/alchemorsel-planner/backend/internal/service"
	"github.com/pageza/alchemorsel-planner/backend/internal/testdb"
	"github.com/pageza/alchemorsel-planner/backend/internal/testhelpers"
)

func TestDishServiceCRUD(t *testing.T) {
	ctx := context.Background()
	svc := service.NewDishService(testhelpers.SetupTestDatabase(t))

	created, err := svc.CreateDish(ctx, &model.Dish{
		Name:        "Shakshuka",
		Cuisine:     "mediterranean",
		Calories:    420,
		Cost:        4.5,
		Ingredients: model.JSONBStringArray{"egg", "tomato", "pepper"},
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	got, err := svc.GetDish(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shakshuka", got.Name)
	assert.Equal(t, model.JSONBStringArray{"egg", "tomato", "pepper"}, got.Ingredients)

	updated, err := svc.UpdateDish(ctx, created.ID, &model.Dish{
		Name:        "Green shakshuka",
		Cuisine:     "mediterranean",
		Calories:    380,
		Cost:        5,
		Ingredients: model.JSONBStringArray{"egg", "spinach"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Green shakshuka", updated.Name)
	assert.Equal(t, 380, updated.Calories)
	assert.Equal(t, model.JSONBStringArray{"egg", "spinach"}, updated.Ingredients)

	require.NoError(t, svc.DeleteDish(ctx, created.ID))
	_, err = svc.GetDish(ctx, created.ID)
	assert.ErrorIs(t, err, service.ErrDishNotFound)
	assert.ErrorIs(t, svc.DeleteDish(ctx, created.ID), service.ErrDishNotFound)

	_, err = svc.UpdateDish(ctx, uuid.New(), &model.Dish{Name: "ghost", Calories: 1})
	assert.ErrorIs(t, err, service.ErrDishNotFound)
}

func TestDishServiceSearch(t *testing.T) {
	runSearchCases(t, testhelpers.SetupTestDatabase(t))
}

func TestDishServiceSearchPostgres(t *testing.T) {
	runSearchCases(t, testdb.SetupPostgres(t, "../../migrations"))
}

func runSearchCases(t *testing.T, db *gorm.DB) {
	t.Helper()
	ctx := context.Background()
	svc := service.NewDishService(db)

	testhelpers.SeedDishes(t, db,
		model.Dish{Name: "Shrimp Tacos", Cuisine: "mexican", Calories: 600, Ingredients: model.JSONBStringArray{"shrimp", "tortilla"}},
		model.Dish{Name: "Bean Burrito", Cuisine: "Mexican", Calories: 700, Ingredients: model.JSONBStringArray{"beans", "tortilla", "cheese"}},
		model.Dish{Name: "Miso Soup", Cuisine: "japanese", Calories: 150, Ingredients: model.JSONBStringArray{"miso", "tofu"}},
	)

	names := func(dishes []*model.Dish) []string {
		out := make([]string, len(dishes))
		for i, d := range dishes {
			out[i] = d.Name
		}
		return out
	}

	tests := []struct {
		name   string
		filter service.DishFilter
		want   []string
	}{
		{"all", service.DishFilter{}, []string{"Shrimp Tacos", "Bean Burrito", "Miso Soup"}},
		{"query matches name", service.DishFilter{Query: "SOUP"}, []string{"Miso Soup"}},
		{"query matches ingredient", service.DishFilter{Query: "tortilla"}, []string{"Shrimp Tacos", "Bean Burrito"}},
		{"cuisine is case-insensitive", service.DishFilter{Cuisine: "mexican"}, []string{"Shrimp Tacos", "Bean Burrito"}},
		{"exclude ingredient", service.DishFilter{Exclude: []string{"shrimp", " "}}, []string{"Bean Burrito", "Miso Soup"}},
		{"exclude several", service.DishFilter{Exclude: []string{"cheese", "tofu"}}, []string{"Shrimp Tacos"}},
		{"limit", service.DishFilter{Limit: 1}, []string{"Shrimp Tacos"}},
		{"offset", service.DishFilter{Limit: 1, Offset: 2}, []string{"Miso Soup"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.SearchDishes(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestDishServiceSearchMatchesWildcardsLiterally(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewDishService(db)

	testhelpers.SeedDishes(t, db,
		model.Dish{Name: "100% Rye Toast", Calories: 300, Ingredients: model.JSONBStringArray{"rye"}},
		model.Dish{Name: "Rice Bowl", Calories: 500, Ingredients: model.JSONBStringArray{"rice", "sea_salt"}},
		model.Dish{Name: "Plain Omelette", Calories: 350, Ingredients: model.JSONBStringArray{"egg"}},
	)

	got, err := svc.SearchDishes(ctx, service.DishFilter{Query: "%"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "100% Rye Toast", got[0].Name)

	got, err = svc.SearchDishes(ctx, service.DishFilter{Query: "r_ce"})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = svc.SearchDishes(ctx, service.DishFilter{Exclude: []string{"_"}})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "100% Rye Toast", got[0].Name)
	assert.Equal(t, "Plain Omelette", got[1].Name)
}

func TestGetDishesByIDs(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewDishService(db)
	seeded := testhelpers.SeedDishes(t, db, testhelpers.ScenarioDishes()...)

	got, err := svc.GetDishesByIDs(ctx, []uuid.UUID{seeded[1].ID, seeded[0].ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, seeded[1].ID, got[0].ID)
	assert.Equal(t, seeded[0].ID, got[1].ID)

	_, err = svc.GetDishesByIDs(ctx, []uuid.UUID{seeded[0].ID, uuid.New()})
	assert.ErrorIs(t, err, service.ErrDishNotFound)

	got, err = svc.GetDishesByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
