// Package dishgen produces plausible random dishes for seeding and tests.
package dishgen

import (
	"fmt"
	"math"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/pageza/alchemorsel-planner/backend/internal/model"
)

var cuisines = []string{"italian", "mexican", "indian", "japanese", "mediterranean", "american", "thai"}

// Generator builds dishes from a seeded faker so a seed always yields the same
// catalog.
type Generator struct {
	faker *gofakeit.Faker
}

// New creates a generator. Equal seeds produce equal sequences.
func New(seed int64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// DishBuilder provides a fluent interface for building test dishes
type DishBuilder struct {
	dish model.Dish
}

// Builder starts a dish with random but valid fields.
func (g *Generator) Builder() *DishBuilder {
	f := g.faker
	ingredients := make([]string, f.Number(2, 6))
	for i := range ingredients {
		ingredients[i] = f.Vegetable()
		if f.Bool() {
			ingredients[i] = f.Fruit()
		}
	}
	return &DishBuilder{dish: model.Dish{
		ID:            uuid.Must(uuid.FromBytes(uuidBytes(f))),
		Name:          fmt.Sprintf("%s %s", f.AdjectiveDescriptive(), f.Dinner()),
		Cuisine:       f.RandomString(cuisines),
		PrepMinutes:   f.Number(5, 90),
		Calories:      f.Number(150, 1200),
		Ingredients:   ingredients,
		Cost:          math.Round(f.Float64Range(1.5, 18)*100) / 100,
		ShelfLifeDays: f.Number(1, 7),
		Tags:          model.JSONBStringArray{},
	}}
}

// Dishes returns n random dishes.
func (g *Generator) Dishes(n int) []model.Dish {
	out := make([]model.Dish, n)
	for i := range out {
		out[i] = g.Builder().Build()
	}
	return out
}

func uuidBytes(f *gofakeit.Faker) []byte {
	b := make([]byte, 16)
	for i := range b {
		b[i] = f.Uint8()
	}
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return b
}

// WithName sets the dish name
func (b *DishBuilder) WithName(name string) *DishBuilder {
	b.dish.Name = name
	return b
}

// WithCalories sets calories per serving
func (b *DishBuilder) WithCalories(calories int) *DishBuilder {
	b.dish.Calories = calories
	return b
}

// WithCost sets cost per serving
func (b *DishBuilder) WithCost(cost float64) *DishBuilder {
	b.dish.Cost = cost
	return b
}

// WithPrepMinutes sets the prep time
func (b *DishBuilder) WithPrepMinutes(minutes int) *DishBuilder {
	b.dish.PrepMinutes = minutes
	return b
}

// WithIngredients replaces the ingredient list
func (b *DishBuilder) WithIngredients(ingredients ...string) *DishBuilder {
	b.dish.Ingredients = ingredients
	return b
}

// WithCuisine sets the cuisine
func (b *DishBuilder) WithCuisine(cuisine string) *DishBuilder {
	b.dish.Cuisine = cuisine
	return b
}

// Build returns the dish.
func (b *DishBuilder) Build() model.Dish {
	return b.dish
}
