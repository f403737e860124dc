package dishgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeneratorIsDeterministic(t *testing.T) {
	a := New(7).Dishes(5)
	b := New(7).Dishes(5)
	assert.Equal(t, a, b)
}

func TestGeneratedDishesAreValid(t *testing.T) {
	for _, d := range New(11).Dishes(50) {
		p := d.ToPlanner()
		assert.NotEmpty(t, p.ID)
		assert.NotEmpty(t, p.Name)
		assert.Positive(t, p.Calories)
		assert.GreaterOrEqual(t, p.Cost, 0.0)
		assert.GreaterOrEqual(t, p.PrepMinutes, 0)
		assert.NotEmpty(t, p.Ingredients)
	}
}

func TestBuilderOverrides(t *testing.T) {
	d := New(1).Builder().
		WithName("Shrimp tacos").
		WithCalories(640).
		WithCost(7.5).
		WithPrepMinutes(25).
		WithIngredients("shrimp", "tortilla").
		WithCuisine("mexican").
		Build()

	assert.Equal(t, "Shrimp tacos", d.Name)
	assert.Equal(t, 640, d.Calories)
	assert.Equal(t, 7.5, d.Cost)
	assert.Equal(t, 25, d.PrepMinutes)
	assert.Equal(t, []string{"shrimp", "tortilla"}, []string(d.Ingredients))
	assert.Equal(t, "mexican", d.Cuisine)
}
