package planner

import (
	"time"

	"github.com/pageza/alchemorsel-planner/backend/internal/solver"
)

const (
	DefaultMaxServings        = 5
	DefaultCalorieBandPercent = 10
	// DefaultFlatMealCost is the assumed cost of one day of bought meals,
	// used for the savings estimate.
	DefaultFlatMealCost = 15.0
	DefaultTimeLimit    = solver.DefaultMaxTime
	// DefaultMaxModelCells allows 200 dishes over 14 days, or 100 over 28.
	DefaultMaxModelCells = 2800
)

// Weights price the two parts of cooking effort in the objective.
type Weights struct {
	CookSession int64 `json:"cook_session" mapstructure:"cook_session"`
	PrepMinute  int64 `json:"prep_minute" mapstructure:"prep_minute"`
}

// DefaultWeights counts one cook session the same as one prep minute.
func DefaultWeights() Weights {
	return Weights{CookSession: 1, PrepMinute: 1}
}

func defaultWeights() *Weights {
	w := DefaultWeights()
	return &w
}

// Options tune an Engine. Zero fields fall back to the defaults.
type Options struct {
	MaxServings        int
	CalorieBandPercent int
	FlatMealCost       float64
	TimeLimit          time.Duration
	// MaxBranches caps the search size; zero leaves only the time limit.
	MaxBranches int64
	// Weights is nil for DefaultWeights. A zero pair is kept as given and
	// makes every feasible schedule equally good.
	Weights        *Weights
	AllergenGroups map[string][]string
	// MaxModelCells caps dishes times days after filtering.
	MaxModelCells int
}

// DefaultOptions returns the standard planner settings.
func DefaultOptions() Options {
	return Options{
		MaxServings:        DefaultMaxServings,
		CalorieBandPercent: DefaultCalorieBandPercent,
		FlatMealCost:       DefaultFlatMealCost,
		TimeLimit:          DefaultTimeLimit,
		Weights:            defaultWeights(),
		AllergenGroups:     DefaultAllergenGroups(),
		MaxModelCells:      DefaultMaxModelCells,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.MaxServings <= 0 {
		o.MaxServings = def.MaxServings
	}
	if o.CalorieBandPercent <= 0 || o.CalorieBandPercent >= 100 {
		o.CalorieBandPercent = def.CalorieBandPercent
	}
	if o.FlatMealCost <= 0 {
		o.FlatMealCost = def.FlatMealCost
	}
	if o.TimeLimit <= 0 {
		o.TimeLimit = def.TimeLimit
	}
	if o.Weights == nil {
		o.Weights = def.Weights
	}
	if o.MaxModelCells <= 0 {
		o.MaxModelCells = def.MaxModelCells
	}
	if o.AllergenGroups == nil {
		o.AllergenGroups = def.AllergenGroups
	}
	return o
}
