package planner

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-planner/backend/internal/solver"
)

// Engine builds meal plans. It only holds immutable settings and is safe for
// concurrent use.
type Engine struct {
	solver   solver.Solver
	opts     Options
	logger   *zap.Logger
	validate *validator.Validate
}

// NewEngine creates an Engine. A nil solver uses the backtracking solver and a
// nil logger disables logging.
func NewEngine(s solver.Solver, opts Options, logger *zap.Logger) *Engine {
	if s == nil {
		s = solver.NewBacktrackingSolver()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	if err := RegisterValidations(v); err != nil {
		panic(err)
	}
	return &Engine{
		solver:   s,
		opts:     opts.withDefaults(),
		logger:   logger,
		validate: v,
	}
}

// Options returns the effective settings.
func (e *Engine) Options() Options { return e.opts }

// RegisterValidations adds the planner's custom tags to v.
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		switch fl.Field().Kind() {
		case reflect.Float32, reflect.Float64:
			f := fl.Field().Float()
			return !math.IsNaN(f) && !math.IsInf(f, 0)
		}
		return true
	})
}

// Validate checks a request without solving it.
func (e *Engine) Validate(req PlanRequest) error {
	if err := e.validate.Struct(req); err != nil {
		return toValidationError(err)
	}
	_, err := NewCatalog(req.Dishes)
	return err
}

// BuildPlan runs the whole pipeline for one request. A feasible schedule that
// was not proven optimal before the time limit is still a successful plan.
func (e *Engine) BuildPlan(req PlanRequest) (*PlanResult, error) {
	if err := e.Validate(req); err != nil {
		return nil, err
	}

	dishes := FilterDishes(req.Dishes, req.DietaryRestrictions, e.opts.AllergenGroups)
	if len(dishes) == 0 {
		return nil, &ValidationError{Field: "dishes", Message: "no dishes left after applying dietary restrictions"}
	}
	if cells := len(dishes) * req.Days; cells > e.opts.MaxModelCells {
		return nil, &ValidationError{
			Field:   "dishes",
			Message: fmt.Sprintf("%d dishes over %d days exceeds the limit of %d dish-days", len(dishes), req.Days, e.opts.MaxModelCells),
		}
	}
	catalog, err := NewCatalog(dishes)
	if err != nil {
		return nil, err
	}

	pm, err := BuildModel(dishes, req.Days, req.DailyCalories, req.BudgetWeek, e.opts)
	if err != nil {
		return nil, err
	}

	resp, err := e.solver.Solve(pm.Model, solver.Parameters{MaxTime: e.opts.TimeLimit, MaxBranches: e.opts.MaxBranches})
	if err != nil {
		if errors.Is(err, solver.ErrInvalidModel) {
			return nil, inconsistent("solver rejected model: %v", err)
		}
		return nil, fmt.Errorf("solve plan model: %w", err)
	}
	e.logger.Debug("plan model solved",
		zap.String("user_id", req.UserID),
		zap.String("status", resp.Status.String()),
		zap.Int("dishes", len(dishes)),
		zap.Int("days", req.Days),
		zap.Int("variables", pm.Model.NumVars()),
		zap.Int64("branches", resp.Branches),
		zap.Duration("wall_time", resp.WallTime),
	)

	switch resp.Status {
	case solver.StatusOptimal, solver.StatusFeasible:
	case solver.StatusInfeasible:
		return nil, &InfeasibleModelError{Days: req.Days, Dishes: len(dishes), Budget: req.BudgetWeek}
	case solver.StatusNoSolutionFound:
		return nil, &SolverTimeoutError{Limit: e.opts.TimeLimit}
	default:
		return nil, inconsistent("solver returned status %s", resp.Status)
	}

	sched, err := Extract(pm, resp)
	if err != nil {
		return nil, err
	}
	list, err := BuildShoppingList(sched.Days, catalog)
	if err != nil {
		return nil, err
	}
	summary, err := Summarize(sched.Days, catalog, req.DailyCalories, req.BudgetWeek, e.opts.FlatMealCost)
	if err != nil {
		return nil, err
	}

	return &PlanResult{
		Days:             sched.Days,
		CookDays:         sched.CookDays,
		ShoppingList:     list,
		Nutrition:        summary.Nutrition,
		EstimatedSavings: summary.EstimatedSavings,
		Solve: SolveInfo{
			Status:     resp.Status.String(),
			Objective:  sched.Objective,
			WallTimeMS: resp.WallTime.Milliseconds(),
			Branches:   resp.Branches,
		},
		Dishes: dishes,
	}, nil
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}
	fe := verrs[0]
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	return &ValidationError{Field: field, Message: describeTag(fe)}
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be at least " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "min":
		return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
	case "finite":
		return "must be a finite number"
	default:
		return "failed " + fe.Tag() + " check"
	}
}
