package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pageza/alchemorsel-planner/backend/internal/metrics"
	"github.com/pageza/alchemorsel-planner/backend/internal/model"
	"github.com/pageza/alchemorsel-planner/backend/internal/planner"
)

var (
	// ErrArchiveDisabled is returned when no archive is configured.
	ErrArchiveDisabled = errors.New("plan archive is disabled")
	// ErrNotArchived is returned for plans that have no archived copy.
	ErrNotArchived = errors.New("plan has not been archived")
)

const recommendTimeout = 30 * time.Second

// PlanOutcome is a plan that was built (or served from cache) and stored.
type PlanOutcome struct {
	ID        uuid.UUID           `json:"plan_id"`
	CreatedAt time.Time           `json:"created_at"`
	Cached    bool                `json:"cached"`
	Result    *planner.PlanResult `json:"plan"`
}

// PlanInput is a plan request as a client sent it, before the catalog is
// resolved and stored preferences are applied.
type PlanInput struct {
	planner.PlanRequest
	// DishIDs selects stored dishes as the catalog instead of Dishes.
	DishIDs []uuid.UUID
	// BudgetMissing marks a request without budget_week. The stored
	// preference budget is used instead.
	BudgetMissing bool
}

// PlanServiceOptions holds the optional collaborators of a PlanService.
// Nil fields disable the matching feature.
type PlanServiceOptions struct {
	Cache       PlanCache
	CacheTTL    time.Duration
	Archive     PlanArchive
	Recommender Recommender
	// Preferences supplies a user's default budget and allergies.
	Preferences PreferenceReader
	Metrics     *metrics.Collector
	Logger      *zap.Logger
}

// PlanService handles meal plan operations
type PlanService struct {
	engine      *planner.Engine
	dishes      IDishService
	store       PlanRepository
	cache       PlanCache
	cacheTTL    time.Duration
	archive     PlanArchive
	recommender Recommender
	preferences PreferenceReader
	metrics     *metrics.Collector
	logger      *zap.Logger

	pending sync.WaitGroup
}

// NewPlanService creates a new PlanService instance
func NewPlanService(engine *planner.Engine, dishes IDishService, store PlanRepository, opts PlanServiceOptions) *PlanService {
	s := &PlanService{
		engine:      engine,
		dishes:      dishes,
		store:       store,
		cache:       opts.Cache,
		cacheTTL:    opts.CacheTTL,
		archive:     opts.Archive,
		recommender: opts.Recommender,
		preferences: opts.Preferences,
		metrics:     opts.Metrics,
		logger:      opts.Logger,
	}
	if s.cacheTTL <= 0 {
		s.cacheTTL = time.Hour
	}
	if s.recommender == nil {
		s.recommender = NoopRecommender{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// CreatePlan builds a plan for userID and stores it. The catalog is either
// in.Dishes or, when in.DishIDs is non-empty, the stored dishes with those
// ids. A missing budget or restriction list falls back to the user's stored
// preferences.
func (s *PlanService) CreatePlan(ctx context.Context, userID uuid.UUID, in PlanInput) (*PlanOutcome, error) {
	req := in.PlanRequest
	if len(in.DishIDs) > 0 {
		if len(req.Dishes) > 0 {
			return nil, &planner.ValidationError{Field: "dish_ids", Message: "give either dishes or dish_ids, not both"}
		}
		dishes, err := s.resolveDishes(ctx, in.DishIDs)
		if err != nil {
			return nil, err
		}
		req.Dishes = dishes
	}
	req.UserID = userID.String()
	if err := s.applyPreferences(ctx, userID, &req, in.BudgetMissing); err != nil {
		return nil, err
	}

	if err := s.engine.Validate(req); err != nil {
		s.metrics.ObservePlan(outcomeLabel(nil, err), 0)
		return nil, err
	}

	key := RequestKey(req, s.engine.Options())
	res, cached := s.cached(ctx, key)
	if !cached {
		var err error
		res, err = s.build(req)
		if err != nil {
			return nil, err
		}
		s.remember(ctx, key, res)
	}

	plan := model.NewMealPlan(userID, key, req, res)
	plan.ID = uuid.New()
	if err := s.persist(ctx, plan, res); err != nil {
		return nil, err
	}

	catalog := res.Dishes
	if catalog == nil {
		catalog = planner.FilterDishes(req.Dishes, req.DietaryRestrictions, s.engine.Options().AllergenGroups)
	}
	s.recommend(req.UserID, clonePlan(res), catalog, req.Preferences)

	return &PlanOutcome{
		ID:        plan.ID,
		CreatedAt: plan.CreatedAt,
		Cached:    cached,
		Result:    res,
	}, nil
}

func (s *PlanService) resolveDishes(ctx context.Context, ids []uuid.UUID) ([]planner.Dish, error) {
	rows, err := s.dishes.GetDishesByIDs(ctx, ids)
	if err != nil {
		if errors.Is(err, ErrDishNotFound) {
			return nil, &planner.ValidationError{Field: "dish_ids", Message: err.Error()}
		}
		return nil, fmt.Errorf("failed to load dishes: %w", err)
	}
	dishes := make([]planner.Dish, len(rows))
	for i, row := range rows {
		dishes[i] = row.ToPlanner()
	}
	return dishes, nil
}

// applyPreferences fills the budget when the client gave none and the
// restrictions when the client sent no list at all. An explicit empty list
// means no restrictions.
func (s *PlanService) applyPreferences(ctx context.Context, userID uuid.UUID, req *planner.PlanRequest, budgetMissing bool) error {
	if !budgetMissing && req.DietaryRestrictions != nil {
		return nil
	}

	var pref *model.Preference
	if s.preferences != nil {
		var err error
		pref, err = s.preferences.GetPreference(ctx, userID)
		if err != nil && !errors.Is(err, ErrPreferenceNotFound) {
			return fmt.Errorf("failed to load preferences: %w", err)
		}
	}

	if budgetMissing {
		if pref == nil || pref.BudgetWeek == nil {
			return &planner.ValidationError{Field: "budget_week", Message: "is required when no budget is stored in preferences"}
		}
		req.BudgetWeek = *pref.BudgetWeek
	}
	if req.DietaryRestrictions == nil && pref != nil && len(pref.Allergies) > 0 {
		req.DietaryRestrictions = append([]string(nil), pref.Allergies...)
	}
	return nil
}

func (s *PlanService) build(req planner.PlanRequest) (*planner.PlanResult, error) {
	start := time.Now()
	res, err := s.engine.BuildPlan(req)
	elapsed := time.Since(start)
	s.metrics.ObservePlan(outcomeLabel(res, err), elapsed)

	if err != nil {
		fields := []zap.Field{
			zap.String("user_id", req.UserID),
			zap.Int("days", req.Days),
			zap.Int("dishes", len(req.Dishes)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		}
		switch {
		case errors.Is(err, planner.ErrInternalConsistency):
			s.logger.Error("Plan failed consistency checks", fields...)
		case errors.Is(err, planner.ErrValidation), errors.Is(err, planner.ErrInfeasible):
			s.logger.Info("Plan request rejected", fields...)
		default:
			s.logger.Warn("Plan build failed", fields...)
		}
		return nil, err
	}

	s.logger.Info("Plan built",
		zap.String("user_id", req.UserID),
		zap.String("status", res.Solve.Status),
		zap.Int64("objective", res.Solve.Objective),
		zap.Int("cook_sessions", res.Nutrition.CookSessions),
		zap.Duration("elapsed", elapsed),
	)
	return res, nil
}

func (s *PlanService) cached(ctx context.Context, key string) (*planner.PlanResult, bool) {
	if s.cache == nil {
		return nil, false
	}
	res, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.metrics.CacheError("get")
		s.logger.Warn("Plan cache read failed", zap.Error(err))
		return nil, false
	}
	s.metrics.CacheLookup(ok)
	return res, ok
}

func (s *PlanService) remember(ctx context.Context, key string, res *planner.PlanResult) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, res, s.cacheTTL); err != nil {
		s.metrics.CacheError("set")
		s.logger.Warn("Plan cache write failed", zap.Error(err))
	}
}

// persist saves the plan and, concurrently, archives it. Archive failures
// are logged and counted but do not fail the request.
func (s *PlanService) persist(ctx context.Context, plan *model.MealPlan, res *planner.PlanResult) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.store.Save(gctx, plan); err != nil {
			return fmt.Errorf("failed to save plan: %w", err)
		}
		return nil
	})

	var archiveKey string
	if s.archive != nil {
		g.Go(func() error {
			key, err := s.archive.Put(gctx, plan.UserID, plan.ID, res)
			if err != nil {
				s.metrics.ArchiveFailed()
				s.logger.Warn("Failed to archive plan", zap.String("plan_id", plan.ID.String()), zap.Error(err))
				return nil
			}
			archiveKey = key
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if archiveKey != "" {
		if err := s.store.SetArchiveKey(ctx, plan.ID, archiveKey); err != nil {
			s.logger.Warn("Failed to record archive key", zap.String("plan_id", plan.ID.String()), zap.Error(err))
		} else {
			plan.ArchiveKey = archiveKey
		}
	}
	return nil
}

func (s *PlanService) recommend(userID string, res *planner.PlanResult, catalog []planner.Dish, prefs map[string]any) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("Recommender panicked", zap.String("user_id", userID), zap.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), recommendTimeout)
		defer cancel()
		if err := s.recommender.Recommend(ctx, userID, res, catalog, prefs); err != nil {
			s.logger.Warn("Recommender failed", zap.String("user_id", userID), zap.Error(err))
		}
	}()
}

// Wait blocks until every dispatched recommendation has returned.
func (s *PlanService) Wait() {
	s.pending.Wait()
}

// GetPlan loads one of the user's plans.
func (s *PlanService) GetPlan(ctx context.Context, userID, id uuid.UUID) (*model.MealPlan, error) {
	return s.store.Get(ctx, userID, id)
}

// ListPlans returns the user's most recent plans.
func (s *PlanService) ListPlans(ctx context.Context, userID uuid.UUID, limit int) ([]*model.MealPlan, error) {
	return s.store.ListByUser(ctx, userID, limit)
}

// DeletePlan removes one of the user's plans.
func (s *PlanService) DeletePlan(ctx context.Context, userID, id uuid.UUID) error {
	return s.store.Delete(ctx, userID, id)
}

// ShoppingList returns the formatted shopping list of a stored plan.
func (s *PlanService) ShoppingList(ctx context.Context, userID, id uuid.UUID) ([]string, error) {
	plan, err := s.store.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return plan.Plan().ShoppingList.Lines(), nil
}

// ArchiveURL returns a download link for the archived copy of a plan.
func (s *PlanService) ArchiveURL(ctx context.Context, userID, id uuid.UUID) (string, error) {
	if s.archive == nil {
		return "", ErrArchiveDisabled
	}
	plan, err := s.store.Get(ctx, userID, id)
	if err != nil {
		return "", err
	}
	if plan.ArchiveKey == "" {
		return "", ErrNotArchived
	}
	return s.archive.URL(ctx, plan.ArchiveKey)
}

func outcomeLabel(res *planner.PlanResult, err error) string {
	switch {
	case err == nil && res != nil:
		return res.Solve.Status
	case errors.Is(err, planner.ErrValidation):
		return "invalid"
	case errors.Is(err, planner.ErrInfeasible):
		return "INFEASIBLE"
	case errors.Is(err, planner.ErrSolverTimeout):
		return "NO_SOLUTION_FOUND"
	case errors.Is(err, planner.ErrInternalConsistency):
		return "inconsistent"
	default:
		return "error"
	}
}

// clonePlan copies the parts of a plan a collaborator could modify.
func clonePlan(res *planner.PlanResult) *planner.PlanResult {
	out := *res
	out.Days = make([]planner.Day, len(res.Days))
	for i, d := range res.Days {
		d.Dishes = append([]planner.DishServing(nil), d.Dishes...)
		out.Days[i] = d
	}
	out.CookDays = append([]int(nil), res.CookDays...)
	out.ShoppingList = append(planner.ShoppingList(nil), res.ShoppingList...)
	out.Dishes = append([]planner.Dish(nil), res.Dishes...)
	return &out
}
