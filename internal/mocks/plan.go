package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/alchemorsel-planner/backend/internal/model"
	"github.com/pageza/alchemorsel-planner/backend/internal/planner"
	"github.com/pageza/alchemorsel-planner/backend/internal/service"
)

// MockPlanService is a mock implementation of the plan service
type MockPlanService struct {
	mock.Mock
}

// CreatePlan mocks the CreatePlan method
func (m *MockPlanService) CreatePlan(ctx context.Context, userID uuid.UUID, in service.PlanInput) (*service.PlanOutcome, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PlanOutcome), args.Error(1)
}

// GetPlan mocks the GetPlan method
func (m *MockPlanService) GetPlan(ctx context.Context, userID, id uuid.UUID) (*model.MealPlan, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MealPlan), args.Error(1)
}

// ListPlans mocks the ListPlans method
func (m *MockPlanService) ListPlans(ctx context.Context, userID uuid.UUID, limit int) ([]*model.MealPlan, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.MealPlan), args.Error(1)
}

// DeletePlan mocks the DeletePlan method
func (m *MockPlanService) DeletePlan(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// ShoppingList mocks the ShoppingList method
func (m *MockPlanService) ShoppingList(ctx context.Context, userID, id uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// ArchiveURL mocks the ArchiveURL method
func (m *MockPlanService) ArchiveURL(ctx context.Context, userID, id uuid.UUID) (string, error) {
	args := m.Called(ctx, userID, id)
	return args.String(0), args.Error(1)
}

// MockPlanArchive is a mock implementation of the plan archive
type MockPlanArchive struct {
	mock.Mock
}

// Put mocks the Put method
func (m *MockPlanArchive) Put(ctx context.Context, userID, planID uuid.UUID, res *planner.PlanResult) (string, error) {
	args := m.Called(ctx, userID, planID, res)
	return args.String(0), args.Error(1)
}

// URL mocks the URL method
func (m *MockPlanArchive) URL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

// MockPlanCache is a mock implementation of the plan cache
type MockPlanCache struct {
	mock.Mock
}

// Get mocks the Get method
func (m *MockPlanCache) Get(ctx context.Context, key string) (*planner.PlanResult, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*planner.PlanResult), args.Bool(1), args.Error(2)
}

// Set mocks the Set method
func (m *MockPlanCache) Set(ctx context.Context, key string, res *planner.PlanResult, ttl time.Duration) error {
	args := m.Called(ctx, key, res, ttl)
	return args.Error(0)
}

// MockRecommender is a mock implementation of the recommendation hook
type MockRecommender struct {
	mock.Mock
}

// Recommend mocks the Recommend method
func (m *MockRecommender) Recommend(ctx context.Context, userID string, plan *planner.PlanResult, catalog []planner.Dish, preferences map[string]any) error {
	args := m.Called(ctx, userID, plan, catalog, preferences)
	return args.Error(0)
}
