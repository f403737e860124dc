package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/alchemorsel-planner/backend/internal/model"
	"github.com/pageza/alchemorsel-planner/backend/internal/service"
)

// MockDishService is a mock implementation of the dish service
type MockDishService struct {
	mock.Mock
}

// CreateDish mocks the CreateDish method
func (m *MockDishService) CreateDish(ctx context.Context, dish *model.Dish) (*model.Dish, error) {
	args := m.Called(ctx, dish)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Dish), args.Error(1)
}

// GetDish mocks the GetDish method
func (m *MockDishService) GetDish(ctx context.Context, id uuid.UUID) (*model.Dish, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Dish), args.Error(1)
}

// UpdateDish mocks the UpdateDish method
func (m *MockDishService) UpdateDish(ctx context.Context, id uuid.UUID, dish *model.Dish) (*model.Dish, error) {
	args := m.Called(ctx, id, dish)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Dish), args.Error(1)
}

// DeleteDish mocks the DeleteDish method
func (m *MockDishService) DeleteDish(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// SearchDishes mocks the SearchDishes method
func (m *MockDishService) SearchDishes(ctx context.Context, filter service.DishFilter) ([]*model.Dish, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Dish), args.Error(1)
}

// GetDishesByIDs mocks the GetDishesByIDs method
func (m *MockDishService) GetDishesByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Dish, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Dish), args.Error(1)
}
