package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/alchemorsel-planner/backend/internal/model"
	"github.com/pageza/alchemorsel-planner/backend/internal/service"
)

// MockFeedbackService is a mock implementation of the feedback service
type MockFeedbackService struct {
	mock.Mock
}

// SubmitFeedback mocks the SubmitFeedback method
func (m *MockFeedbackService) SubmitFeedback(ctx context.Context, userID uuid.UUID, entries []model.Feedback) error {
	args := m.Called(ctx, userID, entries)
	return args.Error(0)
}

// ListFeedback mocks the ListFeedback method
func (m *MockFeedbackService) ListFeedback(ctx context.Context, userID uuid.UUID, filter service.FeedbackFilter) ([]*model.Feedback, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Feedback), args.Error(1)
}

// DishSummary mocks the DishSummary method
func (m *MockFeedbackService) DishSummary(ctx context.Context, dishID uuid.UUID) (*service.DishFeedbackSummary, error) {
	args := m.Called(ctx, dishID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DishFeedbackSummary), args.Error(1)
}
