package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/alchemorsel-planner/backend/internal/model"
)

// MockPreferenceService is a mock implementation of the preference service
type MockPreferenceService struct {
	mock.Mock
}

// GetPreference mocks the GetPreference method
func (m *MockPreferenceService) GetPreference(ctx context.Context, userID uuid.UUID) (*model.Preference, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Preference), args.Error(1)
}

// UpsertPreference mocks the UpsertPreference method
func (m *MockPreferenceService) UpsertPreference(ctx context.Context, userID uuid.UUID, pref *model.Preference) (*model.Preference, error) {
	args := m.Called(ctx, userID, pref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Preference), args.Error(1)
}

// DeletePreference mocks the DeletePreference method
func (m *MockPreferenceService) DeletePreference(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
