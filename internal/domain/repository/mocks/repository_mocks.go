package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/kam/internal/domain/models"
)

type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Append(ctx context.Context, record models.RegistrationRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockHistoryRepository) List(ctx context.Context) ([]models.RegistrationRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RegistrationRecord), args.Error(1)
}

func (m *MockHistoryRepository) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Save(ctx context.Context, account models.RegisteredAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) List(ctx context.Context) ([]models.RegisteredAccount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RegisteredAccount), args.Error(1)
}

type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Load(ctx context.Context) (models.RegistrationSettings, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.RegistrationSettings), args.Error(1)
}

func (m *MockSettingsRepository) Save(ctx context.Context, settings models.RegistrationSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}
