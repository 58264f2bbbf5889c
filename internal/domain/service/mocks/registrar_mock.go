package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/kam/internal/domain/models"
)

type MockAccountRegistrar struct {
	mock.Mock
}

func (m *MockAccountRegistrar) Register(ctx context.Context, settings models.RegistrationSettings) (*models.RegisteredAccount, error) {
	args := m.Called(ctx, settings)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RegisteredAccount), args.Error(1)
}

type MockAuthURLStore struct {
	mock.Mock
}

func (m *MockAuthURLStore) SetCurrent(ctx context.Context, uri string) error {
	args := m.Called(ctx, uri)
	return args.Error(0)
}

func (m *MockAuthURLStore) Current(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockAuthURLStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) Record(ctx context.Context, event *models.AuditEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
