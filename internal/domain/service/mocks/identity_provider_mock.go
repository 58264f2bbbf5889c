package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/kam/internal/domain/models"
)

type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) RequestDeviceAuthorization(ctx context.Context, startURL, region string) (*models.DeviceAuthInfo, error) {
	args := m.Called(ctx, startURL, region)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeviceAuthInfo), args.Error(1)
}

func (m *MockIdentityProvider) PollToken(ctx context.Context, info *models.DeviceAuthInfo) (*models.PollResult, error) {
	args := m.Called(ctx, info)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PollResult), args.Error(1)
}
