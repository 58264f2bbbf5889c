// Package mocks provides hand-rolled testify mocks for the application services.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/kam/internal/application/dto"
	"github.com/turtacn/kam/internal/domain/models"
)

type MockDeviceAuthService struct {
	mock.Mock
}

func (m *MockDeviceAuthService) Begin(ctx context.Context, req *dto.BeginAuthRequest) (*dto.DeviceAuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.DeviceAuthResponse), args.Error(1)
}

func (m *MockDeviceAuthService) Cancel(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockDeviceAuthService) Status(ctx context.Context) models.SessionSnapshot {
	args := m.Called(ctx)
	return args.Get(0).(models.SessionSnapshot)
}

func (m *MockDeviceAuthService) CurrentURL(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type MockRegistrationService struct {
	mock.Mock
}

func (m *MockRegistrationService) Start(ctx context.Context, params models.BatchParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func (m *MockRegistrationService) Stop(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRegistrationService) Reset(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRegistrationService) Progress(ctx context.Context) models.ProgressSnapshot {
	args := m.Called(ctx)
	return args.Get(0).(models.ProgressSnapshot)
}

type MockHistoryService struct {
	mock.Mock
}

func (m *MockHistoryService) List(ctx context.Context) ([]models.RegistrationRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RegistrationRecord), args.Error(1)
}

func (m *MockHistoryService) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockHistoryService) Export(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) Get(ctx context.Context) (*dto.SettingsDTO, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SettingsDTO), args.Error(1)
}

func (m *MockSettingsService) Update(ctx context.Context, in *dto.SettingsDTO) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}
