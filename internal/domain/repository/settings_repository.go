package repository

import (
	"context"

	"github.com/turtacn/kam/internal/domain/models"
)

//go:generate mockery --name SettingsRepository --output mocks --outpkg mocks
// SettingsRepository persists the registration settings.
// SettingsRepository 持久化注册设置。
type SettingsRepository interface {
	// Load returns the stored settings, or the zero value when none exist.
	// Load 返回已存储的设置；不存在时返回零值。
	Load(ctx context.Context) (models.RegistrationSettings, error)

	// Save validates and stores the settings.
	// Save 校验并存储设置。
	Save(ctx context.Context, settings models.RegistrationSettings) error
}
