package service

import (
	"context"

	"github.com/turtacn/kam/internal/application/dto"
	"github.com/turtacn/kam/internal/domain/repository"
	"github.com/turtacn/kam/pkg/logger"
)

//go:generate mockery --name SettingsService --output ./mocks --filename mock_settings_service.go --structname MockSettingsService
// SettingsService manages the stored registration settings.
// SettingsService 管理已存储的注册设置。
type SettingsService interface {
	// Get returns the stored settings with the password masked.
	// Get 返回已存储的设置，密码会被掩码。
	Get(ctx context.Context) (*dto.SettingsDTO, error)

	// Update validates and persists new settings. An empty or masked
	// password keeps the stored one.
	// Update 校验并持久化新设置。空密码或掩码密码会保留已存储的密码。
	Update(ctx context.Context, in *dto.SettingsDTO) error
}

type settingsServiceImpl struct {
	settings repository.SettingsRepository
	log      logger.Logger
}

// NewSettingsService creates a new instance of SettingsService.
// NewSettingsService 创建一个新的 SettingsService 实例。
func NewSettingsService(settings repository.SettingsRepository, log logger.Logger) SettingsService {
	return &settingsServiceImpl{settings: settings, log: log}
}

func (s *settingsServiceImpl) Get(ctx context.Context) (*dto.SettingsDTO, error) {
	stored, err := s.settings.Load(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewSettingsDTO(&stored), nil
}

func (s *settingsServiceImpl) Update(ctx context.Context, in *dto.SettingsDTO) error {
	next := in.ToModel()
	if next.EmailPassword == "" || next.EmailPassword == "********" {
		stored, err := s.settings.Load(ctx)
		if err == nil {
			next.EmailPassword = stored.EmailPassword
		}
	}
	if err := next.Validate(); err != nil {
		return err
	}
	if err := s.settings.Save(ctx, *next); err != nil {
		return err
	}
	s.log.Info(ctx, "registration settings updated", logger.Fields{
		"imap_server":  next.ImapServer,
		"email_domain": next.EmailDomain,
	})
	return nil
}
