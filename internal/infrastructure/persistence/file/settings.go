package file

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/turtacn/kam/internal/domain/models"
	"github.com/turtacn/kam/pkg/errors"
)

// SettingsStore persists the registration settings as one JSON document.
type SettingsStore struct {
	path string
	mu   sync.Mutex
}

func NewSettingsStore(path string) *SettingsStore {
	return &SettingsStore{path: path}
}

// Load returns the stored settings, or the zero value when the file does
// not exist yet.
func (s *SettingsStore) Load(ctx context.Context) (models.RegistrationSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var settings models.RegistrationSettings
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return settings, nil
	}
	if err != nil {
		return settings, errors.ErrPersistence("reading settings file failed").WithCause(err)
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return settings, errors.ErrPersistence("settings file is corrupt").WithCause(err)
	}
	return settings, nil
}

// Save validates and stores the settings.
func (s *SettingsStore) Save(ctx context.Context, settings models.RegistrationSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return errors.ErrPersistence("encoding settings failed").WithCause(err)
	}
	return atomicWrite(s.path, data)
}
