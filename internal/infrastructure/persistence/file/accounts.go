package file

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/turtacn/kam/internal/domain/models"
	"github.com/turtacn/kam/pkg/errors"
)

// AccountStore persists registered accounts as a JSON array, newest first.
// Saving an email that already exists replaces the stored entry.
type AccountStore struct {
	path string
	mu   sync.Mutex
}

func NewAccountStore(path string) *AccountStore {
	return &AccountStore{path: path}
}

func (s *AccountStore) Save(ctx context.Context, account models.RegisteredAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.load()
	if err != nil {
		return err
	}
	kept := accounts[:0]
	for _, existing := range accounts {
		if existing.Email != account.Email {
			kept = append(kept, existing)
		}
	}
	accounts = append([]models.RegisteredAccount{account}, kept...)

	data, err := json.MarshalIndent(accounts, "", "  ")
	if err != nil {
		return errors.ErrPersistence("encoding accounts failed").WithCause(err)
	}
	return atomicWrite(s.path, data)
}

func (s *AccountStore) List(ctx context.Context) ([]models.RegisteredAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *AccountStore) load() ([]models.RegisteredAccount, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []models.RegisteredAccount{}, nil
	}
	if err != nil {
		return nil, errors.ErrPersistence("reading accounts file failed").WithCause(err)
	}
	if len(data) == 0 {
		return []models.RegisteredAccount{}, nil
	}

	var accounts []models.RegisteredAccount
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, errors.ErrPersistence("accounts file is corrupt").WithCause(err)
	}
	return accounts, nil
}
