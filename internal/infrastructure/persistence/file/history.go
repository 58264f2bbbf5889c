// Package file provides JSON-file backed repositories for single-node
// deployments.
package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/turtacn/kam/internal/domain/models"
	"github.com/turtacn/kam/pkg/errors"
)

// HistoryStore persists the ledger as one JSON array, newest first.
// Writes go through a temp file and rename so a crash cannot corrupt it.
type HistoryStore struct {
	path string
	mu   sync.Mutex
}

// NewHistoryStore creates the store; the file is created lazily on the
// first append.
func NewHistoryStore(path string) *HistoryStore {
	return &HistoryStore{path: path}
}

func (s *HistoryStore) Append(ctx context.Context, record models.RegistrationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}

	records = append([]models.RegistrationRecord{record}, records...)
	return s.save(records)
}

func (s *HistoryStore) List(ctx context.Context) ([]models.RegistrationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *HistoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save([]models.RegistrationRecord{})
}

func (s *HistoryStore) load() ([]models.RegistrationRecord, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []models.RegistrationRecord{}, nil
	}
	if err != nil {
		return nil, errors.ErrPersistence("reading history file failed").WithCause(err)
	}
	if len(data) == 0 {
		return []models.RegistrationRecord{}, nil
	}

	var records []models.RegistrationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.ErrPersistence("history file is corrupt").WithCause(err)
	}
	return records, nil
}

func (s *HistoryStore) save(records []models.RegistrationRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return errors.ErrPersistence("encoding history failed").WithCause(err)
	}
	return atomicWrite(s.path, data)
}

// atomicWrite writes data to a sibling temp file and renames it over path.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return errors.ErrPersistence("creating temp file failed").WithCause(err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.ErrPersistence("writing temp file failed").WithCause(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.ErrPersistence("closing temp file failed").WithCause(err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.ErrPersistence("replacing file failed").WithCause(err)
	}
	return nil
}
