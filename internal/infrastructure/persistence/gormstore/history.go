// Package gormstore provides a database-backed history ledger for
// deployments that outgrow the JSON file.
package gormstore

import (
	"context"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/turtacn/kam/internal/domain/models"
	"github.com/turtacn/kam/pkg/constants"
	"github.com/turtacn/kam/pkg/errors"
)

// historyRow is the table shape; Seq gives a stable newest-first order
// independent of the display timestamp.
type historyRow struct {
	Seq       uint   `gorm:"primaryKey;autoIncrement"`
	RecordID  string `gorm:"uniqueIndex;size:36"`
	Timestamp string
	Email     string
	Password  string
	Status    string
	Error     string
	AccountID string
}

func (historyRow) TableName() string { return "registration_history" }

// HistoryStore implements the history repository on gorm.
type HistoryStore struct {
	db *gorm.DB
}

// OpenSQLite opens (and migrates) a sqlite-backed store at path.
func OpenSQLite(path string) (*HistoryStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.ErrPersistence("opening sqlite database failed").WithCause(err)
	}
	return newStore(db)
}

// OpenPostgres opens (and migrates) a postgres-backed store.
func OpenPostgres(dsn string) (*HistoryStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.ErrPersistence("opening postgres database failed").WithCause(err)
	}
	return newStore(db)
}

func newStore(db *gorm.DB) (*HistoryStore, error) {
	if err := db.AutoMigrate(&historyRow{}); err != nil {
		return nil, errors.ErrPersistence("migrating history table failed").WithCause(err)
	}
	return &HistoryStore{db: db}, nil
}

func (s *HistoryStore) Append(ctx context.Context, record models.RegistrationRecord) error {
	row := historyRow{
		RecordID:  record.ID,
		Timestamp: record.Timestamp,
		Email:     record.Email,
		Password:  record.Password,
		Status:    string(record.Status),
		Error:     record.Error,
		AccountID: record.AccountID,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return errors.ErrPersistence("inserting history record failed").WithCause(err)
	}
	return nil
}

func (s *HistoryStore) List(ctx context.Context) ([]models.RegistrationRecord, error) {
	var rows []historyRow
	if err := s.db.WithContext(ctx).Order("seq DESC").Find(&rows).Error; err != nil {
		return nil, errors.ErrPersistence("listing history records failed").WithCause(err)
	}

	records := make([]models.RegistrationRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, models.RegistrationRecord{
			ID:        row.RecordID,
			Timestamp: row.Timestamp,
			Email:     row.Email,
			Password:  row.Password,
			Status:    constants.RecordStatus(row.Status),
			Error:     row.Error,
			AccountID: row.AccountID,
		})
	}
	return records, nil
}

func (s *HistoryStore) Clear(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("1 = 1").Delete(&historyRow{}).Error; err != nil {
		return errors.ErrPersistence("clearing history failed").WithCause(err)
	}
	return nil
}
