package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/turtacn/kam/internal/domain/models"
	"github.com/turtacn/kam/internal/domain/repository"
	domainservice "github.com/turtacn/kam/internal/domain/service"
	"github.com/turtacn/kam/pkg/constants"
	"github.com/turtacn/kam/pkg/errors"
	"github.com/turtacn/kam/pkg/logger"
)

//go:generate mockery --name HistoryService --output ./mocks --filename mock_history_service.go --structname MockHistoryService
// HistoryService exposes the registration history ledger: listing, clearing
// and exporting to a file. Export reads the ledger and never mutates it.
// HistoryService 暴露注册历史台账：查询、清空和导出到文件。
// 导出只读取台账，绝不修改它。
type HistoryService interface {
	// List returns every record, newest first.
	// List 返回所有记录，最新在前。
	List(ctx context.Context) ([]models.RegistrationRecord, error)

	// Clear removes every record. Clearing an empty ledger succeeds.
	// Clear 删除所有记录。清空空台账也会成功。
	Clear(ctx context.Context) error

	// Export writes the full ledger to the given path. CSV when the path
	// ends in .csv, JSON otherwise.
	// Export 将完整台账写入给定路径。路径以 .csv 结尾时写 CSV，否则写 JSON。
	Export(ctx context.Context, path string) error
}

// historyServiceImpl is the concrete implementation of HistoryService.
// historyServiceImpl 是 HistoryService 接口的具体实现。
type historyServiceImpl struct {
	history repository.HistoryRepository
	audit   domainservice.AuditService
	log     logger.Logger
}

// NewHistoryService creates a new instance of HistoryService.
// NewHistoryService 创建一个新的 HistoryService 实例。
func NewHistoryService(history repository.HistoryRepository, audit domainservice.AuditService, log logger.Logger) HistoryService {
	return &historyServiceImpl{history: history, audit: audit, log: log}
}

func (s *historyServiceImpl) List(ctx context.Context) ([]models.RegistrationRecord, error) {
	return s.history.List(ctx)
}

func (s *historyServiceImpl) Clear(ctx context.Context) error {
	if err := s.history.Clear(ctx); err != nil {
		return err
	}
	_ = s.audit.Record(ctx, models.NewAuditEvent(
		constants.EventTypeHistoryClear, constants.AuditResultSuccess, "history ledger cleared"))
	s.log.Info(ctx, "history ledger cleared")
	return nil
}

// Export snapshots the ledger and writes it to path through a temp file in
// the same directory, so a failed export never leaves a partial file behind.
func (s *historyServiceImpl) Export(ctx context.Context, path string) error {
	if path == "" {
		return errors.ErrValidation("export path must not be empty")
	}

	records, err := s.history.List(ctx)
	if err != nil {
		return errors.ErrExport(path, err)
	}

	var data []byte
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		data, err = encodeCSV(records)
	} else {
		data, err = json.MarshalIndent(records, "", "  ")
	}
	if err != nil {
		return errors.ErrExport(path, err)
	}

	if err := writeFileAtomic(path, data); err != nil {
		return errors.ErrExport(path, err)
	}

	_ = s.audit.Record(ctx, models.NewAuditEvent(
		constants.EventTypeHistoryExport, constants.AuditResultSuccess, "history ledger exported").
		WithMetadata(map[string]interface{}{"path": path, "records": len(records)}))
	s.log.Info(ctx, "history ledger exported", logger.Fields{
		"path":    path,
		"records": len(records),
	})
	return nil
}

func encodeCSV(records []models.RegistrationRecord) ([]byte, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write([]string{"id", "timestamp", "email", "password", "status", "error", "account_id"}); err != nil {
		return nil, err
	}
	for _, r := range records {
		row := []string{r.ID, r.Timestamp, r.Email, r.Password, string(r.Status), r.Error, r.AccountID}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
