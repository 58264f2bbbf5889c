// Package repository defines the persistence interfaces of the domain layer.
package repository

import (
	"context"

	"github.com/turtacn/kam/internal/domain/models"
)

//go:generate mockery --name HistoryRepository --output mocks --outpkg mocks
// HistoryRepository stores the registration history ledger.
// Records are ordered newest first and survive process restarts.
// HistoryRepository 存储注册历史台账。记录按最新在前排序，并在进程重启后保留。
type HistoryRepository interface {
	// Append inserts a record at the front of the ledger.
	// Append 将一条记录插入台账最前面。
	Append(ctx context.Context, record models.RegistrationRecord) error

	// List returns all records, newest first.
	// List 返回全部记录，最新在前。
	List(ctx context.Context) ([]models.RegistrationRecord, error)

	// Clear removes every record. Clearing an empty ledger is not an error.
	// Clear 删除所有记录。清空空台账不是错误。
	Clear(ctx context.Context) error
}
