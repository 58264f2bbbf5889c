package repository

import (
	"context"

	"github.com/turtacn/kam/internal/domain/models"
)

//go:generate mockery --name AccountRepository --output mocks --outpkg mocks
// AccountRepository persists successfully registered accounts so their
// credentials survive beyond the history ledger.
// AccountRepository 持久化注册成功的账号，使其凭证在历史台账之外也得以保留。
type AccountRepository interface {
	// Save appends an account to the store.
	// Save 将账号追加到存储中。
	Save(ctx context.Context, account models.RegisteredAccount) error

	// List returns all stored accounts in insertion order.
	// List 按插入顺序返回所有已存储的账号。
	List(ctx context.Context) ([]models.RegisteredAccount, error)
}
