package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/kam/pkg/constants"
	"github.com/turtacn/kam/pkg/errors"
	"github.com/turtacn/kam/pkg/utils"
)

// BatchParams are the validated inputs of a batch registration run.
// BatchParams 是批量注册运行的已验证输入。
type BatchParams struct {
	// Count is the number of accounts to register, within [1, 100].
	// Count 是要注册的账号数量，范围为 [1, 100]。
	Count int `json:"count"`
	// IntervalSeconds is the delay between consecutive items, at least 5.
	// IntervalSeconds 是相邻条目之间的延迟，至少为 5 秒。
	IntervalSeconds int `json:"interval_seconds"`
}

// Validate checks the batch parameters against their allowed ranges.
func (p BatchParams) Validate() error {
	if p.Count < constants.MinBatchCount || p.Count > constants.MaxBatchCount {
		return errors.ErrValidation("count must be between 1 and 100").
			WithMetadata("count", p.Count)
	}
	if p.IntervalSeconds < constants.MinBatchIntervalSeconds {
		return errors.ErrValidation("interval must be at least 5 seconds").
			WithMetadata("interval_seconds", p.IntervalSeconds)
	}
	return nil
}

// Interval returns the inter-item delay as a duration.
func (p BatchParams) Interval() time.Duration {
	return time.Duration(p.IntervalSeconds) * time.Second
}

// ProgressSnapshot is a point-in-time view of a batch registration run.
// Snapshots are immutable once published.
// ProgressSnapshot 是批量注册运行的即时视图。快照一经发布即不可变。
type ProgressSnapshot struct {
	Status  constants.JobStatus        `json:"status"`
	Current int                        `json:"current"`
	Total   int                        `json:"total"`
	Step    constants.RegistrationStep `json:"step"`
	Error   string                     `json:"error,omitempty"`
	Logs    []string                   `json:"logs"`
}

// RegisteredAccount is the output of one successful registration attempt.
// RegisteredAccount 是一次成功注册尝试的输出。
type RegisteredAccount struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	AccountID string `json:"account_id,omitempty"`
}

// RegistrationRecord is one entry in the history ledger.
// RegistrationRecord 是历史台账中的一条记录。
type RegistrationRecord struct {
	ID        string                 `json:"id" gorm:"primaryKey"`
	Timestamp string                 `json:"timestamp"`
	Email     string                 `json:"email"`
	Password  string                 `json:"password"`
	Status    constants.RecordStatus `json:"status"`
	Error     string                 `json:"error,omitempty"`
	AccountID string                 `json:"account_id,omitempty"`
}

// NewSuccessRecord builds a history record for a registered account.
func NewSuccessRecord(account RegisteredAccount, now time.Time) RegistrationRecord {
	return RegistrationRecord{
		ID:        uuid.NewString(),
		Timestamp: now.Format(constants.HistoryTimestampLayout),
		Email:     account.Email,
		Password:  account.Password,
		Status:    constants.RecordStatusSuccess,
		AccountID: account.AccountID,
	}
}

// NewFailureRecord builds a history record for a failed attempt.
// The email is left empty because the attempt never produced a mailbox.
func NewFailureRecord(cause error, now time.Time) RegistrationRecord {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return RegistrationRecord{
		ID:        uuid.NewString(),
		Timestamp: now.Format(constants.HistoryTimestampLayout),
		Status:    constants.RecordStatusFailed,
		Error:     msg,
	}
}

// RegistrationSettings configures how individual accounts are registered.
// RegistrationSettings 配置单个账号的注册方式。
type RegistrationSettings struct {
	// ImapServer is the host:port of the mailbox server polled for verification codes.
	// ImapServer 是用于轮询验证码的邮箱服务器 host:port。
	ImapServer string `json:"imap_server" validate:"required"`
	// EmailDomain is the mailbox domain, written with a leading '@'.
	// EmailDomain 是邮箱域名，以 '@' 开头。
	EmailDomain string `json:"email_domain" validate:"required,emaildomain"`
	// EmailPassword is the shared mailbox password.
	// EmailPassword 是共享邮箱密码。
	EmailPassword string `json:"email_password" validate:"required,min=8"`
	// Proxy configures the optional outbound proxy.
	// Proxy 配置可选的出站代理。
	Proxy ProxySettings `json:"proxy"`
}

// ProxySettings configures an optional outbound HTTP proxy.
// ProxySettings 配置可选的出站 HTTP 代理。
type ProxySettings struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host,omitempty"`
	Port    int    `json:"port,omitempty"`
}

// Validate checks the settings against their declared rules, plus the proxy
// fields when the proxy is enabled.
func (s RegistrationSettings) Validate() error {
	if err := utils.ValidateStruct(s); err != nil {
		return err
	}
	if s.Proxy.Enabled {
		if s.Proxy.Host == "" {
			return errors.ErrValidation("proxy host must not be empty when proxy is enabled")
		}
		if s.Proxy.Port <= 0 || s.Proxy.Port > 65535 {
			return errors.ErrValidation("proxy port must be within 1-65535 when proxy is enabled")
		}
	}
	return nil
}
