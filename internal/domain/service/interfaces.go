// Package service defines the domain service interfaces.
package service

import (
	"context"

	"github.com/turtacn/kam/internal/domain/models"
)

//go:generate mockery --name IdentityProvider --output mocks --outpkg mocks
// IdentityProvider abstracts the OAuth 2.0 Device Authorization Grant endpoints
// of the upstream identity service.
// IdentityProvider 抽象了上游身份服务的 OAuth 2.0 设备授权端点。
type IdentityProvider interface {
	// RequestDeviceAuthorization registers a client and starts a device
	// authorization for the given portal, returning the codes to present
	// to the user.
	// RequestDeviceAuthorization 注册客户端并为给定门户发起设备授权，
	// 返回需要呈现给用户的代码。
	RequestDeviceAuthorization(ctx context.Context, startURL, region string) (*models.DeviceAuthInfo, error)

	// PollToken performs one call to the token endpoint for the pending
	// authorization. Transport failures are returned as errors; provider
	// verdicts are reported through the result status.
	// PollToken 对待处理授权执行一次令牌端点调用。传输失败以错误返回；
	// 提供方的判定通过结果状态报告。
	PollToken(ctx context.Context, info *models.DeviceAuthInfo) (*models.PollResult, error)
}

//go:generate mockery --name AccountRegistrar --output mocks --outpkg mocks
// AccountRegistrar performs one account registration attempt end to end.
// AccountRegistrar 端到端地执行一次账号注册尝试。
type AccountRegistrar interface {
	// Register creates one account using the stored settings and returns
	// its credentials. Implementations honour ctx cancellation between
	// internal steps but never abandon side effects already made.
	// Register 使用已存储的设置创建一个账号并返回其凭证。实现在内部步骤之间
	// 响应 ctx 取消，但不会放弃已产生的副作用。
	Register(ctx context.Context, settings models.RegistrationSettings) (*models.RegisteredAccount, error)
}

//go:generate mockery --name AuthURLStore --output mocks --outpkg mocks
// AuthURLStore keeps the verification URI of the active device authorization
// so secondary surfaces can display it.
// AuthURLStore 保存当前设备授权的验证 URI，供其它界面展示。
type AuthURLStore interface {
	// SetCurrent replaces the stored verification URI.
	SetCurrent(ctx context.Context, uri string) error

	// Current returns the stored URI, or empty when none is active.
	Current(ctx context.Context) (string, error)

	// Clear removes the stored URI.
	Clear(ctx context.Context) error
}

//go:generate mockery --name ProgressSink --output mocks --outpkg mocks
// ProgressSink receives progress snapshots from the batch orchestrator.
// Publish must never block the caller.
// ProgressSink 接收批量编排器的进度快照。Publish 绝不能阻塞调用方。
type ProgressSink interface {
	Publish(snapshot models.ProgressSnapshot)
}

//go:generate mockery --name EventSink --output mocks --outpkg mocks
// EventSink delivers fire-and-forget notification events to the frontend
// surfaces. Emit must never block and delivery is best effort.
// EventSink 向前端界面投递即发即弃的通知事件。Emit 绝不能阻塞，投递为尽力而为。
type EventSink interface {
	Emit(name string, payload interface{})
}

//go:generate mockery --name AuditService --output mocks --outpkg mocks
// AuditService records audit events asynchronously.
// AuditService 异步记录审计事件。
type AuditService interface {
	Record(ctx context.Context, event *models.AuditEvent) error
}

// MetricsRecorder counts domain-level outcomes for observability.
type MetricsRecorder interface {
	// RecordAuthOutcome counts a terminal device authorization state.
	RecordAuthOutcome(state string)

	// RecordPoll counts one token poll with its status.
	RecordPoll(status models.PollStatus)

	// RecordRegistration counts one registration attempt outcome.
	RecordRegistration(success bool)

	// ObserveRegistrationDuration records how long one attempt took, in seconds.
	ObserveRegistrationDuration(seconds float64)

	// SetJobActive flags whether a batch registration run is in progress.
	SetJobActive(active bool)
}
