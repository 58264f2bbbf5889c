// Package models defines the domain models.
package models

import (
	"time"

	"github.com/turtacn/kam/pkg/constants"
)

// PollStatus represents the outcome of a single token poll in the OAuth 2.0 Device Flow.
// PollStatus 表示 OAuth 2.0 设备流程中单次令牌轮询的结果。
type PollStatus string

const (
	// PollStatusPending indicates that the user has not yet approved or denied the request.
	// PollStatusPending 表示用户尚未批准或拒绝该请求。
	PollStatusPending PollStatus = "pending"
	// PollStatusSlowDown indicates that the client is polling faster than the provider allows.
	// PollStatusSlowDown 表示客户端轮询速度超过了提供方允许的范围。
	PollStatusSlowDown PollStatus = "slow_down"
	// PollStatusSuccess indicates that the user approved the request and credentials were issued.
	// PollStatusSuccess 表示用户已批准该请求并已颁发凭证。
	PollStatusSuccess PollStatus = "success"
	// PollStatusExpired indicates that the device code expired before approval.
	// PollStatusExpired 表示设备码在批准前已过期。
	PollStatusExpired PollStatus = "expired"
	// PollStatusDenied indicates that the user denied the request.
	// PollStatusDenied 表示用户已拒绝该请求。
	PollStatusDenied PollStatus = "denied"
)

// DeviceAuthInfo holds everything a client needs to complete a Device Authorization Grant.
// It is created by the identity provider and consumed by the polling loop.
// DeviceAuthInfo 保存客户端完成设备授权授予所需的全部信息。
// 它由身份提供方创建，并由轮询循环消费。
type DeviceAuthInfo struct {
	// DeviceCode is the long, secret code that the client uses to poll for the token.
	// DeviceCode 是客户端用于轮询令牌的长密钥。
	DeviceCode string
	// UserCode is the short, user-friendly code the user enters on a secondary device.
	// UserCode 是用户在辅助设备上输入的简短、用户友好的代码。
	UserCode string
	// VerificationURI is the page where the user enters the user code.
	// VerificationURI 是用户输入用户码的页面。
	VerificationURI string
	// VerificationURIComplete embeds the user code so the user can approve in one click.
	// VerificationURIComplete 内嵌了用户码，用户可以一键批准。
	VerificationURIComplete string
	// ClientID identifies the dynamically registered OIDC client.
	// ClientID 标识动态注册的 OIDC 客户端。
	ClientID string
	// ClientSecret authenticates the dynamically registered OIDC client.
	// ClientSecret 用于验证动态注册的 OIDC 客户端。
	ClientSecret string
	// Interval is the minimum number of seconds to wait between polling requests.
	// Interval 是轮询请求之间应等待的最短秒数。
	Interval int
	// ExpiresAt is the timestamp when the device code expires.
	// ExpiresAt 是设备码过期的时间戳。
	ExpiresAt time.Time
	// Region is the provider region hosting the OIDC endpoints.
	// Region 是托管 OIDC 端点的提供方区域。
	Region string
	// StartURL is the identity portal the authorization was requested for.
	// StartURL 是请求授权所针对的身份门户。
	StartURL string
}

// PollInterval returns the interval as a duration, substituting the default
// when the provider omitted it.
func (d *DeviceAuthInfo) PollInterval() time.Duration {
	if d.Interval <= 0 {
		return time.Duration(constants.DefaultPollIntervalSeconds) * time.Second
	}
	return time.Duration(d.Interval) * time.Second
}

// Credentials holds the tokens issued after the user approves the authorization.
// Credentials 保存用户批准授权后颁发的令牌。
type Credentials struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	TokenType    string
	ExpiresIn    int
	// Email is extracted from the ID token claims when present.
	// Email 在存在时从 ID 令牌声明中提取。
	Email string
}

// PollResult is the outcome of a single call to the token endpoint.
// PollResult 是对令牌端点单次调用的结果。
type PollResult struct {
	Status      PollStatus
	Credentials *Credentials
}

// SessionSnapshot is a point-in-time view of the device authorization session.
// SessionSnapshot 是设备授权会话的即时视图。
type SessionSnapshot struct {
	State           constants.SessionState `json:"state"`
	VerificationURI string                 `json:"verification_uri,omitempty"`
	UserCode        string                 `json:"user_code,omitempty"`
	Email           string                 `json:"email,omitempty"`
	Error           string                 `json:"error,omitempty"`
	StartedAt       time.Time              `json:"started_at,omitempty"`
}
