// Package constants defines system-wide constants for the KAM registration service.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ================================================================================
// Device Authorization Constants
// ================================================================================

const (
	// DefaultStartURL is the AWS IAM Identity Center portal used for device registration
	DefaultStartURL = "https://view.awsapps.com/start"

	// DefaultRegion is the region hosting the SSO OIDC endpoints
	DefaultRegion = "us-east-1"

	// DefaultPollIntervalSeconds is the fallback polling interval when the
	// authorization response omits one (RFC 8628 section 3.2)
	DefaultPollIntervalSeconds = 5

	// SlowDownIncrementSeconds is added to the polling interval on every
	// slow_down response (RFC 8628 section 3.5)
	SlowDownIncrementSeconds = 5

	// ClientRegistrationType is the client type sent to RegisterClient
	ClientRegistrationType = "public"

	// ClientNamePrefix prefixes the randomly generated OIDC client name
	ClientNamePrefix = "kam"
)

// GrantType represents OAuth 2.0 grant types
type GrantType string

const (
	// GrantTypeDeviceCode is the device authorization grant (RFC 8628)
	GrantTypeDeviceCode GrantType = "urn:ietf:params:oauth:grant-type:device_code"

	// GrantTypeRefreshToken is used for access token refresh
	GrantTypeRefreshToken GrantType = "refresh_token"
)

// ================================================================================
// OAuth 2.0 Error Code Constants
// ================================================================================

// OAuthErrorCode represents the error codes returned by the token endpoint
// while a device authorization is outstanding.
type OAuthErrorCode string

const (
	// OAuthErrAuthorizationPending indicates the user has not yet approved the request
	OAuthErrAuthorizationPending OAuthErrorCode = "authorization_pending"

	// OAuthErrSlowDown indicates the client is polling too fast
	OAuthErrSlowDown OAuthErrorCode = "slow_down"

	// OAuthErrExpiredToken indicates the device code has expired
	OAuthErrExpiredToken OAuthErrorCode = "expired_token"

	// OAuthErrAccessDenied indicates the user rejected the request
	OAuthErrAccessDenied OAuthErrorCode = "access_denied"

	// OAuthErrInvalidGrant indicates the device code is unknown or already used
	OAuthErrInvalidGrant OAuthErrorCode = "invalid_grant"
)

// ================================================================================
// Session State Constants
// ================================================================================

// SessionState represents the lifecycle state of a device authorization session
type SessionState string

const (
	// SessionStateIdle indicates no session has been started
	SessionStateIdle SessionState = "idle"

	// SessionStateRequested indicates the authorization was created but polling has not begun
	SessionStateRequested SessionState = "requested"

	// SessionStatePolling indicates the background poller is running
	SessionStatePolling SessionState = "polling"

	// SessionStateSucceeded indicates credentials were obtained
	SessionStateSucceeded SessionState = "succeeded"

	// SessionStateExpired indicates the device code expired before approval
	SessionStateExpired SessionState = "expired"

	// SessionStateDenied indicates the user rejected the authorization
	SessionStateDenied SessionState = "denied"

	// SessionStateCancelled indicates the session was cancelled locally
	SessionStateCancelled SessionState = "cancelled"

	// SessionStateFailed indicates a transport or provider error ended the session
	SessionStateFailed SessionState = "failed"
)

// ================================================================================
// Batch Registration Constants
// ================================================================================

const (
	// MinBatchCount is the smallest accepted batch size
	MinBatchCount = 1

	// MaxBatchCount is the largest accepted batch size
	MaxBatchCount = 100

	// MinBatchIntervalSeconds is the smallest accepted delay between items
	MinBatchIntervalSeconds = 5
)

// JobStatus represents the state of a batch registration run
type JobStatus string

const (
	// JobStatusIdle indicates no run is active; a stopped run also ends here
	JobStatusIdle JobStatus = "idle"

	// JobStatusRunning indicates a run is in progress
	JobStatusRunning JobStatus = "running"

	// JobStatusCompleted indicates the run finished every item
	JobStatusCompleted JobStatus = "completed"

	// JobStatusError indicates the run aborted on an item failure
	JobStatusError JobStatus = "error"
)

// RegistrationStep identifies the phase an in-flight item is in
type RegistrationStep string

const (
	// StepIdle is reported between runs
	StepIdle RegistrationStep = "idle"

	// StepRegistering covers account creation for the current item
	StepRegistering RegistrationStep = "registering"

	// StepWaiting covers the inter-item delay
	StepWaiting RegistrationStep = "waiting"
)

// ================================================================================
// History Constants
// ================================================================================

// RecordStatus represents the outcome stored on a history record
type RecordStatus string

const (
	// RecordStatusSuccess marks a successfully registered account
	RecordStatusSuccess RecordStatus = "success"

	// RecordStatusFailed marks a failed registration attempt
	RecordStatusFailed RecordStatus = "failed"
)

// HistoryTimestampLayout is the display format for history record timestamps
const HistoryTimestampLayout = "2006/01/02 15:04:05"

// ================================================================================
// Event Name Constants
// ================================================================================

const (
	// EventLoginSuccess is emitted when a device authorization yields credentials
	EventLoginSuccess = "login-success"

	// EventRegistrationComplete is emitted when a batch run reaches a terminal state
	EventRegistrationComplete = "complete"
)

// ================================================================================
// Audit Event Type Constants
// ================================================================================

// AuditEventType represents different types of auditable events
type AuditEventType string

const (
	// EventTypeDeviceAuthStart represents the creation of a device authorization
	EventTypeDeviceAuthStart AuditEventType = "device_auth_start"

	// EventTypeDeviceAuthResult represents the terminal outcome of a device authorization
	EventTypeDeviceAuthResult AuditEventType = "device_auth_result"

	// EventTypeBatchStart represents the start of a batch registration run
	EventTypeBatchStart AuditEventType = "batch_start"

	// EventTypeBatchFinish represents the end of a batch registration run
	EventTypeBatchFinish AuditEventType = "batch_finish"

	// EventTypeHistoryClear represents a history wipe
	EventTypeHistoryClear AuditEventType = "history_clear"

	// EventTypeHistoryExport represents a history export
	EventTypeHistoryExport AuditEventType = "history_export"
)

// AuditEventResult represents the result of an audited event
type AuditEventResult string

const (
	// AuditResultSuccess indicates the event completed successfully
	AuditResultSuccess AuditEventResult = "success"

	// AuditResultFailure indicates the event failed
	AuditResultFailure AuditEventResult = "failure"
)

// ================================================================================
// Cache Key Constants
// ================================================================================

const (
	// CacheKeyAuthURL stores the verification URI of the active session
	CacheKeyAuthURL = "authurl:current"

	// AuthURLCacheTTL bounds how long a stale verification URI survives.
	// Device codes expire server-side in at most 10 minutes.
	AuthURLCacheTTL = 15 * time.Minute
)

// ================================================================================
// Vault Path Constants
// ================================================================================

const (
	// VaultSecretPrefix marks config values that must be resolved from Vault
	VaultSecretPrefix = "vault:"

	// VaultMountPath is the KV v2 mount holding KAM secrets
	VaultMountPath = "secret"
)

// ================================================================================
// Service Configuration Constants
// ================================================================================

const (
	// DefaultServicePort is the default HTTP service port
	DefaultServicePort = 8080

	// DefaultRequestTimeout is the default outbound request timeout
	DefaultRequestTimeout = 15 * time.Second

	// DefaultShutdownTimeout is the graceful shutdown timeout
	DefaultShutdownTimeout = 30 * time.Second

	// DefaultRegistrarTimeout bounds a single account registration attempt
	DefaultRegistrarTimeout = 5 * time.Minute
)

// ================================================================================
// Logging Constants
// ================================================================================

// LogLevel represents the severity level of log messages
type LogLevel string

const (
	// LogLevelDebug is the most verbose logging level
	LogLevelDebug LogLevel = "debug"

	// LogLevelInfo is the standard informational logging level
	LogLevelInfo LogLevel = "info"

	// LogLevelWarn indicates potential issues
	LogLevelWarn LogLevel = "warn"

	// LogLevelError indicates errors that need attention
	LogLevelError LogLevel = "error"
)

// ================================================================================
// Context Keys
// ================================================================================

// ContextKey represents keys used in context.Context
type ContextKey string

const (
	// ContextKeyRequestID is the key for request ID in context
	ContextKeyRequestID ContextKey = "request_id"

	// ContextKeyTraceID is the key for distributed trace ID in context
	ContextKeyTraceID ContextKey = "trace_id"

	// ContextKeyLogger is the key for a request-scoped logger in context
	ContextKeyLogger ContextKey = "logger"
)
