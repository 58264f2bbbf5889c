package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/kam/pkg/constants"
)

// AuditEvent represents a single audit trail entry.
type AuditEvent struct {
	EventID   uuid.UUID
	EventType constants.AuditEventType
	Result    constants.AuditEventResult
	Message   string
	TraceID   string
	Metadata  json.RawMessage // event-specific payload
	Timestamp time.Time
}

// NewAuditEvent creates a new audit event with a fresh id and timestamp.
func NewAuditEvent(eventType constants.AuditEventType, result constants.AuditEventResult, message string) *AuditEvent {
	return &AuditEvent{
		EventID:   uuid.New(),
		EventType: eventType,
		Result:    result,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// WithTrace sets the trace id for correlation with request logs.
func (a *AuditEvent) WithTrace(traceID string) *AuditEvent {
	a.TraceID = traceID
	return a
}

// WithMetadata attaches a JSON payload to the event. Marshal failures are
// ignored and leave the metadata empty.
func (a *AuditEvent) WithMetadata(v interface{}) *AuditEvent {
	if data, err := json.Marshal(v); err == nil {
		a.Metadata = data
	}
	return a
}
