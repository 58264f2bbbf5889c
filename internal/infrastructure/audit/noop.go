package audit

import (
	"context"

	"github.com/turtacn/kam/internal/domain/models"
	"github.com/turtacn/kam/internal/domain/service"
)

type noopAuditService struct{}

// NewNoopAuditService returns an AuditService that discards every event,
// used when Kafka is disabled.
func NewNoopAuditService() service.AuditService {
	return noopAuditService{}
}

func (noopAuditService) Record(context.Context, *models.AuditEvent) error { return nil }
