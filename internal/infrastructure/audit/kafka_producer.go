// Package audit implements the AuditService interface.
package audit

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/kam/internal/config"
	"github.com/turtacn/kam/internal/domain/models"
	"github.com/turtacn/kam/internal/domain/service"
	"github.com/turtacn/kam/pkg/logger"
)

// KafkaProducer publishes audit events to a Kafka topic.
type KafkaProducer struct {
	writer *kafka.Writer
	logger logger.Logger
}

// NewKafkaProducer creates a producer writing to the configured topic.
func NewKafkaProducer(cfg config.KafkaConfig, log logger.Logger) service.AuditService {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &KafkaProducer{
		writer: writer,
		logger: log.WithFields(logger.Fields{"component": "kafka_audit"}),
	}
}

// Record sends one audit event. Failures are logged and returned; callers
// treat auditing as best effort.
func (p *KafkaProducer) Record(ctx context.Context, event *models.AuditEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error(ctx, "failed to marshal audit event", err)
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.EventType),
		Value: payload,
	})
	if err != nil {
		p.logger.Error(ctx, "failed to write audit event to kafka", err)
	}
	return err
}

// Close closes the underlying Kafka writer.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
