package service

import (
	"context"
	"encoding/json"

	"exploresync-be/internal/model"
	"exploresync-be/internal/pkg/logger"
	"exploresync-be/internal/repository"
	"exploresync-be/pkg/events"
	pktNats "exploresync-be/pkg/nats"
)

// AuditService turns domain events from the NATS bus into durable
// system_logs rows, giving the session layer an audit trail without
// blocking any hub handler.
type AuditService struct {
	repo       repository.SystemLogRepository
	subscriber *pktNats.Subscriber
	logger     logger.ILogger
}

func NewAuditService(repo repository.SystemLogRepository, sub *pktNats.Subscriber, log logger.ILogger) *AuditService {
	return &AuditService{
		repo:       repo,
		subscriber: sub,
		logger:     log,
	}
}

// Start begins listening to the event bus with a durable consumer.
func (s *AuditService) Start() {
	err := s.subscriber.Subscribe("events.>", "audit-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("AuditService", "Failed to start audit subscriber", map[string]interface{}{"error": err.Error()})
		return
	}
	s.logger.Info("AuditService", "Audit service started, listening to events.>", nil)
}

func (s *AuditService) handleEvent(ctx context.Context, event events.Event) error {
	module := "session"
	var details *string
	if data, err := json.Marshal(event.Payload()); err == nil {
		d := string(data)
		details = &d
	}

	entry := &model.SystemLog{
		Level:   "INFO",
		Module:  &module,
		Message: event.EventType(),
		Details: details,
	}
	return s.repo.Create(ctx, entry)
}
