package scconsumer

import (
	"context"
	"fmt"

	wire "github.com/fixmate/field-service/internal/converter"
	"github.com/fixmate/field-service/platform/kafka"
	"github.com/fixmate/field-service/platform/logger"
)

type StatusChangedNotifier interface {
	NotifyStatusChanged(ctx context.Context, event *wire.StatusChangedPayload) error
}

type statusChangedConsumer struct {
	consumer kafka.Consumer
	svc      StatusChangedNotifier
}

func NewStatusChangedConsumer(consumer kafka.Consumer, svc StatusChangedNotifier) *statusChangedConsumer {
	return &statusChangedConsumer{
		consumer: consumer,
		svc:      svc,
	}
}

func (s *statusChangedConsumer) RunStatusChangedConsume(ctx context.Context) error {
	logger.Info(ctx, "Starting status changed consumer")

	if err := s.consumer.Consume(ctx, s.statusChangedHandler); err != nil {
		logger.Error(ctx, "Consume from status changed topic error", logger.ErrorF(err))
		return err
	}

	return nil
}

func (s *statusChangedConsumer) statusChangedHandler(ctx context.Context, msg kafka.Message) error {
	event, err := wire.StatusChangedFromWire(msg.Value)
	if err != nil {
		logger.Error(ctx, "Failed to decode status changed event", logger.ErrorF(err))
		return fmt.Errorf("converter status_changed_from_wire error: %w", err)
	}

	if err := s.svc.NotifyStatusChanged(ctx, event); err != nil {
		logger.Error(ctx, "Failed to notify about status change", logger.ErrorF(err))
		return err
	}

	return nil
}
