package service

import (
	"context"

	"github.com/fixmate/field-service/internal/converter"
	"github.com/fixmate/field-service/internal/model"
	"github.com/fixmate/field-service/platform/kafka"
	"github.com/fixmate/field-service/platform/logger"
)

// notifier decouples request handling from event delivery: Notify enqueues
// without blocking and Run drains the queue to the broker. A full queue or a
// broker failure degrades to a request warning.
type notifier struct {
	producer kafka.Producer
	events   chan model.StatusChangedEvent
}

func NewNotifier(producer kafka.Producer, bufferSize int) *notifier {
	return &notifier{
		producer: producer,
		events:   make(chan model.StatusChangedEvent, bufferSize),
	}
}

func (n *notifier) Notify(ctx context.Context, event model.StatusChangedEvent) {
	select {
	case n.events <- event:
	default:
		logger.Warn(ctx, "notification queue full, event dropped",
			logger.String("appointment_id", event.AppointmentID.String()),
			logger.String("new_status", string(event.NewStatus)),
		)
		model.WarningsFrom(ctx).Add("status notification was not queued; delivery is not guaranteed")
	}
}

// Run delivers queued events until ctx is cancelled. Pending events are
// dropped on shutdown; state changes are already durable in the database.
func (n *notifier) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-n.events:
			n.send(ctx, event)
		}
	}
}

func (n *notifier) send(ctx context.Context, event model.StatusChangedEvent) {
	key, value, err := converter.StatusChangedToWire(event)
	if err != nil {
		logger.Error(ctx, "encode status changed event",
			logger.String("event_id", event.EventID.String()),
			logger.ErrorF(err),
		)
		return
	}

	if err := n.producer.Send(ctx, key, value); err != nil {
		logger.Error(ctx, "send status changed event",
			logger.String("event_id", event.EventID.String()),
			logger.String("appointment_id", event.AppointmentID.String()),
			logger.ErrorF(err),
		)
	}
}
