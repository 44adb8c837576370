package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixmate/field-service/internal/converter"
	"github.com/fixmate/field-service/internal/model"
)

type capturingProducer struct {
	sent chan struct{ key, value []byte }
}

func newCapturingProducer() *capturingProducer {
	return &capturingProducer{sent: make(chan struct{ key, value []byte }, 16)}
}

func (p *capturingProducer) Send(_ context.Context, key, value []byte) error {
	p.sent <- struct{ key, value []byte }{key, value}
	return nil
}

func TestNotifierDeliversQueuedEvents(t *testing.T) {
	t.Parallel()

	producer := newCapturingProducer()
	n := NewNotifier(producer, 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- n.Run(ctx) }()

	event := model.StatusChangedEvent{
		EventID:       uuid.New(),
		AppointmentID: uuid.New(),
		UserID:        uuid.New(),
		NewStatus:     model.AppointmentConfirmed,
		OccurredAt:    time.Now().UTC(),
	}
	n.Notify(ctx, event)

	select {
	case msg := <-producer.sent:
		assert.Equal(t, []byte(event.AppointmentID.String()), msg.key)

		p, err := converter.StatusChangedFromWire(msg.value)
		require.NoError(t, err)
		assert.Equal(t, event.EventID.String(), p.EventID)
		assert.Equal(t, string(model.AppointmentConfirmed), p.NewStatus)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestNotifierOverflowBecomesWarning(t *testing.T) {
	t.Parallel()

	// No Run worker draining, so the second event cannot be queued.
	n := NewNotifier(newCapturingProducer(), 1)

	ctx, warnings := model.WithWarnings(context.Background())

	n.Notify(ctx, model.StatusChangedEvent{EventID: uuid.New(), AppointmentID: uuid.New()})
	n.Notify(ctx, model.StatusChangedEvent{EventID: uuid.New(), AppointmentID: uuid.New()})

	require.Len(t, warnings.Items(), 1)
	assert.Contains(t, warnings.Items()[0], "not queued")
}

func TestNotifierWithoutWarningsBag(t *testing.T) {
	t.Parallel()

	n := NewNotifier(newCapturingProducer(), 1)

	// A context without a bag must not panic on overflow.
	n.Notify(context.Background(), model.StatusChangedEvent{EventID: uuid.New()})
	n.Notify(context.Background(), model.StatusChangedEvent{EventID: uuid.New()})
}
