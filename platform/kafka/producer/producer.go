package producer

import (
	"context"

	"github.com/IBM/sarama"

	"github.com/fixmate/field-service/platform/logger"
)

type Logger interface {
	Info(ctx context.Context, msg string, fields ...logger.Field)
	Error(ctx context.Context, msg string, fields ...logger.Field)
}

// producer publishes status events to a single topic, keyed so one
// appointment's events land on one partition.
type producer struct {
	syncProducer sarama.SyncProducer
	topic        string
	logger       Logger
}

func NewProducer(syncProducer sarama.SyncProducer, topic string, log Logger) *producer {
	return &producer{
		syncProducer: syncProducer,
		topic:        topic,
		logger:       log,
	}
}

func (p *producer) Send(ctx context.Context, key, value []byte) error {
	partition, offset, err := p.syncProducer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.ByteEncoder(key),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		p.logger.Error(ctx, "Failed to publish status event",
			logger.String("key", string(key)),
			logger.ErrorF(err),
		)
		return err
	}

	p.logger.Info(ctx, "Status event published",
		logger.String("topic", p.topic),
		logger.Int32("partition", partition),
		logger.Int64("offset", offset),
		logger.String("key", string(key)),
	)

	return nil
}
