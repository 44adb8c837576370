package envconfig

import (
	"github.com/IBM/sarama"
	"github.com/caarlos0/env/v11"
)

type kafkaEnv struct {
	Brokers                      []string `env:"KAFKA_BROKERS,required"`
	StatusChangedTopicName       string   `env:"STATUS_CHANGED_TOPIC_NAME,required"`
	StatusChangedConsumerGroupID string   `env:"STATUS_CHANGED_CONSUMER_GROUP_ID,required"`
	NotifierBufferSize           int      `env:"NOTIFIER_BUFFER_SIZE" envDefault:"256"`
}

type kafka struct {
	raw kafkaEnv
}

func NewKafkaConfig() (*kafka, error) {
	var raw kafkaEnv
	if err := env.Parse(&raw); err != nil {
		return nil, err
	}
	return &kafka{raw: raw}, nil
}

func (cfg *kafka) Brokers() []string                    { return cfg.raw.Brokers }
func (cfg *kafka) StatusChangedTopic() string           { return cfg.raw.StatusChangedTopicName }
func (cfg *kafka) StatusChangedConsumerGroupID() string { return cfg.raw.StatusChangedConsumerGroupID }
func (cfg *kafka) NotifierBufferSize() int              { return cfg.raw.NotifierBufferSize }

func (cfg *kafka) ProducerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Version = sarama.V4_0_0_0
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll

	return config
}

func (cfg *kafka) StatusChangedConsumerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Version = sarama.V4_0_0_0
	config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	config.Consumer.Offsets.Initial = sarama.OffsetOldest

	return config
}
