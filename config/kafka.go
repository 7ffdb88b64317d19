package config

import (
	"github.com/IBM/sarama"

	"github.com/AntonStoeckl/dynamic-entities-go/entity/eventbus"
)

// SaramaConfig returns the producer config of the event bus with the configured client id.
// Consumers start at the oldest offset when their group has none committed yet.
func (c KafkaConfig) SaramaConfig() *sarama.Config {
	config := eventbus.NewProducerConfig()
	config.ClientID = c.ClientID
	config.Consumer.Offsets.Initial = sarama.OffsetOldest
	config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}

	return config
}

// NewSyncProducer connects a synchronous producer to the configured brokers.
func (c KafkaConfig) NewSyncProducer() (sarama.SyncProducer, error) {
	return sarama.NewSyncProducer(c.Brokers, c.SaramaConfig())
}

// NewConsumerGroup connects a consumer group to the configured brokers.
func (c KafkaConfig) NewConsumerGroup() (sarama.ConsumerGroup, error) {
	return sarama.NewConsumerGroup(c.Brokers, c.GroupID, c.SaramaConfig())
}

// NewPublisher creates an event bus publisher writing to the configured topic.
func (c KafkaConfig) NewPublisher(producer sarama.SyncProducer, options ...eventbus.PublisherOption) (*eventbus.Publisher, error) {
	options = append([]eventbus.PublisherOption{eventbus.WithTopic(c.Topic)}, options...)

	return eventbus.NewPublisher(producer, options...)
}
