package eventbus

import (
	"context"
	"errors"
	"time"

	"github.com/IBM/sarama"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
)

const (
	// DefaultTopic is the topic written events are published to.
	DefaultTopic = "entity.written"

	logMsgPublished     = "event published"
	logMsgPublishFailed = "publishing event failed"

	logAttrEventName = "event_name"
	logAttrTopic     = "topic"
	logAttrPartition = "partition"
	logAttrOffset    = "offset"
	logAttrError     = "error"
)

// ErrNilProducer is returned when a publisher is created without a producer.
var ErrNilProducer = errors.New("nil kafka producer supplied")

// Publisher publishes written and deleted events to a Kafka topic, keyed by entity name.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   entity.Logger
	now      func() time.Time
}

// PublisherOption defines a functional option for configuring a Publisher.
type PublisherOption func(*Publisher) error

// WithTopic sets the topic events are published to.
func WithTopic(topic string) PublisherOption {
	return func(p *Publisher) error {
		if topic == "" {
			return errors.New("empty topic supplied")
		}

		p.topic = topic

		return nil
	}
}

// WithPublisherLogger sets the logger of the publisher.
func WithPublisherLogger(logger entity.Logger) PublisherOption {
	return func(p *Publisher) error {
		p.logger = logger
		return nil
	}
}

// NewProducerConfig returns the sarama config publishers need: synchronous, acknowledged by all
// in-sync replicas.
func NewProducerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll

	return config
}

// NewPublisher creates a Publisher.
func NewPublisher(producer sarama.SyncProducer, options ...PublisherOption) (*Publisher, error) {
	if producer == nil {
		return nil, ErrNilProducer
	}

	p := &Publisher{producer: producer, topic: DefaultTopic, now: time.Now}

	for _, option := range options {
		if err := option(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Publish sends the event synchronously.
func (p *Publisher) Publish(_ context.Context, event *entity.WrittenEvent) error {
	value, err := encodeMessage(MessageFromEvent(event, p.now()))
	if err != nil {
		return err
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(event.EntityName()),
		Value:     sarama.ByteEncoder(value),
		Timestamp: p.now(),
	})
	if err != nil {
		if p.logger != nil {
			p.logger.Error(logMsgPublishFailed, logAttrEventName, event.Name(), logAttrTopic, p.topic, logAttrError, err.Error())
		}

		return errors.Join(err, errors.New("event "+event.Name()))
	}

	if p.logger != nil {
		p.logger.Debug(logMsgPublished, logAttrEventName, event.Name(), logAttrTopic, p.topic, logAttrPartition, partition, logAttrOffset, offset)
	}

	return nil
}

// Listener returns an entity.Listener which publishes every written and deleted event.
// Subscribe it with SubscribeAll, other events are ignored.
func (p *Publisher) Listener() entity.Listener {
	return func(ctx context.Context, event entity.NestedEvent) error {
		written, ok := event.(*entity.WrittenEvent)
		if !ok {
			return nil
		}

		return p.Publish(ctx, written)
	}
}

// Close closes the producer.
func (p *Publisher) Close() error {
	return p.producer.Close()
}
