package eventbus

import (
	"context"
	"errors"

	"github.com/IBM/sarama"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
)

const (
	logMsgConsumed       = "event consumed"
	logMsgDecodeFailed   = "decoding event message failed"
	logMsgDispatchFailed = "dispatching consumed event failed"
	logAttrEntity        = "entity"
	logAttrMessageTopic  = "message_topic"
)

// ErrNilDispatcher is returned when a consumer is created without a dispatcher.
var ErrNilDispatcher = errors.New("nil event dispatcher supplied")

// Consumer is a sarama.ConsumerGroupHandler which dispatches consumed events.
// Undecodable messages and listener failures are logged and the message is marked anyway.
type Consumer struct {
	dispatcher entity.EventDispatcher
	logger     entity.Logger
}

var _ sarama.ConsumerGroupHandler = (*Consumer)(nil)

// NewConsumer creates a Consumer. logger may be nil.
func NewConsumer(dispatcher entity.EventDispatcher, logger entity.Logger) (*Consumer, error) {
	if dispatcher == nil {
		return nil, ErrNilDispatcher
	}

	return &Consumer{dispatcher: dispatcher, logger: logger}, nil
}

// Setup implements sarama.ConsumerGroupHandler.
func (c *Consumer) Setup(sarama.ConsumerGroupSession) error { return nil }

// Cleanup implements sarama.ConsumerGroupHandler.
func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim implements sarama.ConsumerGroupHandler.
func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}

			c.handle(session.Context(), msg)
			session.MarkMessage(msg, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg *sarama.ConsumerMessage) {
	message, err := decodeMessage(msg.Value)
	if err != nil {
		c.logError(logMsgDecodeFailed, err, logAttrMessageTopic, msg.Topic, logAttrPartition, msg.Partition, logAttrOffset, msg.Offset)
		return
	}

	event := message.Event()

	if err = c.dispatcher.Dispatch(ctx, event); err != nil {
		c.logError(logMsgDispatchFailed, err, logAttrEventName, event.Name())
		return
	}

	if c.logger != nil {
		c.logger.Debug(logMsgConsumed, logAttrEventName, event.Name(), logAttrEntity, event.EntityName(), logAttrOffset, msg.Offset)
	}
}

func (c *Consumer) logError(message string, err error, args ...any) {
	if c.logger == nil {
		return
	}

	c.logger.Error(message, append([]any{logAttrError, err.Error()}, args...)...)
}

// Run consumes topics with group until ctx is done, rejoining after every rebalance.
func Run(ctx context.Context, group sarama.ConsumerGroup, topics []string, consumer *Consumer) error {
	for {
		if err := group.Consume(ctx, topics, consumer); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}

			return err
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}
