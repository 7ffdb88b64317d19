package commerce

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
	"github.com/AntonStoeckl/dynamic-entities-go/entity/write"
)

// CoreSubscribesEntity names the table of event subscriptions registered by plugins.
const CoreSubscribesEntity = "s_core_subscribes"

// CoreSubscribesWritten is the name of the event fired after subscriptions were written.
var CoreSubscribesWritten = entity.WrittenEventNameFor(CoreSubscribesEntity)

// ErrNilCommandWriter is returned when CoreSubscribes is created without a writer.
var ErrNilCommandWriter = errors.New("nil command writer supplied")

// CommandWriter executes write commands, it is implemented by *dbal.Store.
type CommandWriter interface {
	Write(ctx context.Context, commands []write.Command) (map[string][]entity.PrimaryKeyValues, error)
}

// NewCoreSubscribesResource declares the writable columns of s_core_subscribes. The table has
// no definition, its integer id is assigned by the database.
func NewCoreSubscribesResource() (*write.Resource, error) {
	return write.NewResource(CoreSubscribesEntity, CoreSubscribesEntity, []write.Field{
		write.NewField("id", "id", write.KindInt, entity.PrimaryKey),
		write.NewField("subscribe", "subscribe", write.KindString, entity.Required).WithRules("max=255"),
		write.NewField("type", "type", write.KindInt, entity.Required),
		write.NewField("listener", "listener", write.KindString, entity.Required).WithRules("max=255"),
		write.NewField("pluginID", "pluginID", write.KindInt),
		write.NewField("position", "position", write.KindInt, entity.Required),
	}, nil)
}

// CoreSubscribes writes event subscriptions and fires their written event.
type CoreSubscribes struct {
	resource   *write.Resource
	writer     CommandWriter
	dispatcher entity.EventDispatcher
}

// NewCoreSubscribes creates CoreSubscribes. dispatcher may be nil.
func NewCoreSubscribes(writer CommandWriter, dispatcher entity.EventDispatcher) (*CoreSubscribes, error) {
	if writer == nil {
		return nil, ErrNilCommandWriter
	}

	resource, err := NewCoreSubscribesResource()
	if err != nil {
		return nil, err
	}

	return &CoreSubscribes{resource: resource, writer: writer, dispatcher: dispatcher}, nil
}

// Resource returns the write resource of s_core_subscribes.
func (c *CoreSubscribes) Resource() *write.Resource {
	return c.resource
}

// Write writes the subscriptions with the given mode. New subscriptions have no id in their
// primary key, the database assigns it.
func (c *CoreSubscribes) Write(ctx context.Context, mode write.Mode, payloads ...entity.Row) (*entity.WrittenEvent, error) {
	shopContext := entity.ShopContextFrom(ctx)

	commands, err := c.resource.ExtractAll(payloads, mode, shopContext)
	if err != nil {
		return nil, err
	}

	updates, err := c.writer.Write(ctx, commands)
	if err != nil {
		return nil, err
	}

	event := c.resource.CreateWrittenEvent(updates, shopContext).WithPayloads(payloads)

	if c.dispatcher != nil {
		if err = c.dispatcher.Dispatch(ctx, event); err != nil {
			return event, err
		}
	}

	return event, nil
}
