package eventbus

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
)

const deletedSuffix = ".deleted"

// ErrInvalidMessage is returned when a consumed message cannot be decoded into an event.
var ErrInvalidMessage = errors.New("invalid event message")

// Message is the wire format of a written or deleted event.
type Message struct {
	Name        string              `json:"name"`
	Entity      string              `json:"entity"`
	PrimaryKeys []entity.PrimaryKeyValues `json:"primaryKeys"`
	ShopID      uuid.UUID           `json:"shopId"`
	LanguageID  uuid.UUID           `json:"languageId"`
	Errors      []string            `json:"errors,omitempty"`
	OccurredAt  time.Time           `json:"occurredAt"`
}

// MessageFromEvent builds the message of a written or deleted event.
func MessageFromEvent(event *entity.WrittenEvent, occurredAt time.Time) Message {
	message := Message{
		Name:        event.Name(),
		Entity:      event.EntityName(),
		PrimaryKeys: event.PrimaryKeys(),
		ShopID:      event.Context().ShopID,
		LanguageID:  event.Context().LanguageID,
		OccurredAt:  occurredAt,
	}

	for _, err := range event.Errors() {
		message.Errors = append(message.Errors, err.Error())
	}

	return message
}

// Event turns the message back into a written or deleted event without nested events.
func (m Message) Event() *entity.WrittenEvent {
	shopContext := entity.DefaultShopContext()

	if m.ShopID != uuid.Nil {
		shopContext.ShopID = m.ShopID
	}

	if m.LanguageID != uuid.Nil {
		shopContext.LanguageID = m.LanguageID
	}

	errs := make([]error, 0, len(m.Errors))
	for _, msg := range m.Errors {
		errs = append(errs, errors.New(msg))
	}

	if m.Deleted() {
		return entity.NewDeletedEvent(m.Entity, m.PrimaryKeys, shopContext, errs...)
	}

	return entity.NewWrittenEvent(m.Entity, m.PrimaryKeys, shopContext, errs...)
}

// Deleted reports whether the message carries a deleted event.
func (m Message) Deleted() bool {
	return strings.HasSuffix(m.Name, deletedSuffix)
}

func encodeMessage(message Message) ([]byte, error) {
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(message)
}

func decodeMessage(data []byte) (Message, error) {
	var message Message
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &message); err != nil {
		return Message{}, errors.Join(ErrInvalidMessage, err)
	}

	if message.Entity == "" || message.Name == "" {
		return Message{}, errors.Join(ErrInvalidMessage, fmt.Errorf("missing entity or name in %q", string(data)))
	}

	return message, nil
}
