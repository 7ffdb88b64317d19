package eventbus_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
	"github.com/AntonStoeckl/dynamic-entities-go/entity/eventbus"
	"github.com/AntonStoeckl/dynamic-entities-go/testutil/observability/testdoubles"
)

var (
	taxID     = uuid.MustParse("0198a1c4-0000-7000-8000-0000000000aa")
	productID = uuid.MustParse("0198a1c4-0000-7000-8000-000000000001")
)

func expectMessage(t *testing.T, producer *mocks.SyncProducer, name, entityName string) {
	t.Helper()

	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(value []byte) error {
		var message eventbus.Message
		if err := jsoniter.Unmarshal(value, &message); err != nil {
			return err
		}

		if message.Name != name || message.Entity != entityName {
			return errors.New("unexpected message " + string(value))
		}

		return nil
	})
}

func Test_NewPublisher_Errors(t *testing.T) {
	_, err := eventbus.NewPublisher(nil)
	assert.ErrorIs(t, err, eventbus.ErrNilProducer)

	producer := mocks.NewSyncProducer(t, eventbus.NewProducerConfig())
	_, err = eventbus.NewPublisher(producer, eventbus.WithTopic(""))
	assert.Error(t, err)
}

func Test_Publisher_PublishesWrittenEventsFromDispatcher(t *testing.T) {
	producer := mocks.NewSyncProducer(t, eventbus.NewProducerConfig())
	expectMessage(t, producer, "tax.written", "tax")
	expectMessage(t, producer, "product.written", "product")
	expectMessage(t, producer, "tax.deleted", "tax")

	logHandler := testdoubles.NewLogHandlerSpy(false)
	publisher, err := eventbus.NewPublisher(producer, eventbus.WithTopic("shop.entities"), eventbus.WithPublisherLogger(slog.New(logHandler)))
	require.NoError(t, err)

	dispatcher := entity.NewDispatcher()
	dispatcher.SubscribeAll(publisher.Listener())

	written := entity.NewWrittenEvent("tax", []entity.PrimaryKeyValues{{"id": taxID}}, entity.DefaultShopContext())
	written.AddEvent(entity.NewWrittenEvent("product", []entity.PrimaryKeyValues{{"id": productID}}, entity.DefaultShopContext()))

	require.NoError(t, dispatcher.Dispatch(context.Background(), written))
	require.NoError(t, dispatcher.Dispatch(context.Background(), entity.NewDeletedEvent("tax", []entity.PrimaryKeyValues{{"id": taxID}}, entity.DefaultShopContext())))

	loaded := entity.NewIDSearchResultLoadedEvent("tax.id.search.result.loaded", entity.NewIDSearchResult(nil, nil, 0, nil, entity.DefaultShopContext()))
	require.NoError(t, dispatcher.Dispatch(context.Background(), loaded))

	assert.True(t, logHandler.HasDebugLogWithMessage("event published").WithAttr("topic", "shop.entities").Assert())
	require.NoError(t, publisher.Close())
}

func Test_Publisher_SendFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, eventbus.NewProducerConfig())
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	logHandler := testdoubles.NewLogHandlerSpy(false)
	publisher, err := eventbus.NewPublisher(producer, eventbus.WithPublisherLogger(slog.New(logHandler)))
	require.NoError(t, err)

	err = publisher.Publish(context.Background(), entity.NewWrittenEvent("tax", []entity.PrimaryKeyValues{{"id": taxID}}, entity.DefaultShopContext()))

	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	assert.True(t, logHandler.HasErrorLogWithMessage("publishing event failed").WithAttr("event_name", "tax.written").Assert())
	require.NoError(t, publisher.Close())
}

func Test_Message_RoundTrip(t *testing.T) {
	german := entity.DefaultShopContext()
	german.LanguageID = uuid.MustParse("0198a1c4-0000-7000-8000-0000000000de")

	testCases := []struct {
		name  string
		event *entity.WrittenEvent
	}{
		{
			name:  "written",
			event: entity.NewWrittenEvent("tax", []entity.PrimaryKeyValues{{"id": taxID}}, german),
		},
		{
			name:  "deleted_with_errors",
			event: entity.NewDeletedEvent("product", []entity.PrimaryKeyValues{{"id": productID}}, german, errors.New("partially failed")),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			occurredAt := time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC)
			message := eventbus.MessageFromEvent(tc.event, occurredAt)

			data, err := jsoniter.Marshal(message)
			require.NoError(t, err)

			var decoded eventbus.Message
			require.NoError(t, jsoniter.Unmarshal(data, &decoded))

			event := decoded.Event()

			assert.Equal(t, tc.event.Name(), event.Name())
			assert.Equal(t, tc.event.EntityName(), event.EntityName())
			assert.Equal(t, german.LanguageID, event.Context().LanguageID)
			assert.Equal(t, []uuid.UUID{tc.event.IDs()[0]}, event.IDs())
			assert.Len(t, event.Errors(), len(tc.event.Errors()))
			assert.True(t, occurredAt.Equal(decoded.OccurredAt))
		})
	}
}
