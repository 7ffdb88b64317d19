package commerce_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/dynamic-entities-go/commerce"
	"github.com/AntonStoeckl/dynamic-entities-go/entity"
	"github.com/AntonStoeckl/dynamic-entities-go/entity/write"
)

func Test_NewCoreSubscribes_Errors(t *testing.T) {
	_, err := commerce.NewCoreSubscribes(nil, nil)
	assert.ErrorIs(t, err, commerce.ErrNilCommandWriter)
}

func Test_CoreSubscribes_Write(t *testing.T) {
	subscription := entity.Row{
		"subscribe": "Enlight_Controller_Action_PostDispatch_Frontend",
		"type":      0,
		"listener":  "SwagExample\\Subscriber\\Frontend::onPostDispatch",
		"pluginID":  42,
		"position":  0,
	}

	tests := []struct {
		name          string
		mode          write.Mode
		payload       entity.Row
		expectedMode  write.Mode
		expectedError error
	}{
		{
			name:         "upsert_without_id_inserts",
			mode:         write.Upsert,
			payload:      subscription,
			expectedMode: write.Insert,
		},
		{
			name: "upsert_with_id",
			mode: write.Upsert,
			payload: func() entity.Row {
				row := entity.Row{"id": 7}
				for k, v := range subscription {
					row[k] = v
				}

				return row
			}(),
			expectedMode: write.Upsert,
		},
		{
			name:          "missing_listener",
			mode:          write.Insert,
			payload:       entity.Row{"subscribe": "Enlight_Bootstrap_InitResource_Example", "type": 0, "position": 0},
			expectedError: write.ErrValidationFailed,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{}
			recorder := &eventRecorder{}

			subscribes, err := commerce.NewCoreSubscribes(store, newDispatcher(recorder))
			require.NoError(t, err)

			event, err := subscribes.Write(context.Background(), tc.mode, tc.payload)

			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, event)
				assert.Empty(t, store.commands)
				assert.Empty(t, recorder.names)

				return
			}

			require.NoError(t, err)
			require.Len(t, store.commands, 1)
			assert.Equal(t, "s_core_subscribes", store.commands[0].Table)
			assert.Equal(t, tc.expectedMode, store.commands[0].Mode)
			assert.Equal(t, int64(42), store.commands[0].Data["pluginID"])

			assert.Equal(t, commerce.CoreSubscribesWritten, event.Name())
			assert.Equal(t, entity.Rows{tc.payload}, event.Payloads())
			assert.Equal(t, []string{"s_core_subscribes.written"}, recorder.names)
		})
	}
}

func Test_CoreSubscribes_WriteFailure(t *testing.T) {
	store := &fakeStore{writeErr: errors.New("connection refused")}

	subscribes, err := commerce.NewCoreSubscribes(store, nil)
	require.NoError(t, err)

	_, err = subscribes.Write(context.Background(), write.Insert, entity.Row{
		"subscribe": "Enlight_Bootstrap_InitResource_Example",
		"type":      0,
		"listener":  "Example::onInit",
		"position":  0,
	})
	assert.ErrorContains(t, err, "connection refused")
	assert.Equal(t, "s_core_subscribes", subscribes.Resource().Table())
}
