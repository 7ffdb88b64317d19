package benchmark_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/dynamic-entities-go/benchmark"
)

func Test_StatisticsResponseHydrator_Hydrate(t *testing.T) {
	now := time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC)
	hydrator := benchmark.StatisticsResponseHydrator{Now: func() time.Time { return now }}

	tests := []struct {
		name          string
		data          map[string]any
		expected      benchmark.StatisticsResponse
		expectedError string
	}{
		{
			name:     "success",
			data:     map[string]any{"message": "Success", "mappedResponseID": "a1b2c3"},
			expected: benchmark.StatisticsResponse{DateUpdated: now, Token: "a1b2c3"},
		},
		{
			name:     "numeric_token",
			data:     map[string]any{"message": "Success", "mappedResponseID": float64(4711)},
			expected: benchmark.StatisticsResponse{DateUpdated: now, Token: "4711"},
		},
		{
			name:          "message_is_not_success",
			data:          map[string]any{"message": "Invalid shop", "mappedResponseID": "a1b2c3"},
			expectedError: `expected field "message" to be "success", was "Invalid shop"`,
		},
		{
			name:          "message_is_case_sensitive",
			data:          map[string]any{"message": "success", "mappedResponseID": "a1b2c3"},
			expectedError: `was "success"`,
		},
		{
			name:          "message_missing",
			data:          map[string]any{"mappedResponseID": "a1b2c3"},
			expectedError: `was ""`,
		},
		{
			name:          "token_missing",
			data:          map[string]any{"message": "Success"},
			expectedError: `missing field "token" from server response`,
		},
		{
			name:          "token_empty",
			data:          map[string]any{"message": "Success", "mappedResponseID": ""},
			expectedError: `missing field "token"`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			response, err := hydrator.Hydrate(tc.data)

			if tc.expectedError != "" {
				assert.ErrorIs(t, err, benchmark.ErrStatisticsHydrating)
				assert.ErrorContains(t, err, tc.expectedError)
				assert.Zero(t, response)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, response)
		})
	}
}

func Test_StatisticsResponseHydrator_DefaultClock(t *testing.T) {
	before := time.Now()

	response, err := benchmark.StatisticsResponseHydrator{}.Hydrate(map[string]any{"message": "Success", "mappedResponseID": "x"})
	require.NoError(t, err)

	assert.False(t, response.DateUpdated.Before(before))
}
