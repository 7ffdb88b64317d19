package benchmark_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/dynamic-entities-go/benchmark"
	"github.com/AntonStoeckl/dynamic-entities-go/testutil/observability/testdoubles"
)

type statisticsPayload struct {
	ShopID string `json:"shopId"`
	Orders int    `json:"orders"`
}

func newServer(t *testing.T, status int, body string, received *map[string]any) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		if received != nil {
			raw, err := io.ReadAll(r.Body)
			assert.NoError(t, err)
			assert.NoError(t, jsoniter.Unmarshal(raw, received))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return server
}

func Test_NewClient_Errors(t *testing.T) {
	_, err := benchmark.NewClient("")
	assert.ErrorIs(t, err, benchmark.ErrEmptyEndpoint)

	_, err = benchmark.NewClient("http://localhost", benchmark.WithTimeout(0))
	assert.Error(t, err)

	_, err = benchmark.NewClient("http://localhost", benchmark.WithHTTPClient(nil))
	assert.Error(t, err)
}

func Test_Client_SendStatistics(t *testing.T) {
	now := time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC)
	received := map[string]any{}
	server := newServer(t, http.StatusOK, `{"message":"Success","mappedResponseID":"a1b2c3"}`, &received)

	spy := testdoubles.NewLogHandlerSpy(false)

	client, err := benchmark.NewClient(server.URL,
		benchmark.WithClock(func() time.Time { return now }),
		benchmark.WithLogger(slog.New(spy)),
	)
	require.NoError(t, err)

	response, err := client.SendStatistics(context.Background(), statisticsPayload{ShopID: "main", Orders: 3})
	require.NoError(t, err)

	assert.Equal(t, benchmark.StatisticsResponse{DateUpdated: now, Token: "a1b2c3"}, response)
	assert.Equal(t, map[string]any{"shopId": "main", "orders": float64(3)}, received)
	assert.True(t, spy.HasDebugLogWithMessage("statistics sent").WithAttr("endpoint", server.URL).Assert())
}

func Test_Client_SendStatistics_Failures(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		expectedError error
	}{
		{
			name:          "server_error",
			status:        http.StatusInternalServerError,
			body:          `{"message":"Internal error"}`,
			expectedError: benchmark.ErrSendingStatistics,
		},
		{
			name:          "unsuccessful_message",
			status:        http.StatusOK,
			body:          `{"message":"Invalid shop","mappedResponseID":"a1b2c3"}`,
			expectedError: benchmark.ErrStatisticsHydrating,
		},
		{
			name:          "missing_token",
			status:        http.StatusOK,
			body:          `{"message":"Success"}`,
			expectedError: benchmark.ErrStatisticsHydrating,
		},
		{
			name:          "malformed_body",
			status:        http.StatusOK,
			body:          `{"message":`,
			expectedError: benchmark.ErrStatisticsHydrating,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := newServer(t, tc.status, tc.body, nil)
			spy := testdoubles.NewLogHandlerSpy(false)

			client, err := benchmark.NewClient(server.URL, benchmark.WithLogger(slog.New(spy)))
			require.NoError(t, err)

			_, err = client.SendStatistics(context.Background(), statisticsPayload{ShopID: "main"})

			assert.ErrorIs(t, err, tc.expectedError)
			assert.True(t, spy.HasErrorLogWithMessage("sending statistics failed").Assert())
		})
	}
}

func Test_Client_SendStatistics_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := benchmark.NewClient(url, benchmark.WithTimeout(time.Second))
	require.NoError(t, err)

	_, err = client.SendStatistics(context.Background(), statisticsPayload{})
	assert.ErrorIs(t, err, benchmark.ErrSendingStatistics)
}

func Test_Client_KeepsSuppliedHTTPClient(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	httpClient := resty.New().SetTimeout(time.Minute)

	client, err := benchmark.NewClient(server.URL,
		benchmark.WithHTTPClient(httpClient),
		benchmark.WithTimeout(50*time.Millisecond),
	)
	require.NoError(t, err)

	assert.Equal(t, time.Minute, httpClient.GetClient().Timeout)

	start := time.Now()
	_, err = client.SendStatistics(context.Background(), statisticsPayload{ShopID: "main"})

	assert.ErrorIs(t, err, benchmark.ErrSendingStatistics)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, time.Minute, httpClient.GetClient().Timeout)
}
