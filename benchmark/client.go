package benchmark

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
)

const (
	defaultTimeout = 20 * time.Second

	logMsgStatisticsSent   = "statistics sent"
	logMsgStatisticsFailed = "sending statistics failed"
	logAttrEndpoint        = "endpoint"
	logAttrStatusCode      = "status_code"
	logAttrError           = "error"

	headerContentType = "Content-Type"
	contentTypeJSON   = "application/json"
)

var (
	// ErrEmptyEndpoint is returned when a Client is created without an endpoint.
	ErrEmptyEndpoint = errors.New("empty benchmark endpoint supplied")

	// ErrSendingStatistics is returned when the statistics could not be delivered.
	ErrSendingStatistics = errors.New("sending statistics failed")

	jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary
)

// ClientOption defines a functional option for configuring a Client.
type ClientOption func(*Client) error

// WithHTTPClient replaces the resty client, e.g. to set a proxy or TLS settings.
// The client is used as it is, NewClient changes none of its settings.
func WithHTTPClient(client *resty.Client) ClientOption {
	return func(c *Client) error {
		if client == nil {
			return errors.New("nil http client supplied")
		}

		c.http = client

		return nil
	}
}

// WithTimeout sets the timeout of each request, it defaults to 20 seconds.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) error {
		if timeout <= 0 {
			return errors.New("timeout must be positive")
		}

		c.timeout = timeout

		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger entity.Logger) ClientOption {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// WithClock sets the clock the responses are stamped with.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) error {
		c.hydrator.Now = now
		return nil
	}
}

// Client posts statistics to the benchmark service.
type Client struct {
	http     *resty.Client
	endpoint string
	timeout  time.Duration
	hydrator StatisticsResponseHydrator
	logger   entity.Logger
}

// NewClient creates a Client posting to endpoint.
func NewClient(endpoint string, opts ...ClientOption) (*Client, error) {
	if endpoint == "" {
		return nil, ErrEmptyEndpoint
	}

	c := &Client{endpoint: endpoint, timeout: defaultTimeout}

	for _, option := range opts {
		if err := option(c); err != nil {
			return nil, err
		}
	}

	if c.http == nil {
		c.http = resty.New()
		c.http.JSONMarshal = jsonAPI.Marshal
		c.http.JSONUnmarshal = jsonAPI.Unmarshal
	}

	return c, nil
}

// SendStatistics posts payload as JSON and hydrates the answer.
func (c *Client) SendStatistics(ctx context.Context, payload any) (StatisticsResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader(headerContentType, contentTypeJSON).
		SetBody(payload).
		Post(c.endpoint)
	if err != nil {
		c.logError(err)
		return StatisticsResponse{}, errors.Join(ErrSendingStatistics, err)
	}

	if resp.StatusCode() != http.StatusOK {
		err = fmt.Errorf("unexpected status %d", resp.StatusCode())
		c.logError(err, logAttrStatusCode, resp.StatusCode())

		return StatisticsResponse{}, errors.Join(ErrSendingStatistics, err)
	}

	data := make(map[string]any)
	if err = jsonAPI.Unmarshal(resp.Body(), &data); err != nil {
		c.logError(err, logAttrStatusCode, resp.StatusCode())
		return StatisticsResponse{}, errors.Join(ErrStatisticsHydrating, err)
	}

	response, err := c.hydrator.Hydrate(data)
	if err != nil {
		c.logError(err, logAttrStatusCode, resp.StatusCode())
		return StatisticsResponse{}, err
	}

	if c.logger != nil {
		c.logger.Debug(logMsgStatisticsSent, logAttrEndpoint, c.endpoint, logAttrStatusCode, resp.StatusCode())
	}

	return response, nil
}

func (c *Client) logError(err error, args ...any) {
	if c.logger == nil {
		return
	}

	c.logger.Error(logMsgStatisticsFailed, append([]any{logAttrEndpoint, c.endpoint, logAttrError, err.Error()}, args...)...)
}
