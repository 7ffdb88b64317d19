package benchmark

import (
	"errors"
	"fmt"
	"time"
)

const (
	fieldMessage          = "message"
	fieldMappedResponseID = "mappedResponseID"

	messageSuccess = "Success"
)

// ErrStatisticsHydrating is returned when a statistics response is not a success or lacks its token.
var ErrStatisticsHydrating = errors.New("hydrating statistics response failed")

// StatisticsResponse is the answer of the benchmark service to sent statistics.
type StatisticsResponse struct {
	DateUpdated time.Time
	Token       string
}

// StatisticsResponseHydrator turns decoded responses of the benchmark service into a
// StatisticsResponse. The zero value stamps responses with time.Now.
type StatisticsResponseHydrator struct {
	Now func() time.Time
}

// Hydrate validates data and creates the response. The message must be "Success" and the
// mapped response id, which is the token, must not be empty.
func (h StatisticsResponseHydrator) Hydrate(data map[string]any) (StatisticsResponse, error) {
	if message, _ := data[fieldMessage].(string); message != messageSuccess {
		return StatisticsResponse{}, errors.Join(
			ErrStatisticsHydrating,
			fmt.Errorf(`expected field "message" to be "success", was "%s"`, printable(data[fieldMessage])),
		)
	}

	token := data[fieldMappedResponseID]
	if isEmpty(token) {
		return StatisticsResponse{}, errors.Join(ErrStatisticsHydrating, errors.New(`missing field "token" from server response`))
	}

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}

	return StatisticsResponse{DateUpdated: now(), Token: printable(token)}, nil
}

func printable(value any) string {
	if value == nil {
		return ""
	}

	return fmt.Sprint(value)
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == "" || v == "0"
	case bool:
		return !v
	case float64:
		return v == 0
	case int:
		return v == 0
	case int64:
		return v == 0
	default:
		return false
	}
}
