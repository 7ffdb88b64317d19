package entity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ParseUUID converts strings, 16 byte slices and arrays into a uuid.
func ParseUUID(value any) (uuid.UUID, error) {
	switch v := value.(type) {
	case uuid.UUID:
		return v, nil
	case [16]byte:
		return v, nil
	case []byte:
		if len(v) == 16 {
			return uuid.FromBytes(v)
		}

		id, err := uuid.ParseBytes(v)
		if err != nil {
			return uuid.Nil, errors.Join(ErrInvalidUUID, err)
		}

		return id, nil
	case string:
		id, err := uuid.Parse(strings.TrimSpace(v))
		if err != nil {
			return uuid.Nil, errors.Join(ErrInvalidUUID, fmt.Errorf("value %q", v))
		}

		return id, nil
	default:
		return uuid.Nil, errors.Join(ErrInvalidUUID, fmt.Errorf("value of type %T", value))
	}
}
