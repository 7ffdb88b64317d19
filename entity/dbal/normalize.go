package dbal

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
)

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999", time.DateTime, time.DateOnly}

// normalizeValue converts a raw driver value into the representation of the field type:
// uuid.UUID for ids, decimal.Decimal for prices, decoded values for JSON columns.
// Drivers differ a lot here, MySQL for example returns most types as []byte.
//
//nolint:gocyclo
func normalizeValue(field entity.Field, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}

	if valuer, ok := raw.(driver.Valuer); ok {
		if _, isUUID := raw.(uuid.UUID); !isUUID {
			value, err := valuer.Value()
			if err != nil {
				return nil, err
			}

			if value == nil {
				return nil, nil
			}

			raw = value
		}
	}

	switch field.(type) {
	case *entity.IDField, *entity.FkField, *entity.ManyToOneAssociationField:
		return entity.ParseUUID(raw)

	case *entity.IntField:
		if i, ok := toInt64(raw); ok {
			return i, nil
		}

	case *entity.FloatField:
		if f, ok := toFloat64(raw); ok {
			return f, nil
		}

	case *entity.PriceField:
		switch v := raw.(type) {
		case []byte:
			return decimal.NewFromString(string(v))
		case string:
			return decimal.NewFromString(v)
		default:
			if f, ok := toFloat64(raw); ok {
				return decimal.NewFromFloat(f), nil
			}
		}

	case *entity.BoolField:
		switch v := raw.(type) {
		case bool:
			return v, nil
		default:
			if i, ok := toInt64(raw); ok {
				return i != 0, nil
			}
		}

	case *entity.DateField:
		switch v := raw.(type) {
		case time.Time:
			return v, nil
		case []byte:
			return parseTime(string(v))
		case string:
			return parseTime(v)
		}

	case *entity.ArrayField, *entity.JSONField:
		switch v := raw.(type) {
		case []byte:
			return decodeJSON(v)
		case string:
			return decodeJSON([]byte(v))
		default:
			return v, nil
		}

	default:
		if b, ok := raw.([]byte); ok {
			return string(b), nil
		}

		return raw, nil
	}

	return nil, fmt.Errorf("cannot convert %T for field %q", raw, field.PropertyName())
}

// NormalizeRow converts the values of a row read elsewhere, e.g. decoded from a cache, into
// the representations ReadRows returns. Nested rows of many-to-one associations are
// normalized against the referenced definition. Unknown properties are kept as they are.
func NormalizeRow(registry *entity.Registry, definition *entity.Definition, row entity.Row) (entity.Row, error) {
	normalized := make(entity.Row, len(row))

	for property, raw := range row {
		field, ok := definition.Field(property)
		if !ok {
			normalized[property] = raw
			continue
		}

		if association, isManyToOne := field.(*entity.ManyToOneAssociationField); isManyToOne {
			nested, err := normalizeNestedRow(registry, association, raw)
			if err != nil {
				return nil, errors.Join(err, fmt.Errorf("property %q of %q", property, definition.Name()))
			}

			normalized[property] = nested

			continue
		}

		if _, isAssociation := field.(entity.AssociationField); isAssociation {
			normalized[property] = raw
			continue
		}

		value, err := normalizeValue(field, raw)
		if err != nil {
			return nil, errors.Join(err, fmt.Errorf("property %q of %q", property, definition.Name()))
		}

		normalized[property] = value
	}

	return normalized, nil
}

func normalizeNestedRow(registry *entity.Registry, association *entity.ManyToOneAssociationField, raw any) (any, error) {
	nested, ok := raw.(map[string]any)
	if !ok {
		return nil, nil
	}

	if registry == nil {
		return nil, ErrNilRegistry
	}

	reference, err := registry.Get(association.ReferenceEntity())
	if err != nil {
		return nil, err
	}

	return NormalizeRow(registry, reference, nested)
}

func decodeJSON(data []byte) (any, error) {
	var decoded any
	if err := jsoniter.ConfigFastest.Unmarshal(data, &decoded); err != nil {
		return nil, err
	}

	return decoded, nil
}

func parseTime(value string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	return time.Time{}, errors.New("unknown time format " + strconv.Quote(value))
}

func toInt64(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case int16:
		return int64(v), true
	case int8:
		return int64(v), true
	case int:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint8:
		return int64(v), true
	case float64:
		return int64(v), true
	case []byte:
		i, err := strconv.ParseInt(string(v), 10, 64)
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(v, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

func toFloat64(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case []byte:
		f, err := strconv.ParseFloat(string(v), 64)
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		if i, ok := toInt64(raw); ok {
			return float64(i), true
		}

		return 0, false
	}
}
