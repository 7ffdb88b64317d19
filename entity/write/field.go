package write

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
)

// Kind is the value type a write field accepts.
type Kind int

const (
	// KindString accepts strings.
	KindString Kind = iota

	// KindInt accepts integers and whole floats.
	KindInt

	// KindFloat accepts numbers.
	KindFloat

	// KindPrice accepts decimals, numbers and numeric strings.
	KindPrice

	// KindBool accepts booleans.
	KindBool

	// KindDate accepts time.Time and RFC 3339 or "2006-01-02 15:04:05" strings.
	KindDate

	// KindUUID accepts uuids and their string and byte forms.
	KindUUID

	// KindJSON accepts any JSON encodable value, stored encoded.
	KindJSON

	// KindArray accepts slices, stored as JSON array.
	KindArray
)

var kindNames = map[Kind]string{
	KindString: "string",
	KindInt:    "int",
	KindFloat:  "float",
	KindPrice:  "price",
	KindBool:   "bool",
	KindDate:   "date",
	KindUUID:   "uuid",
	KindJSON:   "json",
	KindArray:  "array",
}

// String returns the kind name.
func (k Kind) String() string {
	return kindNames[k]
}

var dateLayouts = []string{time.RFC3339Nano, time.DateTime, time.DateOnly}

// Field is a writable column of a resource.
type Field struct {
	StorageName  string
	PropertyName string
	Kind         Kind
	Flags        entity.Flags

	// Rules are go-playground/validator rules applied to non-nil values, e.g. "max=255".
	Rules string
}

// NewField creates a Field.
func NewField(storageName, propertyName string, kind Kind, flags ...entity.Flags) Field {
	field := Field{StorageName: storageName, PropertyName: propertyName, Kind: kind}
	for _, flag := range flags {
		field.Flags |= flag
	}

	return field
}

// WithRules returns a copy of the field with validation rules.
func (f Field) WithRules(rules string) Field {
	f.Rules = rules

	return f
}

// FieldError describes why a payload value was rejected.
type FieldError struct {
	Property string
	Reason   string
}

// Error implements error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Property, e.Reason)
}

// coerce converts value into the representation written to the database.
func (f Field) coerce(validate *validator.Validate, value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	coerced, err := f.convert(value)
	if err != nil {
		return nil, FieldError{Property: f.PropertyName, Reason: err.Error()}
	}

	if f.Rules != "" {
		if ruleErr := validate.Var(coerced, f.Rules); ruleErr != nil {
			return nil, FieldError{Property: f.PropertyName, Reason: ruleErr.Error()}
		}
	}

	return coerced, nil
}

//nolint:gocyclo
func (f Field) convert(value any) (any, error) {
	switch f.Kind {
	case KindString:
		if s, ok := value.(string); ok {
			return s, nil
		}

	case KindInt:
		if i, ok := toInt64(value); ok {
			return i, nil
		}

	case KindFloat:
		if v, ok := toFloat64(value); ok {
			return v, nil
		}

	case KindPrice:
		switch v := value.(type) {
		case decimal.Decimal:
			return v, nil
		case string:
			d, err := decimal.NewFromString(v)
			if err == nil {
				return d, nil
			}
		default:
			if fl, ok := toFloat64(value); ok {
				return decimal.NewFromFloat(fl), nil
			}
		}

	case KindBool:
		if b, ok := value.(bool); ok {
			return b, nil
		}

	case KindDate:
		switch v := value.(type) {
		case time.Time:
			return v, nil
		case string:
			for _, layout := range dateLayouts {
				if t, err := time.Parse(layout, v); err == nil {
					return t, nil
				}
			}
		}

	case KindUUID:
		id, err := entity.ParseUUID(value)
		if err != nil {
			return nil, errors.New("must be a valid uuid")
		}

		return id, nil

	case KindJSON, KindArray:
		if s, ok := value.(string); ok && jsoniter.ConfigFastest.Valid([]byte(s)) {
			return s, nil
		}

		if f.Kind == KindArray && !isSlice(value) {
			break
		}

		encoded, err := jsoniter.ConfigFastest.MarshalToString(value)
		if err == nil {
			return encoded, nil
		}
	}

	return nil, fmt.Errorf("must be of type %s, got %T", f.Kind, value)
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case float32:
		return floatToInt(float64(v))
	case float64:
		return floatToInt(v)
	case string:
		i, err := strconv.ParseInt(v, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

func floatToInt(v float64) (int64, bool) {
	if v != math.Trunc(v) {
		return 0, false
	}

	return int64(v), true
}

func toFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case decimal.Decimal:
		return v.InexactFloat64(), true
	default:
		if i, ok := toInt64(value); ok {
			if _, isString := value.(string); !isString {
				return float64(i), true
			}
		}

		if s, ok := value.(string); ok {
			fl, err := strconv.ParseFloat(s, 64)
			return fl, err == nil
		}

		return 0, false
	}
}

func isSlice(value any) bool {
	switch value.(type) {
	case []any, []string, []int, []int64, []float64, []bool:
		return true
	default:
		return false
	}
}
