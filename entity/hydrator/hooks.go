package hydrator

import (
	"database/sql/driver"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
)

var (
	uuidType    = reflect.TypeOf(uuid.UUID{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
	timeType    = reflect.TypeOf(time.Time{})
	bytesType   = reflect.TypeOf([]byte(nil))

	entityPkgPath = reflect.TypeOf(entity.ShopContext{}).PkgPath()

	timeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999", time.DateTime, time.DateOnly}
)

func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		valuerHook,
		collectionHook,
		uuidHook,
		decimalHook,
		timeHook,
		jsonHook,
	)
}

// valuerHook unwraps driver.Valuer values unless they already have the target type.
func valuerHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from == to {
		return data, nil
	}

	valuer, ok := data.(driver.Valuer)
	if !ok {
		return data, nil
	}

	switch from {
	case uuidType, decimalType:
		return data, nil
	}

	return valuer.Value()
}

// collectionHook decodes a list of rows into an entity.Collection of the element type.
func collectionHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from == to || to.Kind() != reflect.Struct || to.PkgPath() != entityPkgPath || !strings.HasPrefix(to.Name(), "Collection[") {
		return data, nil
	}

	add, ok := reflect.PointerTo(to).MethodByName("Add")
	if !ok || !add.Type.IsVariadic() {
		return data, nil
	}

	elements := reflect.New(add.Type.In(1))
	if err := Into(data, elements.Interface()); err != nil {
		return nil, err
	}

	collection := reflect.New(to)
	collection.MethodByName("Add").CallSlice([]reflect.Value{elements.Elem()})

	return collection.Elem().Interface(), nil
}

func uuidHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != uuidType || from == uuidType {
		return data, nil
	}

	return entity.ParseUUID(data)
}

func decimalHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != decimalType || from == decimalType {
		return data, nil
	}

	switch v := data.(type) {
	case string:
		return decimal.NewFromString(v)
	case []byte:
		return decimal.NewFromString(string(v))
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	default:
		return data, nil
	}
}

func timeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != timeType || from == timeType {
		return data, nil
	}

	var value string

	switch v := data.(type) {
	case string:
		value = v
	case []byte:
		value = string(v)
	default:
		return data, nil
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(value)); err == nil {
			return t, nil
		}
	}

	return nil, errors.New("unknown time format: " + value)
}

// jsonHook decodes JSON encoded strings into slice and map targets.
func jsonHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to == bytesType {
		return data, nil
	}

	if to.Kind() != reflect.Slice && to.Kind() != reflect.Map {
		return data, nil
	}

	var encoded []byte

	switch v := data.(type) {
	case string:
		encoded = []byte(v)
	case []byte:
		encoded = v
	default:
		return data, nil
	}

	if len(encoded) == 0 {
		return nil, nil
	}

	var decoded any
	if err := jsoniter.ConfigFastest.Unmarshal(encoded, &decoded); err != nil {
		return nil, err
	}

	return decoded, nil
}
