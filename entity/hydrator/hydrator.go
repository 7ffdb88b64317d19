package hydrator

import (
	"errors"
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
)

const tagName = "entity"

// ErrHydrationFailed is returned when a row cannot be decoded into the target struct.
var ErrHydrationFailed = errors.New("hydrating entity failed")

// Hydrate decodes row into a new T.
func Hydrate[T any](row entity.Row) (T, error) {
	var target T

	if err := Into(row, &target); err != nil {
		return target, err
	}

	return target, nil
}

// HydrateAll decodes rows into a slice of T, keeping the order.
func HydrateAll[T any](rows entity.Rows) ([]T, error) {
	hydrated := make([]T, 0, len(rows))

	for i, row := range rows {
		target, err := Hydrate[T](row)
		if err != nil {
			return nil, errors.Join(err, fmt.Errorf("row %d", i))
		}

		hydrated = append(hydrated, target)
	}

	return hydrated, nil
}

// HydrateCollection decodes rows into a collection of T.
func HydrateCollection[T entity.Identifiable](rows entity.Rows) (entity.Collection[T], error) {
	hydrated, err := HydrateAll[T](rows)
	if err != nil {
		return entity.Collection[T]{}, err
	}

	return entity.NewCollection(hydrated...), nil
}

// Into decodes input, usually an entity.Row, into target, which must be a pointer.
func Into(input any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       decodeHook(),
		Result:           target,
		TagName:          tagName,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return errors.Join(ErrHydrationFailed, err)
	}

	if err = decoder.Decode(input); err != nil {
		return errors.Join(ErrHydrationFailed, fmt.Errorf("into %T", target), err)
	}

	return nil
}
