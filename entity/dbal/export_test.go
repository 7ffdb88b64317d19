package dbal

import (
	"github.com/AntonStoeckl/dynamic-entities-go/entity"
	"github.com/AntonStoeckl/dynamic-entities-go/entity/dbal/internal/adapters"
)

// NewStoreWithAdapter exposes the adapter based constructor to the external tests.
func NewStoreWithAdapter(db adapters.DBAdapter, registry *entity.Registry, options ...Option) (*Store, error) {
	return newStore(db, registry, options...)
}
