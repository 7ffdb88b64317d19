package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
	"github.com/AntonStoeckl/dynamic-entities-go/entity/hydrator"
	"github.com/AntonStoeckl/dynamic-entities-go/entity/write"
)

const (
	logMsgDispatchFailed = "dispatching event failed"
	logAttrEventName     = "event_name"
	logAttrError         = "error"
)

var (
	// ErrNilDefinition is returned when a repository is created without a definition.
	ErrNilDefinition = errors.New("nil entity definition supplied")

	// ErrNilStore is returned when a repository is created without a store.
	ErrNilStore = errors.New("nil store supplied")
)

// Store is the storage a Repository works on. It is implemented by *dbal.Store and by the
// cached store of package cache.
type Store interface {
	SearchIDs(ctx context.Context, definition *entity.Definition, criteria *entity.Criteria) (entity.IDSearchResult, error)
	ReadRows(ctx context.Context, definition *entity.Definition, ids []uuid.UUID) (entity.Rows, error)
	ReadRowsByForeignKey(ctx context.Context, definition *entity.Definition, storageName string, ids []uuid.UUID) (entity.Rows, error)
	Write(ctx context.Context, commands []write.Command) (map[string][]entity.PrimaryKeyValues, error)
	Delete(ctx context.Context, definition *entity.Definition, primaryKeys []entity.PrimaryKeyValues) (int64, error)
}

// Events lets entity packages shape the events a Repository fires. Every field is optional,
// by default generic events named after the definition are fired.
type Events[B entity.Identifiable, D entity.Identifiable] struct {
	// BasicNested derives the nested events of the basic loaded event.
	BasicNested entity.NestedEventsFunc[B]

	// DetailNested derives the nested events of the detail loaded event.
	DetailNested entity.NestedEventsFunc[D]

	// DetailLoaded replaces the detail loaded event.
	DetailLoaded func(collection entity.Collection[D], shopContext entity.ShopContext) entity.NestedEvent

	// SearchResultLoaded replaces the search result loaded event.
	SearchResultLoaded func(result entity.SearchResult[B]) entity.NestedEvent

	// IDSearchResultLoaded replaces the id search result loaded event.
	IDSearchResultLoaded func(result entity.IDSearchResult) entity.NestedEvent

	// Written replaces the written event, e.g. to attach the payloads.
	Written func(resource *write.Resource, updates map[string][]entity.PrimaryKeyValues, shopContext entity.ShopContext) entity.NestedEvent
}

// Option defines a functional option for configuring a Repository.
type Option func(*options) error

type options struct {
	registry   *entity.Registry
	resource   *write.Resource
	dispatcher entity.EventDispatcher
	logger     entity.Logger
}

// WithRegistry sets the registry used to resolve associations. It is required for detail
// reads of definitions with one-to-many associations and for derived write resources with
// nested payloads.
func WithRegistry(registry *entity.Registry) Option {
	return func(o *options) error {
		o.registry = registry
		return nil
	}
}

// WithResource sets a hand-written write resource instead of the one derived from the definition.
func WithResource(resource *write.Resource) Option {
	return func(o *options) error {
		if resource == nil {
			return errors.New("nil write resource supplied")
		}

		o.resource = resource

		return nil
	}
}

// WithDispatcher sets the dispatcher which receives all events. Without one, events are dropped.
func WithDispatcher(dispatcher entity.EventDispatcher) Option {
	return func(o *options) error {
		o.dispatcher = dispatcher
		return nil
	}
}

// WithLogger sets the logger which receives dispatching failures.
func WithLogger(logger entity.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// Repository searches, reads and writes the entity of one definition.
type Repository[B entity.Identifiable, D entity.Identifiable] struct {
	definition *entity.Definition
	store      Store
	events     Events[B, D]
	options
}

// New creates a Repository for definition.
func New[B entity.Identifiable, D entity.Identifiable](
	definition *entity.Definition,
	store Store,
	events Events[B, D],
	opts ...Option,
) (*Repository[B, D], error) {

	if definition == nil {
		return nil, ErrNilDefinition
	}

	if store == nil {
		return nil, ErrNilStore
	}

	r := &Repository[B, D]{definition: definition, store: store, events: events}

	for _, option := range opts {
		if err := option(&r.options); err != nil {
			return nil, err
		}
	}

	if r.registry == nil {
		registry, err := entity.NewRegistry(definition)
		if err != nil {
			return nil, err
		}

		r.registry = registry
	}

	if r.resource == nil {
		resource, err := write.FromDefinition(definition, r.registry)
		if err != nil {
			return nil, err
		}

		r.resource = resource
	}

	return r, nil
}

// Definition returns the definition of the repository.
func (r *Repository[B, D]) Definition() *entity.Definition {
	return r.definition
}

// Resource returns the write resource of the repository.
func (r *Repository[B, D]) Resource() *write.Resource {
	return r.resource
}

// SearchIDs searches the ids matching criteria and fires the id search result loaded event.
func (r *Repository[B, D]) SearchIDs(ctx context.Context, criteria *entity.Criteria) (entity.IDSearchResult, error) {
	result, err := r.store.SearchIDs(ctx, r.definition, criteria)
	if err != nil {
		return entity.IDSearchResult{}, err
	}

	var event entity.NestedEvent = entity.NewIDSearchResultLoadedEvent(r.definition.IDSearchResultLoadedEventName(), result)
	if r.events.IDSearchResultLoaded != nil {
		event = r.events.IDSearchResultLoaded(result)
	}

	return result, r.dispatch(ctx, event)
}

// Search searches the entities matching criteria, reads them as basic structs and fires the
// basic loaded and the search result loaded events.
func (r *Repository[B, D]) Search(ctx context.Context, criteria *entity.Criteria) (entity.SearchResult[B], error) {
	ids, err := r.store.SearchIDs(ctx, r.definition, criteria)
	if err != nil {
		return entity.SearchResult[B]{}, err
	}

	collection, err := r.ReadBasic(ctx, ids.IDs()...)
	if err != nil {
		return entity.SearchResult[B]{}, err
	}

	result := entity.NewSearchResult(collection, ids.Total(), ids.Criteria(), ids.Context())

	var event entity.NestedEvent = entity.NewSearchResultLoadedEvent(r.definition.SearchResultLoadedEventName(), result)
	if r.events.SearchResultLoaded != nil {
		event = r.events.SearchResultLoaded(result)
	}

	return result, r.dispatch(ctx, event)
}

// ReadBasic reads the entities with the given ids as basic structs, in the order of the ids.
func (r *Repository[B, D]) ReadBasic(ctx context.Context, ids ...uuid.UUID) (entity.Collection[B], error) {
	rows, err := r.store.ReadRows(ctx, r.definition, ids)
	if err != nil {
		return entity.Collection[B]{}, err
	}

	collection, err := hydrator.HydrateCollection[B](rows)
	if err != nil {
		return entity.Collection[B]{}, errors.Join(err, fmt.Errorf("basic %q", r.definition.Name()))
	}

	shopContext := entity.ShopContextFrom(ctx)
	event := entity.NewLoadedEvent(r.definition.BasicLoadedEventName(), collection, shopContext, r.events.BasicNested)

	return collection, r.dispatch(ctx, event)
}

// ReadDetail reads the entities with the given ids as detail structs, including the rows of
// all one-to-many associations.
func (r *Repository[B, D]) ReadDetail(ctx context.Context, ids ...uuid.UUID) (entity.Collection[D], error) {
	rows, err := r.store.ReadRows(ctx, r.definition, ids)
	if err != nil {
		return entity.Collection[D]{}, err
	}

	if err = r.attachChildren(ctx, rows); err != nil {
		return entity.Collection[D]{}, err
	}

	collection, err := hydrator.HydrateCollection[D](rows)
	if err != nil {
		return entity.Collection[D]{}, errors.Join(err, fmt.Errorf("detail %q", r.definition.Name()))
	}

	shopContext := entity.ShopContextFrom(ctx)

	var event entity.NestedEvent = entity.NewLoadedEvent(r.definition.DetailLoadedEventName(), collection, shopContext, r.events.DetailNested)
	if r.events.DetailLoaded != nil {
		event = r.events.DetailLoaded(collection, shopContext)
	}

	return collection, r.dispatch(ctx, event)
}

// attachChildren sets the rows of every one-to-many association on the parent rows.
// Parents without children get an empty list.
func (r *Repository[B, D]) attachChildren(ctx context.Context, rows entity.Rows) error {
	primaryKeys := r.definition.PrimaryKeys()
	if len(rows) == 0 || len(primaryKeys) != 1 {
		return nil
	}

	keyProperty := primaryKeys[0].PropertyName()
	ids := make([]uuid.UUID, 0, len(rows))

	for _, row := range rows {
		if id, ok := row[keyProperty].(uuid.UUID); ok {
			ids = append(ids, id)
		}
	}

	for _, field := range r.definition.Fields().Associations() {
		association, ok := field.(*entity.OneToManyAssociationField)
		if !ok {
			continue
		}

		children, err := r.readChildren(ctx, association, ids)
		if err != nil {
			return err
		}

		for _, row := range rows {
			id, _ := row[keyProperty].(uuid.UUID)

			if grouped, found := children[id]; found {
				row[association.PropertyName()] = grouped
				continue
			}

			row[association.PropertyName()] = entity.Rows{}
		}
	}

	return nil
}

func (r *Repository[B, D]) readChildren(
	ctx context.Context,
	association *entity.OneToManyAssociationField,
	ids []uuid.UUID,
) (map[uuid.UUID]entity.Rows, error) {

	reference, err := r.registry.Get(association.ReferenceEntity())
	if err != nil {
		return nil, err
	}

	foreignKey, ok := reference.Fields().GetByStorageName(association.ReferenceField())
	if !ok {
		return nil, errors.Join(
			entity.ErrUnknownField,
			fmt.Errorf("column %q of %q referenced by %q", association.ReferenceField(), reference.Name(), association.PropertyName()),
		)
	}

	rows, err := r.store.ReadRowsByForeignKey(ctx, reference, association.ReferenceField(), ids)
	if err != nil {
		return nil, err
	}

	grouped := make(map[uuid.UUID]entity.Rows, len(ids))

	for _, row := range rows {
		if parentID, isUUID := row[foreignKey.PropertyName()].(uuid.UUID); isUUID {
			grouped[parentID] = append(grouped[parentID], row)
		}
	}

	return grouped, nil
}

// Upsert inserts or updates the entities described by payloads, including nested payloads.
func (r *Repository[B, D]) Upsert(ctx context.Context, payloads ...entity.Row) (entity.NestedEvent, error) {
	return r.write(ctx, write.Upsert, payloads)
}

// Create inserts the entities described by payloads.
func (r *Repository[B, D]) Create(ctx context.Context, payloads ...entity.Row) (entity.NestedEvent, error) {
	return r.write(ctx, write.Insert, payloads)
}

// Update updates the entities described by payloads. Every payload needs its primary key.
func (r *Repository[B, D]) Update(ctx context.Context, payloads ...entity.Row) (entity.NestedEvent, error) {
	return r.write(ctx, write.Update, payloads)
}

func (r *Repository[B, D]) write(ctx context.Context, mode write.Mode, payloads entity.Rows) (entity.NestedEvent, error) {
	shopContext := entity.ShopContextFrom(ctx)

	commands, err := r.resource.ExtractAll(payloads, mode, shopContext)
	if err != nil {
		return nil, err
	}

	updates, err := r.store.Write(ctx, commands)
	if err != nil {
		return nil, err
	}

	var event entity.NestedEvent
	if r.events.Written != nil {
		event = r.events.Written(r.resource, updates, shopContext)
	} else {
		event = r.resource.CreateWrittenEvent(updates, shopContext).WithPayloads(payloads)
	}

	return event, r.dispatch(ctx, event)
}

// Delete deletes the entities with the given primary keys and fires the deleted event.
func (r *Repository[B, D]) Delete(ctx context.Context, primaryKeys ...entity.PrimaryKeyValues) (*entity.WrittenEvent, error) {
	if _, err := r.store.Delete(ctx, r.definition, primaryKeys); err != nil {
		return nil, err
	}

	event := entity.NewDeletedEvent(r.definition.Name(), primaryKeys, entity.ShopContextFrom(ctx))

	return event, r.dispatch(ctx, event)
}

// dispatch hands the event to the dispatcher. Listener failures are returned after logging.
func (r *Repository[B, D]) dispatch(ctx context.Context, event entity.NestedEvent) error {
	if r.dispatcher == nil || event == nil {
		return nil
	}

	if err := r.dispatcher.Dispatch(ctx, event); err != nil {
		if r.logger != nil {
			r.logger.Error(logMsgDispatchFailed, logAttrEventName, event.Name(), logAttrError, err.Error())
		}

		return err
	}

	return nil
}
