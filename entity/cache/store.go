package cache

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
	"github.com/AntonStoeckl/dynamic-entities-go/entity/dbal"
	"github.com/AntonStoeckl/dynamic-entities-go/entity/repository"
	"github.com/AntonStoeckl/dynamic-entities-go/entity/write"
)

const (
	logMsgReadFailed       = "reading row cache failed"
	logMsgWriteFailed      = "writing row cache failed"
	logMsgDecodeFailed     = "decoding cached row failed"
	logMsgInvalidated      = "row cache invalidated"
	logMsgInvalidateFailed = "invalidating row cache failed"

	logAttrEntity   = "entity"
	logAttrKeyCount = "key_count"
	logAttrError    = "error"

	metricHits   = "entitycache_hits_total"
	metricMisses = "entitycache_misses_total"
	labelEntity  = "entity"
)

var (
	// ErrNilClient is returned when a cache is created without a redis client.
	ErrNilClient = errors.New("nil redis client supplied")

	// ErrNilStore is returned when a cache is created without a store to read through.
	ErrNilStore = errors.New("nil store supplied")
)

// Client is the part of the redis API the cache uses. *redis.Client, *redis.ClusterClient and
// redis.UniversalClient satisfy it.
type Client interface {
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// document is the cached value of one entity id: its rows keyed by language and fallback language.
type document map[string]entity.Row

// Store is a repository.Store which caches rows read by id.
// Cache failures are logged and never fail a read, the inner store answers instead.
type Store struct {
	inner            repository.Store
	client           Client
	registry         *entity.Registry
	ttl              time.Duration
	prefix           string
	logger           entity.Logger
	metricsCollector entity.MetricsCollector
}

var _ repository.Store = (*Store)(nil)

// NewStore creates a Store reading through to inner.
func NewStore(inner repository.Store, client Client, registry *entity.Registry, options ...Option) (*Store, error) {
	if inner == nil {
		return nil, ErrNilStore
	}

	if client == nil {
		return nil, ErrNilClient
	}

	if registry == nil {
		return nil, dbal.ErrNilRegistry
	}

	s := &Store{
		inner:    inner,
		client:   client,
		registry: registry,
		ttl:      defaultTTL,
		prefix:   defaultKeyPrefix,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// SearchIDs is not cached.
func (s *Store) SearchIDs(ctx context.Context, definition *entity.Definition, criteria *entity.Criteria) (entity.IDSearchResult, error) {
	return s.inner.SearchIDs(ctx, definition, criteria)
}

// ReadRows returns cached rows in the context's languages and reads the missing ones through the
// inner store, caching them afterward.
//
// Documents hold the entity's own columns only. Eagerly loaded many-to-one rows of cache hits are
// assembled from the cached rows of the referenced entity, so invalidating a referenced entity
// is visible in every row pointing to it.
func (s *Store) ReadRows(ctx context.Context, definition *entity.Definition, ids []uuid.UUID) (entity.Rows, error) {
	if !cacheable(definition) {
		return s.inner.ReadRows(ctx, definition, ids)
	}

	rows, hits, err := s.readRoots(ctx, definition, ids)
	if err != nil {
		return nil, err
	}

	if len(hits) == 0 {
		return rows, nil
	}

	if err = s.attachAssociations(ctx, definition, hits); err != nil {
		return nil, err
	}

	return rows, nil
}

// readRoots returns the rows of ids in their order and the rows served from the cache.
// Rows read through the inner store are returned as they are, their root columns are cached.
func (s *Store) readRoots(ctx context.Context, definition *entity.Definition, ids []uuid.UUID) (entity.Rows, entity.Rows, error) {
	if len(ids) == 0 {
		return entity.Rows{}, nil, nil
	}

	keyProperty := definition.PrimaryKeys()[0].PropertyName()
	language := languageKey(entity.ShopContextFrom(ctx))
	documents := s.load(ctx, s.keys(definition.Name(), ids))

	byID := make(map[uuid.UUID]entity.Row, len(ids))
	indexOf := make(map[uuid.UUID]int, len(ids))
	missing := make([]uuid.UUID, 0)
	hits := make(entity.Rows, 0, len(ids))

	for i, id := range ids {
		indexOf[id] = i

		if row, ok := s.cachedRow(definition, documents[i], language); ok {
			byID[id] = row
			hits = append(hits, row)

			continue
		}

		missing = append(missing, id)
	}

	s.count(metricHits, definition.Name(), len(hits))
	s.count(metricMisses, definition.Name(), len(missing))

	if len(missing) > 0 {
		read, err := s.inner.ReadRows(ctx, definition, missing)
		if err != nil {
			return nil, nil, err
		}

		for _, row := range read {
			id, ok := row[keyProperty].(uuid.UUID)
			if !ok {
				continue
			}

			byID[id] = row
			s.save(ctx, s.key(definition.Name(), id), documents[indexOf[id]], language, rootColumns(definition, row))
		}
	}

	rows := make(entity.Rows, 0, len(byID))
	for _, id := range ids {
		if row, ok := byID[id]; ok {
			rows = append(rows, row)
		}
	}

	return rows, hits, nil
}

// attachAssociations nests the rows of the eagerly loaded many-to-one associations into rows,
// nil where the foreign key is null or points to nothing.
func (s *Store) attachAssociations(ctx context.Context, definition *entity.Definition, rows entity.Rows) error {
	for _, field := range definition.Fields().Elements() {
		association, ok := field.(*entity.ManyToOneAssociationField)
		if !ok || !association.LoadInBasic() {
			continue
		}

		foreignKey, ok := definition.Fields().GetByStorageName(association.StorageName())
		if !ok {
			return errors.Join(entity.ErrUnknownField, fmt.Errorf("column %q of %q", association.StorageName(), definition.Name()))
		}

		reference, err := s.registry.Get(association.ReferenceEntity())
		if err != nil {
			return err
		}

		referenced, err := s.referencedRows(ctx, reference, rows, foreignKey.PropertyName())
		if err != nil {
			return err
		}

		for _, row := range rows {
			row[association.PropertyName()] = nil

			if id, isID := row[foreignKey.PropertyName()].(uuid.UUID); isID {
				if nested, found := referenced[id]; found {
					row[association.PropertyName()] = nested
				}
			}
		}
	}

	return nil
}

// referencedRows reads the rows referenced by the foreign key property of rows, keyed by id
// and reduced to their own columns.
func (s *Store) referencedRows(
	ctx context.Context,
	reference *entity.Definition,
	rows entity.Rows,
	foreignKeyProperty string,
) (map[uuid.UUID]entity.Row, error) {

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		if id, ok := row[foreignKeyProperty].(uuid.UUID); ok && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}

	if len(ids) == 0 {
		return nil, nil
	}

	var (
		read entity.Rows
		err  error
	)

	if cacheable(reference) {
		read, _, err = s.readRoots(ctx, reference, ids)
	} else {
		read, err = s.inner.ReadRows(ctx, reference, ids)
	}

	if err != nil {
		return nil, err
	}

	keyProperty := reference.PrimaryKeys()[0].PropertyName()
	byID := make(map[uuid.UUID]entity.Row, len(read))

	for _, row := range read {
		if id, ok := row[keyProperty].(uuid.UUID); ok {
			byID[id] = rootColumns(reference, row)
		}
	}

	return byID, nil
}

// cacheable reports whether rows of definition are cached, which needs a single uuid primary key.
func cacheable(definition *entity.Definition) bool {
	primaryKeys := definition.PrimaryKeys()

	return len(primaryKeys) == 1 && entity.IsUUIDField(primaryKeys[0])
}

// rootColumns returns a copy of row without association values.
func rootColumns(definition *entity.Definition, row entity.Row) entity.Row {
	root := make(entity.Row, len(row))

	for property, value := range row {
		if field, ok := definition.Field(property); ok {
			if _, isAssociation := field.(entity.AssociationField); isAssociation {
				continue
			}
		}

		root[property] = value
	}

	return root
}

// languageKey identifies the languages a row was read in. Translated values depend on the
// fallback language as well.
func languageKey(shopContext entity.ShopContext) string {
	if !shopContext.HasFallbackLanguage() {
		return shopContext.LanguageID.String()
	}

	return shopContext.LanguageID.String() + "/" + shopContext.FallbackLanguageID.String()
}

// ReadRowsByForeignKey is not cached.
func (s *Store) ReadRowsByForeignKey(
	ctx context.Context,
	definition *entity.Definition,
	storageName string,
	ids []uuid.UUID,
) (entity.Rows, error) {

	return s.inner.ReadRowsByForeignKey(ctx, definition, storageName, ids)
}

// Write writes through the inner store and invalidates every written id, also when the write fails.
func (s *Store) Write(ctx context.Context, commands []write.Command) (map[string][]entity.PrimaryKeyValues, error) {
	written, err := s.inner.Write(ctx, commands)

	for _, command := range commands {
		if invalidateErr := s.Invalidate(ctx, command.EntityName, command.PrimaryKey); invalidateErr != nil {
			s.logWarn(logMsgInvalidateFailed, invalidateErr)
		}
	}

	return written, err
}

// Delete deletes through the inner store and invalidates the deleted ids.
func (s *Store) Delete(ctx context.Context, definition *entity.Definition, primaryKeys []entity.PrimaryKeyValues) (int64, error) {
	deleted, err := s.inner.Delete(ctx, definition, primaryKeys)
	if err != nil {
		return 0, err
	}

	if invalidateErr := s.Invalidate(ctx, definition.Name(), primaryKeys...); invalidateErr != nil {
		s.logWarn(logMsgInvalidateFailed, invalidateErr)
	}

	return deleted, nil
}

// Listener returns an entity.Listener which invalidates the ids of written and deleted events.
func (s *Store) Listener() entity.Listener {
	return func(ctx context.Context, event entity.NestedEvent) error {
		written, ok := event.(*entity.WrittenEvent)
		if !ok {
			return nil
		}

		return s.Invalidate(ctx, written.EntityName(), written.PrimaryKeys()...)
	}
}

// Invalidate drops the cached rows of the given primary keys. Primary keys of translation
// entities invalidate the translated parent rows.
func (s *Store) Invalidate(ctx context.Context, entityName string, primaryKeys ...entity.PrimaryKeyValues) error {
	target, ids := s.idsOf(entityName, primaryKeys)
	if len(ids) == 0 {
		return nil
	}

	keys := s.keys(target, ids)

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Debug(logMsgInvalidated, logAttrEntity, target, logAttrKeyCount, len(keys))
	}

	return nil
}

// idsOf returns the entity whose rows are cached for entityName and the ids the primary keys
// point to.
func (s *Store) idsOf(entityName string, primaryKeys []entity.PrimaryKeyValues) (string, []uuid.UUID) {
	definition, err := s.registry.Get(entityName)
	if err != nil {
		return entityName, nil
	}

	target := entityName
	property := ""

	if definition.IsTranslation() {
		target = definition.ParentDefinition()

		for _, field := range definition.Fields().Elements() {
			if fk, ok := field.(*entity.FkField); ok && fk.ReferenceEntity() == target {
				property = fk.PropertyName()
			}
		}
	} else if keys := definition.PrimaryKeys(); len(keys) == 1 && entity.IsUUIDField(keys[0]) {
		property = keys[0].PropertyName()
	}

	if property == "" {
		return target, nil
	}

	ids := make([]uuid.UUID, 0, len(primaryKeys))

	for _, primaryKey := range primaryKeys {
		if id, parseErr := entity.ParseUUID(primaryKey[property]); parseErr == nil {
			ids = append(ids, id)
		}
	}

	return target, ids
}

func (s *Store) key(entityName string, id uuid.UUID) string {
	return s.prefix + ":" + entityName + ":" + id.String()
}

func (s *Store) keys(entityName string, ids []uuid.UUID) []string {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, s.key(entityName, id))
	}

	return keys
}

// load fetches the documents of keys, nil for misses and undecodable values.
func (s *Store) load(ctx context.Context, keys []string) []document {
	documents := make([]document, len(keys))

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		s.logWarn(logMsgReadFailed, err)
		return documents
	}

	for i, value := range values {
		encoded, ok := value.(string)
		if !ok || i >= len(documents) {
			continue
		}

		var decoded document
		if err = jsoniter.UnmarshalFromString(encoded, &decoded); err != nil {
			s.logWarn(logMsgDecodeFailed, err)
			continue
		}

		documents[i] = decoded
	}

	return documents
}

func (s *Store) cachedRow(definition *entity.Definition, doc document, language string) (entity.Row, bool) {
	raw, ok := doc[language]
	if !ok {
		return nil, false
	}

	row, err := dbal.NormalizeRow(s.registry, definition, raw)
	if err != nil {
		s.logWarn(logMsgDecodeFailed, err)
		return nil, false
	}

	return row, true
}

func (s *Store) save(ctx context.Context, key string, doc document, language string, row entity.Row) {
	if doc == nil {
		doc = document{}
	}

	doc[language] = row

	encoded, err := jsoniter.MarshalToString(doc)
	if err != nil {
		s.logWarn(logMsgWriteFailed, err)
		return
	}

	if err = s.client.Set(ctx, key, encoded, s.ttl).Err(); err != nil {
		s.logWarn(logMsgWriteFailed, err)
	}
}

func (s *Store) count(metric, entityName string, n int) {
	if s.metricsCollector == nil {
		return
	}

	for range n {
		s.metricsCollector.IncrementCounter(metric, map[string]string{labelEntity: entityName})
	}
}

func (s *Store) logWarn(message string, err error) {
	if s.logger != nil {
		s.logger.Warn(message, logAttrError, err.Error())
	}
}
