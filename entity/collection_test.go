package entity_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
)

type testItem struct {
	ID   uuid.UUID
	Name string
}

func (i testItem) EntityID() uuid.UUID { return i.ID }

func Test_Collection(t *testing.T) {
	a := testItem{ID: uuid.New(), Name: "a"}
	b := testItem{ID: uuid.New(), Name: "b"}
	c := testItem{ID: uuid.New(), Name: "c"}

	collection := entity.NewCollection(a, b, a)

	assert.Equal(t, 2, collection.Count())
	assert.Equal(t, []uuid.UUID{a.ID, b.ID}, collection.IDs())
	assert.True(t, collection.Has(b.ID))
	assert.False(t, collection.Has(c.ID))

	got, ok := collection.Get(a.ID)
	assert.True(t, ok)
	assert.Equal(t, "a", got.Name)

	renamed := testItem{ID: a.ID, Name: "renamed"}
	collection.Add(renamed)
	got, _ = collection.Get(a.ID)
	assert.Equal(t, "renamed", got.Name)
	assert.Equal(t, 2, collection.Count())

	filtered := collection.Filter(func(i testItem) bool { return i.Name == "b" })
	assert.Equal(t, []uuid.UUID{b.ID}, filtered.IDs())

	merged := filtered.Merge(entity.NewCollection(c, b))
	assert.Equal(t, []uuid.UUID{b.ID, c.ID}, merged.IDs())

	sorted := merged.SortedBy([]uuid.UUID{c.ID, uuid.New(), b.ID})
	assert.Equal(t, []uuid.UUID{c.ID, b.ID}, sorted.IDs())

	names := entity.MapCollection(sorted, func(i testItem) string { return i.Name })
	assert.Equal(t, []string{"c", "b"}, names)
}

func Test_Collection_ZeroValue(t *testing.T) {
	var collection entity.Collection[testItem]

	assert.Equal(t, 0, collection.Count())
	assert.Empty(t, collection.IDs())
	assert.False(t, collection.Has(uuid.New()))

	collection.Add(testItem{ID: uuid.New()})
	assert.Equal(t, 1, collection.Count())
}

func Test_Dispatcher_DeliversNestedEventsDepthFirst(t *testing.T) {
	child := entity.NewCollection(testItem{ID: uuid.New()})
	parent := entity.NewCollection(testItem{ID: uuid.New()})

	event := entity.NewLoadedEvent("tax.basic.loaded", parent, entity.DefaultShopContext(),
		func(_ entity.Collection[testItem], sc entity.ShopContext) entity.NestedEvents {
			return entity.NestedEvents{
				entity.NewLoadedEvent("tax_area_rule.basic.loaded", child, sc, nil),
			}
		},
	)

	dispatcher := entity.NewDispatcher()

	var received []string

	dispatcher.SubscribeAll(func(_ context.Context, e entity.NestedEvent) error {
		received = append(received, e.Name())
		return nil
	})

	var childCount int

	dispatcher.Subscribe("tax_area_rule.basic.loaded", func(_ context.Context, e entity.NestedEvent) error {
		loaded, ok := e.(entity.LoadedEvent[testItem])
		if ok {
			childCount = loaded.Collection().Count()
		}
		return nil
	})

	err := dispatcher.Dispatch(context.Background(), event)

	assert.NoError(t, err)
	assert.Equal(t, []string{"tax.basic.loaded", "tax_area_rule.basic.loaded"}, received)
	assert.Equal(t, 1, childCount)
}

func Test_Dispatcher_JoinsListenerErrors(t *testing.T) {
	dispatcher := entity.NewDispatcher()
	errFirst := assert.AnError

	var calls int

	dispatcher.Subscribe("tax.written", func(context.Context, entity.NestedEvent) error {
		calls++
		return errFirst
	})
	dispatcher.Subscribe("tax.written", func(context.Context, entity.NestedEvent) error {
		calls++
		return nil
	})

	event := entity.NewWrittenEvent("tax", nil, entity.DefaultShopContext())
	err := dispatcher.Dispatch(context.Background(), event)

	assert.ErrorIs(t, err, errFirst)
	assert.ErrorContains(t, err, "tax.written")
	assert.Equal(t, 2, calls)
	assert.NoError(t, dispatcher.Dispatch(context.Background(), nil))
}

func Test_WrittenEvent(t *testing.T) {
	id := uuid.New()
	sc := entity.DefaultShopContext()

	event := entity.NewWrittenEvent("tax", []entity.PrimaryKeyValues{{"id": id}, {"id": 42}}, sc, nil)
	event.AddEvent(nil, entity.NewWrittenEvent("tax_area_rule", nil, sc))

	assert.Equal(t, "tax.written", event.Name())
	assert.Equal(t, "tax", event.EntityName())
	assert.Equal(t, []uuid.UUID{id}, event.IDs())
	assert.False(t, event.HasErrors())
	assert.Equal(t, []string{"tax_area_rule.written"}, event.Events().Names())
	assert.Equal(t, []string{"tax.written", "tax_area_rule.written"}, entity.NestedEvents{event}.Flatten().Names())

	deleted := entity.NewDeletedEvent("tax", nil, sc, assert.AnError)
	assert.Equal(t, "tax.deleted", deleted.Name())
	assert.True(t, deleted.HasErrors())
	assert.Empty(t, deleted.PrimaryKeys())
}

func Test_ConsistencyAndShopContext(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, entity.StrongConsistency, entity.GetConsistencyLevel(ctx))
	assert.Equal(t, entity.EventualConsistency, entity.GetConsistencyLevel(entity.WithEventualConsistency(ctx)))
	assert.Equal(t, "eventual", entity.EventualConsistency.String())
	assert.Equal(t, "unknown", entity.ConsistencyLevel(9).String())

	assert.Equal(t, entity.DefaultShopContext(), entity.ShopContextFrom(ctx))
	assert.False(t, entity.DefaultShopContext().HasFallbackLanguage())

	sc := entity.DefaultShopContext()
	sc.LanguageID = uuid.New()
	assert.True(t, sc.HasFallbackLanguage())
	assert.Equal(t, sc, entity.ShopContextFrom(entity.WithShopContext(ctx, sc)))
}
