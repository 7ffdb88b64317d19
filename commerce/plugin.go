package commerce

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
)

// PluginSearchResultLoaded is the name of PluginSearchResultLoadedEvent.
const PluginSearchResultLoaded = "plugin.search.result.loaded"

// PluginDefinition declares the plugin entity.
func PluginDefinition() *entity.Definition {
	return entity.MustNewDefinition(PluginEntity, []entity.Field{
		entity.NewIDField("id", "id", entity.PrimaryKey, entity.Required),
		entity.NewStringField("name", "name", entity.Required, entity.Searchable),
		entity.NewStringField("label", "label", entity.Required, entity.Searchable),
		entity.NewStringField("version", "version", entity.Required),
		entity.NewStringField("author", "author"),
		entity.NewBoolField("active", "active"),
		entity.NewJSONField("changes", "changes"),
		entity.NewDateField("installed_at", "installedAt"),
		entity.NewDateField("updated_at", "updatedAt"),
	})
}

// PluginBasic is a plugin as read in basic reads.
type PluginBasic struct {
	ID          uuid.UUID      `entity:"id"`
	Name        string         `entity:"name"`
	Label       string         `entity:"label"`
	Version     string         `entity:"version"`
	Author      string         `entity:"author"`
	Active      bool           `entity:"active"`
	Changes     map[string]any `entity:"changes"`
	InstalledAt time.Time      `entity:"installedAt"`
	UpdatedAt   time.Time      `entity:"updatedAt"`
}

// EntityID implements entity.Identifiable.
func (p PluginBasic) EntityID() uuid.UUID { return p.ID }

// PluginSearchResultLoadedEvent is fired after a plugin search.
type PluginSearchResultLoadedEvent struct {
	result entity.SearchResult[PluginBasic]
}

// NewPluginSearchResultLoadedEvent creates a PluginSearchResultLoadedEvent.
func NewPluginSearchResultLoadedEvent(result entity.SearchResult[PluginBasic]) PluginSearchResultLoadedEvent {
	return PluginSearchResultLoadedEvent{result: result}
}

// Name implements entity.NestedEvent.
func (e PluginSearchResultLoadedEvent) Name() string { return PluginSearchResultLoaded }

// Context implements entity.NestedEvent.
func (e PluginSearchResultLoadedEvent) Context() entity.ShopContext { return e.result.Context() }

// Events implements entity.NestedEvent. The plugins fire their own basic loaded event.
func (e PluginSearchResultLoadedEvent) Events() entity.NestedEvents { return entity.NestedEvents{} }

// Result returns the search result.
func (e PluginSearchResultLoadedEvent) Result() entity.SearchResult[PluginBasic] { return e.result }
