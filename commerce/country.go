package commerce

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
)

// CountryTranslationIDSearchResultLoaded is the name of CountryTranslationIDSearchResultLoadedEvent.
const CountryTranslationIDSearchResultLoaded = "country_translation.id.search.result.loaded"

// CountryDefinition declares the country entity. The name is translated.
func CountryDefinition() *entity.Definition {
	return entity.MustNewDefinition(CountryEntity, []entity.Field{
		entity.NewIDField("id", "id", entity.PrimaryKey, entity.Required),
		entity.NewStringField("iso", "iso", entity.Required, entity.Searchable),
		entity.NewStringField("iso3", "iso3"),
		entity.NewTranslatedField("name", entity.Required, entity.Searchable),
		entity.NewBoolField("active", "active"),
		entity.NewIntField("position", "position"),
		entity.NewBoolField("tax_free", "taxFree"),
		entity.NewDateField("created_at", "createdAt"),
		entity.NewDateField("updated_at", "updatedAt"),
	}, entity.WithTranslationDefinition(CountryTranslationEntity))
}

// CountryTranslationDefinition declares the translated columns of countries.
func CountryTranslationDefinition() *entity.Definition {
	return entity.MustNewDefinition(CountryTranslationEntity, []entity.Field{
		entity.NewFkField("country_id", "countryId", CountryEntity, entity.PrimaryKey, entity.Required),
		entity.NewIDField("language_id", "languageId", entity.PrimaryKey, entity.Required),
		entity.NewStringField("name", "name", entity.Required, entity.Searchable),
	}, entity.WithParentDefinition(CountryEntity))
}

// CountryBasic is a country with its name in the language of the shop context.
type CountryBasic struct {
	ID        uuid.UUID `entity:"id"`
	ISO       string    `entity:"iso"`
	ISO3      string    `entity:"iso3"`
	Name      string    `entity:"name"`
	Active    bool      `entity:"active"`
	Position  int       `entity:"position"`
	TaxFree   bool      `entity:"taxFree"`
	CreatedAt time.Time `entity:"createdAt"`
	UpdatedAt time.Time `entity:"updatedAt"`
}

// EntityID implements entity.Identifiable.
func (c CountryBasic) EntityID() uuid.UUID { return c.ID }

// CountryTranslationBasic is the name of a country in one language.
type CountryTranslationBasic struct {
	CountryID  uuid.UUID `entity:"countryId"`
	LanguageID uuid.UUID `entity:"languageId"`
	Name       string    `entity:"name"`
}

// EntityID implements entity.Identifiable. Translations are identified by their country.
func (t CountryTranslationBasic) EntityID() uuid.UUID { return t.CountryID }

// CountryTranslationIDSearchResultLoadedEvent is fired after searching country translations.
// The ids are the ids of the countries with matching translations.
type CountryTranslationIDSearchResultLoadedEvent struct {
	result entity.IDSearchResult
}

// NewCountryTranslationIDSearchResultLoadedEvent creates a CountryTranslationIDSearchResultLoadedEvent.
func NewCountryTranslationIDSearchResultLoadedEvent(result entity.IDSearchResult) CountryTranslationIDSearchResultLoadedEvent {
	return CountryTranslationIDSearchResultLoadedEvent{result: result}
}

// Name implements entity.NestedEvent.
func (e CountryTranslationIDSearchResultLoadedEvent) Name() string {
	return CountryTranslationIDSearchResultLoaded
}

// Context implements entity.NestedEvent, it is the context of the search.
func (e CountryTranslationIDSearchResultLoadedEvent) Context() entity.ShopContext {
	return e.result.Context()
}

// Events implements entity.NestedEvent.
func (e CountryTranslationIDSearchResultLoadedEvent) Events() entity.NestedEvents {
	return entity.NestedEvents{}
}

// Result returns the search result.
func (e CountryTranslationIDSearchResultLoadedEvent) Result() entity.IDSearchResult {
	return e.result
}
