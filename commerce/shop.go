package commerce

import (
	"github.com/google/uuid"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
)

// ShopDefinition declares the shop entity. Sub shops reference their main shop by parent id.
func ShopDefinition() *entity.Definition {
	return entity.MustNewDefinition(ShopEntity, []entity.Field{
		entity.NewIDField("id", "id", entity.PrimaryKey, entity.Required),
		entity.NewFkField("parent_id", "parentId", ShopEntity),
		entity.NewStringField("name", "name", entity.Required, entity.Searchable),
		entity.NewStringField("title", "title"),
		entity.NewIntField("position", "position"),
		entity.NewStringField("host", "host"),
		entity.NewStringField("base_path", "basePath"),
		entity.NewBoolField("is_default", "isDefault"),
		entity.NewBoolField("active", "active"),
	})
}

// ShopBasic is a shop as read in basic reads.
type ShopBasic struct {
	ID        uuid.UUID `entity:"id"`
	ParentID  uuid.UUID `entity:"parentId"`
	Name      string    `entity:"name"`
	Title     string    `entity:"title"`
	Position  int       `entity:"position"`
	Host      string    `entity:"host"`
	BasePath  string    `entity:"basePath"`
	IsDefault bool      `entity:"isDefault"`
	Active    bool      `entity:"active"`
}

// EntityID implements entity.Identifiable.
func (s ShopBasic) EntityID() uuid.UUID { return s.ID }

// IsMain reports whether the shop is a main shop.
func (s ShopBasic) IsMain() bool { return s.ParentID == uuid.Nil }
