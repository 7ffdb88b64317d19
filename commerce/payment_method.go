package commerce

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
)

// PaymentMethodDefinition declares the payment method entity.
func PaymentMethodDefinition() *entity.Definition {
	return entity.MustNewDefinition(PaymentMethodEntity, []entity.Field{
		entity.NewIDField("id", "id", entity.PrimaryKey, entity.Required),
		entity.NewStringField("technical_name", "technicalName", entity.Required),
		entity.NewStringField("name", "name", entity.Required, entity.Searchable),
		entity.NewStringField("description", "description"),
		entity.NewPriceField("surcharge", "surcharge"),
		entity.NewFloatField("percentage_surcharge", "percentageSurcharge"),
		entity.NewIntField("position", "position"),
		entity.NewBoolField("active", "active"),
	})
}

// PaymentMethodBasic is a payment method as read in basic reads.
type PaymentMethodBasic struct {
	ID                  uuid.UUID       `entity:"id"`
	TechnicalName       string          `entity:"technicalName"`
	Name                string          `entity:"name"`
	Description         string          `entity:"description"`
	Surcharge           decimal.Decimal `entity:"surcharge"`
	PercentageSurcharge float64         `entity:"percentageSurcharge"`
	Position            int             `entity:"position"`
	Active              bool            `entity:"active"`
}

// EntityID implements entity.Identifiable.
func (m PaymentMethodBasic) EntityID() uuid.UUID { return m.ID }
