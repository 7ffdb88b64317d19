package entity

import (
	"context"

	"github.com/google/uuid"
)

// Well-known ids of the default shop, language and currency.
var (
	DefaultShopID     = uuid.MustParse("ffa32a50-e2d0-4cf3-8389-a53f8d6cd594")
	DefaultLanguageID = uuid.MustParse("20080911-ffff-ffff-ffff-000000000001")
	DefaultCurrencyID = uuid.MustParse("4c8eba11-bd35-46d7-86e6-335d8dc3a3c5")
)

// ShopContext carries the shop, language and currency a read or write is done for.
type ShopContext struct {
	ShopID             uuid.UUID
	LanguageID         uuid.UUID
	FallbackLanguageID uuid.UUID
	CurrencyID         uuid.UUID
	CurrencyFactor     float64
}

// DefaultShopContext returns the context of the default shop.
func DefaultShopContext() ShopContext {
	return ShopContext{
		ShopID:             DefaultShopID,
		LanguageID:         DefaultLanguageID,
		FallbackLanguageID: DefaultLanguageID,
		CurrencyID:         DefaultCurrencyID,
		CurrencyFactor:     1,
	}
}

// HasFallbackLanguage reports whether translations fall back to another language.
func (sc ShopContext) HasFallbackLanguage() bool {
	return sc.FallbackLanguageID != uuid.Nil && sc.FallbackLanguageID != sc.LanguageID
}

const shopContextKey contextKey = "entity.shop_context"

// WithShopContext returns a context carrying the ShopContext.
func WithShopContext(ctx context.Context, sc ShopContext) context.Context {
	return context.WithValue(ctx, shopContextKey, sc)
}

// ShopContextFrom extracts the ShopContext from the context, falling back to DefaultShopContext.
func ShopContextFrom(ctx context.Context) ShopContext {
	if sc, ok := ctx.Value(shopContextKey).(ShopContext); ok {
		return sc
	}

	return DefaultShopContext()
}
