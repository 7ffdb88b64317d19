package commerce_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/dynamic-entities-go/commerce"
	"github.com/AntonStoeckl/dynamic-entities-go/entity"
	"github.com/AntonStoeckl/dynamic-entities-go/entity/repository"
	"github.com/AntonStoeckl/dynamic-entities-go/testutil/postgres"
)

//nolint:funlen
func Test_Postgres_Taxes_WriteReadSearchDelete(t *testing.T) {
	registry := testRegistry(t)
	wrapper := postgres.CreateWrapper(t, registry)

	recorder := &eventRecorder{}
	repositories, err := commerce.NewRepositories(wrapper.Store(), registry, repository.WithDispatcher(newDispatcher(recorder)))
	require.NoError(t, err)

	ctx := context.Background()
	shirtID := uuid.New()
	ruleID := uuid.New()

	_, err = repositories.Taxes.Upsert(ctx, entity.Row{
		"id":      taxID,
		"taxRate": "19",
		"name":    "standard",
		"products": []any{
			map[string]any{"id": shirtID, "price": "9.99", "name": "Shirt", "stock": 3},
		},
		"areaRules": []any{
			map[string]any{"id": ruleID, "taxRate": "7", "name": "reduced", "active": true},
		},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"tax.written",
		"product.written",
		"product_translation.written",
		"tax_area_rule.written",
	}, recorder.names)

	t.Run("read tax detail with its products and area rules", func(t *testing.T) {
		taxes, readErr := repositories.Taxes.ReadDetail(ctx, taxID)
		require.NoError(t, readErr)

		tax, ok := taxes.Get(taxID)
		require.True(t, ok)
		assert.True(t, decimal.RequireFromString("19").Equal(tax.TaxRate))
		assert.Equal(t, []uuid.UUID{ruleID}, tax.AreaRules.IDs())

		shirt, ok := tax.Products.Get(shirtID)
		require.True(t, ok)
		assert.Equal(t, "Shirt", shirt.Name)
		assert.Equal(t, 3, shirt.Stock)
		require.NotNil(t, shirt.Tax)
		assert.Equal(t, "standard", shirt.Tax.Name)
	})

	t.Run("search products by translated name", func(t *testing.T) {
		criteria := entity.NewCriteria().AddFilter(entity.Match("product.name", "shir"))

		result, searchErr := repositories.Products.Search(ctx, criteria)
		require.NoError(t, searchErr)
		assert.Equal(t, []uuid.UUID{shirtID}, result.IDs())

		criteria = entity.NewCriteria().AddFilter(entity.Term("product.tax.name", "reduced"))

		result, searchErr = repositories.Products.Search(ctx, criteria)
		require.NoError(t, searchErr)
		assert.Empty(t, result.IDs())
	})

	t.Run("delete area rule", func(t *testing.T) {
		event, deleteErr := repositories.TaxAreaRules.Delete(ctx, entity.PrimaryKeyValues{"id": ruleID})
		require.NoError(t, deleteErr)
		assert.Equal(t, "tax_area_rule.deleted", event.Name())

		rules, readErr := repositories.TaxAreaRules.ReadBasic(ctx, ruleID)
		require.NoError(t, readErr)
		assert.Zero(t, rules.Count())
	})
}
