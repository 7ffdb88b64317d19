package dbal_test

import (
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
	"github.com/AntonStoeckl/dynamic-entities-go/entity/dbal"
)

func Test_NormalizeRow_RestoresJSONDecodedRow(t *testing.T) {
	registry := testRegistry(t)

	original := entity.Row{
		"id":     productID1,
		"taxId":  taxID,
		"stock":  int64(7),
		"price":  decimal.RequireFromString("9.99"),
		"active": true,
		"tags":   []any{"red", "sale"},
		"name":   "Shirt",
		"tax":    entity.Row{"id": taxID, "taxRate": decimal.RequireFromString("19"), "name": "standard"},
		"extra":  "kept",
	}

	data, err := jsoniter.Marshal(original)
	require.NoError(t, err)

	var decoded entity.Row
	require.NoError(t, jsoniter.Unmarshal(data, &decoded))

	normalized, err := dbal.NormalizeRow(registry, definitionOf(t, registry, "product"), decoded)
	require.NoError(t, err)

	assert.Equal(t, productID1, normalized["id"])
	assert.Equal(t, taxID, normalized["taxId"])
	assert.Equal(t, int64(7), normalized["stock"])
	assert.True(t, decimal.RequireFromString("9.99").Equal(normalized["price"].(decimal.Decimal)))
	assert.Equal(t, true, normalized["active"])
	assert.Equal(t, []any{"red", "sale"}, normalized["tags"])
	assert.Equal(t, "Shirt", normalized["name"])
	assert.Equal(t, "kept", normalized["extra"])

	tax, ok := normalized["tax"].(entity.Row)
	require.True(t, ok)
	assert.Equal(t, taxID, tax["id"])
	assert.True(t, decimal.NewFromInt(19).Equal(tax["taxRate"].(decimal.Decimal)))
}

func Test_NormalizeRow_Errors(t *testing.T) {
	registry := testRegistry(t)
	product := definitionOf(t, registry, "product")

	_, err := dbal.NormalizeRow(registry, product, entity.Row{"id": "not-a-uuid"})
	assert.ErrorIs(t, err, entity.ErrInvalidUUID)

	_, err = dbal.NormalizeRow(nil, product, entity.Row{"tax": map[string]any{"id": taxID.String()}})
	assert.ErrorIs(t, err, dbal.ErrNilRegistry)

	normalized, err := dbal.NormalizeRow(registry, product, entity.Row{"tax": nil})
	require.NoError(t, err)
	assert.Nil(t, normalized["tax"])
}
