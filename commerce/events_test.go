package commerce_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/dynamic-entities-go/commerce"
	"github.com/AntonStoeckl/dynamic-entities-go/entity"
	"github.com/AntonStoeckl/dynamic-entities-go/entity/hydrator"
)

func hydrateCustomerDetail(t *testing.T, row entity.Row) commerce.CustomerDetail {
	t.Helper()

	customer, err := hydrator.Hydrate[commerce.CustomerDetail](row)
	require.NoError(t, err)

	return customer
}

func Test_Hydrate_CustomerDetail(t *testing.T) {
	row := customerRow()
	row["addresses"] = entity.Rows{addressRow(billingAddressID, "Ebbinghoff 10"), addressRow(shippingAddressID, "Hauptstraße 1")}
	row["orders"] = entity.Rows{orderRow()}

	customer := hydrateCustomerDetail(t, row)

	assert.Equal(t, customerID, customer.ID)
	assert.Equal(t, "ada@example.com", customer.Email)
	assert.Equal(t, createdAt, customer.CreatedAt)
	assert.Equal(t, uuid.Nil, customer.LastPaymentMethodID)

	require.NotNil(t, customer.Group)
	assert.Equal(t, "Shop customers", customer.Group.Name)
	require.NotNil(t, customer.DefaultPaymentMethod)
	assert.Equal(t, "2.5", customer.DefaultPaymentMethod.Surcharge.String())
	require.NotNil(t, customer.MainShop)
	assert.True(t, customer.MainShop.IsMain())
	assert.Nil(t, customer.LastPaymentMethod)
	assert.Nil(t, customer.DefaultShippingAddress)

	assert.Equal(t, []uuid.UUID{billingAddressID, shippingAddressID}, customer.Addresses.IDs())

	order, ok := customer.Orders.Get(orderID)
	require.True(t, ok)
	assert.Equal(t, "119", order.AmountTotal.String())
	require.NotNil(t, order.PaymentMethod)
	assert.Equal(t, "prepayment", order.PaymentMethod.TechnicalName)
}

//nolint:funlen
func Test_CustomerDetailLoadedEvent_Events(t *testing.T) {
	shopContext := entity.DefaultShopContext()

	full := customerRow()
	full["lastPaymentMethod"] = paymentMethodRow()
	full["defaultShippingAddress"] = addressRow(shippingAddressID, "Hauptstraße 1")
	full["addresses"] = entity.Rows{addressRow(billingAddressID, "Ebbinghoff 10")}
	full["orders"] = entity.Rows{orderRow()}

	bare := entity.Row{
		"id":                   customerID,
		"email":                "ada@example.com",
		"group":                nil,
		"defaultPaymentMethod": nil,
		"shop":                 nil,
		"mainShop":             nil,
		"addresses":            entity.Rows{},
		"orders":               entity.Rows{},
	}

	withoutOptional := customerRow()
	withoutOptional["addresses"] = entity.Rows{}
	withoutOptional["orders"] = entity.Rows{}

	tests := []struct {
		name     string
		row      entity.Row
		expected []string
		flat     []string
	}{
		{
			name: "all_associations_loaded",
			row:  full,
			expected: []string{
				"customer_group.basic.loaded",
				"payment_method.basic.loaded",
				"shop.basic.loaded",
				"shop.basic.loaded",
				"payment_method.basic.loaded",
				"customer_address.basic.loaded",
				"customer_address.basic.loaded",
				"customer_address.basic.loaded",
				"order.basic.loaded",
			},
			flat: []string{
				"customer.detail.loaded",
				"customer_group.basic.loaded",
				"payment_method.basic.loaded",
				"shop.basic.loaded",
				"shop.basic.loaded",
				"payment_method.basic.loaded",
				"customer_address.basic.loaded",
				"customer_address.basic.loaded",
				"customer_address.basic.loaded",
				"order.basic.loaded",
				"payment_method.basic.loaded",
			},
		},
		{
			name: "empty_associations_are_skipped",
			row:  withoutOptional,
			expected: []string{
				"customer_group.basic.loaded",
				"payment_method.basic.loaded",
				"shop.basic.loaded",
				"shop.basic.loaded",
				"customer_address.basic.loaded",
			},
		},
		{
			name:     "nothing_loaded",
			row:      bare,
			expected: []string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			customer := hydrateCustomerDetail(t, tc.row)
			event := commerce.NewCustomerDetailLoadedEvent(entity.NewCollection(customer), shopContext)

			assert.Equal(t, commerce.CustomerDetailLoaded, event.Name())
			assert.Equal(t, shopContext, event.Context())
			assert.Equal(t, 1, event.Customers().Count())
			assert.Equal(t, tc.expected, event.Events().Names())

			if tc.flat != nil {
				assert.Equal(t, tc.flat, entity.NestedEvents{event}.Flatten().Names())
			}
		})
	}
}

func Test_CustomerBasicNested_DeduplicatesAssociations(t *testing.T) {
	first, err := hydrator.Hydrate[commerce.CustomerBasic](customerRow())
	require.NoError(t, err)

	secondRow := customerRow()
	secondRow["id"] = uuid.MustParse("0198a1c4-0000-7000-8000-0000000000d1")
	second, err := hydrator.Hydrate[commerce.CustomerBasic](secondRow)
	require.NoError(t, err)

	events := commerce.CustomerBasicNested(entity.NewCollection(first, second), entity.DefaultShopContext())
	require.NotEmpty(t, events)

	groups, ok := events[0].(entity.LoadedEvent[commerce.CustomerGroupBasic])
	require.True(t, ok)
	assert.Equal(t, []uuid.UUID{groupID}, groups.Collection().IDs())
}

func Test_TaxDetailNested(t *testing.T) {
	shopContext := entity.DefaultShopContext()

	tests := []struct {
		name     string
		detail   commerce.TaxDetail
		expected []string
	}{
		{
			name:     "without_children",
			detail:   commerce.NewTaxDetail(commerce.TaxBasic{ID: taxID, Name: "standard"}),
			expected: []string{},
		},
		{
			name: "products_and_area_rules",
			detail: commerce.TaxDetail{
				TaxBasic: commerce.TaxBasic{ID: taxID},
				Products: entity.NewCollection(commerce.ProductBasic{
					ID:  productID,
					Tax: &commerce.TaxBasic{ID: taxID},
				}),
				AreaRules: entity.NewCollection(commerce.TaxAreaRuleBasic{ID: areaRuleID, TaxID: taxID}),
			},
			expected: []string{"product.basic.loaded", "tax.basic.loaded", "tax_area_rule.basic.loaded"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			events := commerce.TaxDetailNested(entity.NewCollection(tc.detail), shopContext)

			assert.Equal(t, tc.expected, events.Flatten().Names())
		})
	}
}

func Test_NewTaxDetail_HasEmptyCollections(t *testing.T) {
	detail := commerce.NewTaxDetail(commerce.TaxBasic{ID: taxID})

	assert.Equal(t, taxID, detail.EntityID())
	assert.Zero(t, detail.Products.Count())
	assert.Zero(t, detail.AreaRules.Count())
	assert.Empty(t, detail.Products.IDs())
}

func Test_ShippingMethodDetailNested(t *testing.T) {
	detail := commerce.ShippingMethodDetail{
		ShippingMethodBasic: commerce.ShippingMethodBasic{ID: uuid.New(), Name: "Standard"},
		Prices: entity.NewCollection(
			commerce.ShippingMethodPriceBasic{ID: uuid.New(), QuantityFrom: 1, Price: 3.9, Factor: 0},
			commerce.ShippingMethodPriceBasic{ID: uuid.New(), QuantityFrom: 10, Price: 0, Factor: 0},
		),
	}

	events := commerce.ShippingMethodDetailNested(entity.NewCollection(detail), entity.DefaultShopContext())
	require.Len(t, events, 1)

	prices, ok := events[0].(entity.LoadedEvent[commerce.ShippingMethodPriceBasic])
	require.True(t, ok)
	assert.Equal(t, "shipping_method_price.basic.loaded", prices.Name())
	assert.Equal(t, 2, prices.Collection().Count())
}
