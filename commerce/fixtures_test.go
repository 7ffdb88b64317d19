package commerce_test

import (
	"context"
	"maps"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/dynamic-entities-go/commerce"
	"github.com/AntonStoeckl/dynamic-entities-go/entity"
	"github.com/AntonStoeckl/dynamic-entities-go/entity/write"
)

var (
	customerID        = uuid.MustParse("0198a1c4-0000-7000-8000-0000000000c1")
	groupID           = uuid.MustParse("0198a1c4-0000-7000-8000-0000000000c2")
	paymentMethodID   = uuid.MustParse("0198a1c4-0000-7000-8000-0000000000c3")
	shopID            = uuid.MustParse("0198a1c4-0000-7000-8000-0000000000c4")
	billingAddressID  = uuid.MustParse("0198a1c4-0000-7000-8000-0000000000c5")
	shippingAddressID = uuid.MustParse("0198a1c4-0000-7000-8000-0000000000c6")
	orderID           = uuid.MustParse("0198a1c4-0000-7000-8000-0000000000c7")
	countryID         = uuid.MustParse("0198a1c4-0000-7000-8000-0000000000c8")
	taxID             = uuid.MustParse("0198a1c4-0000-7000-8000-0000000000aa")
	productID         = uuid.MustParse("0198a1c4-0000-7000-8000-000000000001")
	areaRuleID        = uuid.MustParse("0198a1c4-0000-7000-8000-0000000000ab")
	pluginID          = uuid.MustParse("0198a1c4-0000-7000-8000-0000000000f1")

	createdAt = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
)

func testRegistry(t *testing.T) *entity.Registry {
	t.Helper()

	registry, err := commerce.NewRegistry()
	require.NoError(t, err)

	return registry
}

// fakeStore serves canned rows per entity and records writes.
type fakeStore struct {
	ids      []uuid.UUID
	rows     map[string]entity.Rows
	children map[string]entity.Rows
	commands []write.Command
	searched []string
	writeErr error
}

func (s *fakeStore) SearchIDs(_ context.Context, definition *entity.Definition, criteria *entity.Criteria) (entity.IDSearchResult, error) {
	s.searched = append(s.searched, definition.Name())

	return entity.NewIDSearchResult(s.ids, nil, len(s.ids), criteria, entity.DefaultShopContext()), nil
}

func (s *fakeStore) ReadRows(_ context.Context, definition *entity.Definition, ids []uuid.UUID) (entity.Rows, error) {
	rows := make(entity.Rows, 0, len(ids))

	for _, id := range ids {
		for _, row := range s.rows[definition.Name()] {
			if row["id"] == id {
				rows = append(rows, maps.Clone(row))
			}
		}
	}

	return rows, nil
}

func (s *fakeStore) ReadRowsByForeignKey(_ context.Context, definition *entity.Definition, _ string, _ []uuid.UUID) (entity.Rows, error) {
	rows := make(entity.Rows, 0, len(s.children[definition.Name()]))
	for _, row := range s.children[definition.Name()] {
		rows = append(rows, maps.Clone(row))
	}

	return rows, nil
}

func (s *fakeStore) Write(_ context.Context, commands []write.Command) (map[string][]entity.PrimaryKeyValues, error) {
	if s.writeErr != nil {
		return nil, s.writeErr
	}

	s.commands = append(s.commands, commands...)
	written := make(map[string][]entity.PrimaryKeyValues)

	for _, command := range commands {
		written[command.EntityName] = append(written[command.EntityName], command.PrimaryKey)
	}

	return written, nil
}

func (s *fakeStore) Delete(_ context.Context, _ *entity.Definition, primaryKeys []entity.PrimaryKeyValues) (int64, error) {
	return int64(len(primaryKeys)), nil
}

type eventRecorder struct {
	names  []string
	events []entity.NestedEvent
}

func newDispatcher(recorder *eventRecorder) *entity.Dispatcher {
	dispatcher := entity.NewDispatcher()
	dispatcher.SubscribeAll(func(_ context.Context, event entity.NestedEvent) error {
		recorder.names = append(recorder.names, event.Name())
		recorder.events = append(recorder.events, event)

		return nil
	})

	return dispatcher
}

func paymentMethodRow() entity.Row {
	return entity.Row{
		"id":            paymentMethodID,
		"technicalName": "prepayment",
		"name":          "Prepayment",
		"surcharge":     decimal.RequireFromString("2.50"),
		"position":      int64(1),
		"active":        true,
	}
}

func shopRow() entity.Row {
	return entity.Row{"id": shopID, "parentId": nil, "name": "Main shop", "host": "shop.test", "isDefault": true, "active": true}
}

func addressRow(id uuid.UUID, street string) entity.Row {
	return entity.Row{
		"id":         id,
		"customerId": customerID,
		"countryId":  countryID,
		"firstName":  "Ada",
		"lastName":   "Lovelace",
		"street":     street,
		"zipcode":    "48624",
		"city":       "Schöppingen",
	}
}

// customerRow is a customer as read with its basic associations. The last payment method and
// the default shipping address are not set.
func customerRow() entity.Row {
	return entity.Row{
		"id":                       customerID,
		"customerNumber":           "20001",
		"groupId":                  groupID,
		"defaultPaymentMethodId":   paymentMethodID,
		"lastPaymentMethodId":      nil,
		"shopId":                   shopID,
		"mainShopId":               shopID,
		"defaultBillingAddressId":  billingAddressID,
		"defaultShippingAddressId": nil,
		"firstName":                "Ada",
		"lastName":                 "Lovelace",
		"email":                    "ada@example.com",
		"active":                   true,
		"guest":                    false,
		"createdAt":                createdAt,
		"group": entity.Row{
			"id":                 groupID,
			"name":               "Shop customers",
			"displayGross":       true,
			"minimumOrderAmount": decimal.RequireFromString("10"),
		},
		"defaultPaymentMethod":   paymentMethodRow(),
		"lastPaymentMethod":      nil,
		"shop":                   shopRow(),
		"mainShop":               shopRow(),
		"defaultBillingAddress":  addressRow(billingAddressID, "Ebbinghoff 10"),
		"defaultShippingAddress": nil,
	}
}

func orderRow() entity.Row {
	return entity.Row{
		"id":              orderID,
		"orderNumber":     "SW10001",
		"customerId":      customerID,
		"paymentMethodId": paymentMethodID,
		"shopId":          shopID,
		"amountTotal":     decimal.RequireFromString("119.00"),
		"amountNet":       decimal.RequireFromString("100.00"),
		"status":          int64(0),
		"orderedAt":       createdAt,
		"paymentMethod":   paymentMethodRow(),
	}
}

func taxRow() entity.Row {
	return entity.Row{"id": taxID, "taxRate": decimal.RequireFromString("19"), "name": "standard"}
}
