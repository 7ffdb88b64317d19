package dbal_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
	"github.com/AntonStoeckl/dynamic-entities-go/entity/dbal"
)

//nolint:funlen
func Test_SQLQueryParser_Parse_Postgres(t *testing.T) {
	registry := testRegistry(t)
	product := definitionOf(t, registry, "product")
	parser := dbal.NewSQLQueryParser(registry, dbal.DialectPostgres)

	tests := []struct {
		name          string
		query         entity.Query
		expectedSQL   string
		expectedArgs  []any
		expectedJoins []string
	}{
		{
			name:         "term",
			query:        entity.Term("stock", 5),
			expectedSQL:  `("product"."stock" = $1)`,
			expectedArgs: []any{int64(5)},
		},
		{
			name:         "term with entity prefix",
			query:        entity.Term("product.stock", 5),
			expectedSQL:  `("product"."stock" = $1)`,
			expectedArgs: []any{int64(5)},
		},
		{
			name:        "term with nil value",
			query:       entity.Term("stock", nil),
			expectedSQL: `("product"."stock" IS NULL)`,
		},
		{
			name:         "term on id binds the uuid",
			query:        entity.Term("id", productID1.String()),
			expectedSQL:  `("product"."id" = $1)`,
			expectedArgs: []any{productID1.String()},
		},
		{
			name:         "terms",
			query:        entity.Terms("stock", 1, 2),
			expectedSQL:  `("product"."stock" IN ($1, $2))`,
			expectedArgs: []any{int64(1), int64(2)},
		},
		{
			name:        "terms without values match nothing",
			query:       entity.Terms("stock"),
			expectedSQL: `1 = 0`,
		},
		{
			name:         "match",
			query:        entity.Match("ean", "abc"),
			expectedSQL:  `("product"."ean" ILIKE $1)`,
			expectedArgs: []any{"%abc%"},
		},
		{
			name:         "range with both bounds",
			query:        entity.Range("stock", entity.RangeParams{entity.GTE: 10, entity.LT: 20}),
			expectedSQL:  `(("product"."stock" >= $1) AND ("product"."stock" < $2))`,
			expectedArgs: []any{int64(10), int64(20)},
		},
		{
			name:         "range with lower bound",
			query:        entity.Range("stock", entity.RangeParams{entity.GT: 10}),
			expectedSQL:  `("product"."stock" > $1)`,
			expectedArgs: []any{int64(10)},
		},
		{
			name:         "range prefers exclusive bounds",
			query:        entity.Range("stock", entity.RangeParams{entity.GT: 10, entity.GTE: 5, entity.LT: 20, entity.LTE: 30}),
			expectedSQL:  `(("product"."stock" > $1) AND ("product"."stock" < $2))`,
			expectedArgs: []any{int64(10), int64(20)},
		},
		{
			name:         "range with upper bound",
			query:        entity.Range("stock", entity.RangeParams{entity.LTE: 30}),
			expectedSQL:  `("product"."stock" <= $1)`,
			expectedArgs: []any{int64(30)},
		},
		{
			name:        "empty nested produces nothing",
			query:       entity.Nested(entity.OperatorAnd),
			expectedSQL: ``,
		},
		{
			name:        "nested of empty children produces nothing",
			query:       entity.Or(entity.And(), entity.Not(entity.OperatorOr)),
			expectedSQL: ``,
		},
		{
			name:         "nested or",
			query:        entity.Or(entity.Term("stock", 1), entity.Term("ean", "x")),
			expectedSQL:  `(("product"."stock" = $1) OR ("product"."ean" = $2))`,
			expectedArgs: []any{int64(1), "x"},
		},
		{
			name:         "not",
			query:        entity.Not(entity.OperatorAnd, entity.Term("stock", 0)),
			expectedSQL:  `NOT ("product"."stock" = $1)`,
			expectedArgs: []any{int64(0)},
		},
		{
			name:         "not wraps or-ed children",
			query:        entity.Not(entity.OperatorOr, entity.Term("stock", 1), entity.Term("ean", "x")),
			expectedSQL:  `NOT (("product"."stock" = $1) OR ("product"."ean" = $2))`,
			expectedArgs: []any{int64(1), "x"},
		},
		{
			name:        "empty not produces nothing",
			query:       entity.Not(entity.OperatorAnd),
			expectedSQL: ``,
		},
		{
			name:         "term on array field",
			query:        entity.Term("tags", "red"),
			expectedSQL:  `"product"."tags" @> $1::jsonb`,
			expectedArgs: []any{`["red"]`},
		},
		{
			name:         "terms on array field",
			query:        entity.Terms("tags", "red", "blue"),
			expectedSQL:  `"product"."tags" @> $1::jsonb`,
			expectedArgs: []any{`["red","blue"]`},
		},
		{
			name:          "association path",
			query:         entity.Term("tax.taxRate", 19),
			expectedSQL:   `("product.tax"."tax_rate" = $1)`,
			expectedArgs:  []any{int64(19)},
			expectedJoins: []string{"product.tax"},
		},
		{
			name:          "translated field",
			query:         entity.Match("name", "shirt"),
			expectedSQL:   `("product.translation"."name" ILIKE $1)`,
			expectedArgs:  []any{"%shirt%"},
			expectedJoins: []string{"product.translation"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := parser.Parse(tc.query, product, entity.DefaultShopContext())
			require.NoError(t, err)

			sql, args, err := result.ToSQL(dbal.DialectPostgres)
			require.NoError(t, err)

			assert.Equal(t, tc.expectedSQL, sql)

			if tc.expectedArgs == nil {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tc.expectedArgs, args)
			}

			aliases := make([]string, 0, len(result.Joins()))
			for _, join := range result.Joins() {
				aliases = append(aliases, join.Alias)
			}

			if tc.expectedJoins == nil {
				assert.Empty(t, aliases)
			} else {
				assert.Equal(t, tc.expectedJoins, aliases)
			}
		})
	}
}

func Test_SQLQueryParser_Parse_MySQL(t *testing.T) {
	registry := testRegistry(t)
	product := definitionOf(t, registry, "product")
	parser := dbal.NewSQLQueryParser(registry, dbal.DialectMySQL)

	tests := []struct {
		name         string
		query        entity.Query
		expectedSQL  string
		expectedArgs []any
	}{
		{
			name:         "term",
			query:        entity.Term("stock", 5),
			expectedSQL:  "(`product`.`stock` = ?)",
			expectedArgs: []any{int64(5)},
		},
		{
			name:         "term on id binds the uuid bytes",
			query:        entity.Term("id", productID1),
			expectedSQL:  "(`product`.`id` = ?)",
			expectedArgs: []any{productID1[:]},
		},
		{
			name:         "terms on id bind the uuid bytes",
			query:        entity.Terms("id", productID1, productID2.String()),
			expectedSQL:  "(`product`.`id` IN (?, ?))",
			expectedArgs: []any{productID1[:], productID2[:]},
		},
		{
			name:         "match is case insensitive",
			query:        entity.Match("ean", "abc"),
			expectedSQL:  "(`product`.`ean` LIKE ?)",
			expectedArgs: []any{"%abc%"},
		},
		{
			name:         "term on array field",
			query:        entity.Term("tags", "red"),
			expectedSQL:  "JSON_CONTAINS(`product`.`tags`, ?)",
			expectedArgs: []any{`["red"]`},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := parser.Parse(tc.query, product, entity.DefaultShopContext())
			require.NoError(t, err)

			sql, args, err := result.ToSQL(dbal.DialectMySQL)
			require.NoError(t, err)

			assert.Equal(t, tc.expectedSQL, sql)
			assert.Equal(t, tc.expectedArgs, args)
		})
	}
}

func Test_SQLQueryParser_Parse_Errors(t *testing.T) {
	registry := testRegistry(t)
	product := definitionOf(t, registry, "product")
	tax := definitionOf(t, registry, "tax")
	parser := dbal.NewSQLQueryParser(registry, dbal.DialectPostgres)

	tests := []struct {
		name        string
		definition  *entity.Definition
		query       entity.Query
		expectedErr error
	}{
		{
			name:        "unknown field",
			definition:  product,
			query:       entity.Term("unknown", 1),
			expectedErr: entity.ErrUnknownField,
		},
		{
			name:        "unknown field behind association",
			definition:  product,
			query:       entity.Term("tax.unknown", 1),
			expectedErr: entity.ErrUnknownField,
		},
		{
			name:        "to-many association has no column",
			definition:  tax,
			query:       entity.Term("products", 1),
			expectedErr: entity.ErrUnknownField,
		},
		{
			name:        "invalid uuid",
			definition:  product,
			query:       entity.Term("taxId", "not-a-uuid"),
			expectedErr: entity.ErrInvalidUUID,
		},
		{
			name:        "range without bounds",
			definition:  product,
			query:       entity.Range("stock", entity.RangeParams{}),
			expectedErr: entity.ErrInvalidRangeQuery,
		},
		{
			name:        "score query is no filter",
			definition:  product,
			query:       entity.Score(entity.Term("stock", 1), 10),
			expectedErr: entity.ErrUnsupportedQuery,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parser.Parse(tc.query, tc.definition, entity.DefaultShopContext())

			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func Test_SQLQueryParser_ParseAll(t *testing.T) {
	registry := testRegistry(t)
	product := definitionOf(t, registry, "product")
	parser := dbal.NewSQLQueryParser(registry, dbal.DialectPostgres)

	result, err := parser.ParseAll(
		[]entity.Query{entity.Term("stock", 1), entity.Term("tax.name", "standard")},
		product,
		entity.DefaultShopContext(),
	)
	require.NoError(t, err)

	sql, args, err := result.ToSQL(dbal.DialectPostgres)
	require.NoError(t, err)

	assert.Equal(t, `(("product"."stock" = $1) AND ("product.tax"."name" = $2))`, sql)
	assert.Equal(t, []any{int64(1), "standard"}, args)
	require.Len(t, result.Joins(), 1)
	assert.Equal(t, "tax", result.Joins()[0].Table)
}

func Test_SQLQueryParser_TranslatedFieldWithFallback(t *testing.T) {
	registry := testRegistry(t)
	product := definitionOf(t, registry, "product")
	parser := dbal.NewSQLQueryParser(registry, dbal.DialectPostgres)

	shopContext := entity.DefaultShopContext()
	shopContext.LanguageID = germanID

	result, err := parser.Parse(entity.Term("name", "Hemd"), product, shopContext)
	require.NoError(t, err)

	sql, args, err := result.ToSQL(dbal.DialectPostgres)
	require.NoError(t, err)

	assert.Equal(t, `(COALESCE("product.translation"."name", "product.translation.fallback"."name") = $1)`, sql)
	assert.Equal(t, []any{"Hemd"}, args)

	require.Len(t, result.Joins(), 2)
	assert.Equal(t, "product.translation", result.Joins()[0].Alias)
	assert.Equal(t, "product.translation.fallback", result.Joins()[1].Alias)
	assert.Equal(t, "product_translation", result.Joins()[1].Table)
}

func Test_SQLQueryParser_ParseRanking(t *testing.T) {
	registry := testRegistry(t)
	product := definitionOf(t, registry, "product")
	parser := dbal.NewSQLQueryParser(registry, dbal.DialectPostgres)

	t.Run("score", func(t *testing.T) {
		result, err := parser.ParseRanking(
			[]entity.ScoreQuery{entity.Score(entity.Term("stock", 5), 100)},
			product,
			entity.DefaultShopContext(),
		)
		require.NoError(t, err)

		sql, args, err := result.ToSQL(dbal.DialectPostgres)
		require.NoError(t, err)

		assert.Equal(t, `CASE  WHEN ("product"."stock" = $1) THEN 100 ELSE 0 END`, sql)
		assert.Equal(t, []any{int64(5)}, args)
		assert.NotNil(t, result.Score())
	})

	t.Run("score multiplied by field", func(t *testing.T) {
		result, err := parser.ParseRanking(
			[]entity.ScoreQuery{entity.ScoreByField(entity.Match("ean", "x"), 2.5, "stock")},
			product,
			entity.DefaultShopContext(),
		)
		require.NoError(t, err)

		sql, _, err := result.ToSQL(dbal.DialectPostgres)
		require.NoError(t, err)

		assert.Equal(t, `CASE  WHEN ("product"."ean" ILIKE $1) THEN 2.5 * "product"."stock" ELSE 0 END`, sql)
	})

	t.Run("unknown score field", func(t *testing.T) {
		_, err := parser.ParseRanking(
			[]entity.ScoreQuery{entity.ScoreByField(entity.Term("stock", 1), 1, "unknown")},
			product,
			entity.DefaultShopContext(),
		)

		assert.ErrorIs(t, err, entity.ErrUnknownField)
	})

	t.Run("no queries", func(t *testing.T) {
		result, err := parser.ParseRanking(nil, product, entity.DefaultShopContext())
		require.NoError(t, err)

		assert.True(t, result.IsEmpty())
		assert.Nil(t, result.Score())
	})
}

func Test_ParseDialect(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected dbal.Dialect
	}{
		{name: "postgres", input: "postgres", expected: dbal.DialectPostgres},
		{name: "postgresql alias", input: "PostgreSQL", expected: dbal.DialectPostgres},
		{name: "pgx alias", input: "pgx", expected: dbal.DialectPostgres},
		{name: "mysql", input: "mysql", expected: dbal.DialectMySQL},
		{name: "mariadb alias", input: "mariadb", expected: dbal.DialectMySQL},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dialect, err := dbal.ParseDialect(tc.input)
			require.NoError(t, err)

			assert.Equal(t, tc.expected, dialect)
		})
	}

	_, err := dbal.ParseDialect("oracle")
	assert.ErrorIs(t, err, dbal.ErrUnsupportedDialect)
}

func Test_FieldAccessor_Resolve(t *testing.T) {
	registry := testRegistry(t)
	product := definitionOf(t, registry, "product")
	accessor := dbal.NewFieldAccessor(registry, dbal.DialectPostgres)

	resolved, err := accessor.Resolve(product, "product.tax.name", entity.DefaultShopContext())
	require.NoError(t, err)

	assert.Equal(t, "tax", resolved.Definition.Name())
	assert.Equal(t, "name", resolved.Field.PropertyName())
	assert.Equal(t, "product.tax", resolved.Alias)
	require.Len(t, resolved.Joins, 1)
	assert.Equal(t, dbal.Join{Table: "tax", Alias: "product.tax", On: resolved.Joins[0].On}, resolved.Joins[0])

	_, err = accessor.Resolve(product, " ", entity.DefaultShopContext())
	assert.ErrorIs(t, err, entity.ErrEmptyQueryField)

	_, err = accessor.Resolve(product, "stock.value", entity.DefaultShopContext())
	assert.ErrorIs(t, err, entity.ErrUnknownField)

	_, err = accessor.Resolve(product, "taxId", entity.ShopContext{LanguageID: uuid.Nil})
	assert.NoError(t, err)
}
