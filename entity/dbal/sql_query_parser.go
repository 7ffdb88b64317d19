package dbal

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
)

const (
	literalNot       = "NOT ?"
	literalMatchNone = "1 = 0"
	literalScoreMul  = "? * ?"
	literalZero      = "0"
)

// SQLQueryParser translates the query AST into goqu predicates with bound parameters.
type SQLQueryParser struct {
	accessor FieldAccessor
	dialect  Dialect
}

// NewSQLQueryParser creates a SQLQueryParser for the dialect.
func NewSQLQueryParser(registry *entity.Registry, dialect Dialect) SQLQueryParser {
	return SQLQueryParser{accessor: NewFieldAccessor(registry, dialect), dialect: dialect}
}

// Parse translates query into predicates on definition.
//
//   - Term: "= ?", "IS NULL" for nil values, JSON containment for array fields
//   - Terms: "IN (?, ...)", JSON containment of all values for array fields
//   - Match: case-insensitive "LIKE %value%"
//   - Range: "> ?" or ">= ?" and "< ?" or "<= ?" combined with AND
//   - Nested: children combined with the operator, nothing for no children
//   - Not: NOT of the children combined with the operator
//
// Values of id and foreign key fields are converted to uuids. Any other query kind is rejected
// with entity.ErrUnsupportedQuery.
func (p SQLQueryParser) Parse(
	query entity.Query,
	definition *entity.Definition,
	shopContext entity.ShopContext,
) (*ParseResult, error) {

	result := NewParseResult()

	switch q := query.(type) {
	case entity.TermQuery:
		return result, p.parseTerm(result, q, definition, shopContext)
	case entity.TermsQuery:
		return result, p.parseTerms(result, q, definition, shopContext)
	case entity.MatchQuery:
		return result, p.parseMatch(result, q, definition, shopContext)
	case entity.RangeQuery:
		return result, p.parseRange(result, q, definition, shopContext)
	case entity.NotQuery:
		return result, p.parseNot(result, q, definition, shopContext)
	case entity.NestedQuery:
		return result, p.parseNested(result, q, definition, shopContext)
	default:
		return nil, errors.Join(entity.ErrUnsupportedQuery, fmt.Errorf("query of type %T", query))
	}
}

// ParseAll translates queries and combines them with AND.
func (p SQLQueryParser) ParseAll(
	queries []entity.Query,
	definition *entity.Definition,
	shopContext entity.ShopContext,
) (*ParseResult, error) {

	result := NewParseResult()

	for _, query := range queries {
		parsed, err := p.Parse(query, definition, shopContext)
		if err != nil {
			return nil, err
		}

		result.Merge(parsed)
	}

	return result, nil
}

// ParseRanking translates scoring queries into one score expression per query:
//
//	CASE WHEN <predicate> THEN <score>[ * <score field>] ELSE 0 END
//
// Use ParseResult.Score to add them up.
func (p SQLQueryParser) ParseRanking(
	queries []entity.ScoreQuery,
	definition *entity.Definition,
	shopContext entity.ShopContext,
) (*ParseResult, error) {

	result := NewParseResult()

	for _, query := range queries {
		parsed, err := p.Parse(query.Query(), definition, shopContext)
		if err != nil {
			return nil, err
		}

		condition := parsed.Expression()
		if condition == nil {
			continue
		}

		result.AddJoin(parsed.Joins()...)

		var score exp.Expression = goqu.L(formatScore(query.Score()))

		if query.ScoreField() != "" {
			resolved, resolveErr := p.accessor.Resolve(definition, query.ScoreField(), shopContext)
			if resolveErr != nil {
				return nil, resolveErr
			}

			result.AddJoin(resolved.Joins...)
			score = goqu.L(literalScoreMul, score, resolved.Column)
		}

		result.AddWhere(goqu.Case().When(condition, score).Else(goqu.L(literalZero)))
	}

	return result, nil
}

func (p SQLQueryParser) parseTerm(
	result *ParseResult,
	query entity.TermQuery,
	definition *entity.Definition,
	shopContext entity.ShopContext,
) error {

	resolved, err := p.resolve(result, definition, query.Field(), shopContext)
	if err != nil {
		return err
	}

	if query.Value() == nil {
		result.AddWhere(resolved.Column.IsNull())
		return nil
	}

	value, err := p.bindValue(resolved.Field, query.Value())
	if err != nil {
		return errors.Join(err, fmt.Errorf("term query on %q", query.Field()))
	}

	if _, isArray := resolved.Field.(*entity.ArrayField); isArray {
		contains, containsErr := p.dialect.arrayContains(resolved.Column, []any{value})
		if containsErr != nil {
			return containsErr
		}

		result.AddWhere(contains)

		return nil
	}

	result.AddWhere(resolved.Column.Eq(value))

	return nil
}

func (p SQLQueryParser) parseTerms(
	result *ParseResult,
	query entity.TermsQuery,
	definition *entity.Definition,
	shopContext entity.ShopContext,
) error {

	resolved, err := p.resolve(result, definition, query.Field(), shopContext)
	if err != nil {
		return err
	}

	if len(query.Values()) == 0 {
		result.AddWhere(goqu.L(literalMatchNone))
		return nil
	}

	values := make([]any, 0, len(query.Values()))
	for _, raw := range query.Values() {
		value, bindErr := p.bindValue(resolved.Field, raw)
		if bindErr != nil {
			return errors.Join(bindErr, fmt.Errorf("terms query on %q", query.Field()))
		}

		values = append(values, value)
	}

	if _, isArray := resolved.Field.(*entity.ArrayField); isArray {
		contains, containsErr := p.dialect.arrayContains(resolved.Column, values)
		if containsErr != nil {
			return containsErr
		}

		result.AddWhere(contains)

		return nil
	}

	result.AddWhere(resolved.Column.In(values))

	return nil
}

func (p SQLQueryParser) parseMatch(
	result *ParseResult,
	query entity.MatchQuery,
	definition *entity.Definition,
	shopContext entity.ShopContext,
) error {

	resolved, err := p.resolve(result, definition, query.Field(), shopContext)
	if err != nil {
		return err
	}

	result.AddWhere(resolved.Column.ILike("%" + query.Value() + "%"))

	return nil
}

func (p SQLQueryParser) parseRange(
	result *ParseResult,
	query entity.RangeQuery,
	definition *entity.Definition,
	shopContext entity.ShopContext,
) error {

	resolved, err := p.resolve(result, definition, query.Field(), shopContext)
	if err != nil {
		return err
	}

	bounds := make([]exp.Expression, 0, 2)

	switch {
	case query.HasParameter(entity.GT):
		bounds = append(bounds, resolved.Column.Gt(query.Parameter(entity.GT)))
	case query.HasParameter(entity.GTE):
		bounds = append(bounds, resolved.Column.Gte(query.Parameter(entity.GTE)))
	}

	switch {
	case query.HasParameter(entity.LT):
		bounds = append(bounds, resolved.Column.Lt(query.Parameter(entity.LT)))
	case query.HasParameter(entity.LTE):
		bounds = append(bounds, resolved.Column.Lte(query.Parameter(entity.LTE)))
	}

	if len(bounds) == 0 {
		return errors.Join(entity.ErrInvalidRangeQuery, fmt.Errorf("range query on %q", query.Field()))
	}

	result.AddWhere(goqu.And(bounds...))

	return nil
}

func (p SQLQueryParser) parseNested(
	result *ParseResult,
	query entity.NestedQuery,
	definition *entity.Definition,
	shopContext entity.ShopContext,
) error {

	glued, err := p.glueChildren(result, query, definition, shopContext)
	if err != nil {
		return err
	}

	result.AddWhere(glued)

	return nil
}

func (p SQLQueryParser) parseNot(
	result *ParseResult,
	query entity.NotQuery,
	definition *entity.Definition,
	shopContext entity.ShopContext,
) error {

	glued, err := p.glueChildren(result, query.NestedQuery, definition, shopContext)
	if err != nil {
		return err
	}

	if glued != nil {
		result.AddWhere(goqu.L(literalNot, glued))
	}

	return nil
}

// glueChildren parses the children and combines their predicates with the operator.
// It returns nil if no child produced a predicate.
func (p SQLQueryParser) glueChildren(
	result *ParseResult,
	query entity.NestedQuery,
	definition *entity.Definition,
	shopContext entity.ShopContext,
) (exp.Expression, error) {

	predicates := make([]exp.Expression, 0, len(query.Queries()))

	for _, child := range query.Queries() {
		parsed, err := p.Parse(child, definition, shopContext)
		if err != nil {
			return nil, err
		}

		result.AddJoin(parsed.Joins()...)

		if expression := parsed.Expression(); expression != nil {
			predicates = append(predicates, expression)
		}
	}

	if len(predicates) == 0 {
		return nil, nil
	}

	if query.Operator() == entity.OperatorOr {
		return goqu.Or(predicates...), nil
	}

	return goqu.And(predicates...), nil
}

func (p SQLQueryParser) resolve(
	result *ParseResult,
	definition *entity.Definition,
	path string,
	shopContext entity.ShopContext,
) (ResolvedField, error) {

	resolved, err := p.accessor.Resolve(definition, path, shopContext)
	if err != nil {
		return ResolvedField{}, err
	}

	result.AddJoin(resolved.Joins...)

	return resolved, nil
}

// bindValue converts values of uuid backed fields into the dialect's uuid representation.
func (p SQLQueryParser) bindValue(field entity.Field, value any) (any, error) {
	if !isUUIDColumn(field) {
		return value, nil
	}

	id, err := entity.ParseUUID(value)
	if err != nil {
		return nil, err
	}

	return p.dialect.uuidValue(id), nil
}

func isUUIDColumn(field entity.Field) bool {
	if entity.IsUUIDField(field) {
		return true
	}

	_, isManyToOne := field.(*entity.ManyToOneAssociationField)

	return isManyToOne
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}
