package entity

import (
	"slices"
	"strings"
)

// Query is a node of the abstract search query AST.
//
// The closed set of node kinds understood by the SQL query parser is:
//
//   - TermQuery: field equals value (nil value = IS NULL)
//   - TermsQuery: field is one of values
//   - MatchQuery: field contains value as substring
//   - RangeQuery: field lies within lower and/or upper bounds
//   - NestedQuery: children combined with AND or OR
//   - NotQuery: negation of children combined with AND or OR
//
// ScoreQuery wraps a query with a score for ranking and is only accepted by ranking parsers.
type Query interface {
	QueryType() string
}

// Operator glues the children of nested and not queries.
type Operator string

const (
	// OperatorAnd requires all children to match.
	OperatorAnd Operator = "AND"

	// OperatorOr requires at least one child to match.
	OperatorOr Operator = "OR"
)

// sanitizeOperator returns AND for anything that is not OR.
func sanitizeOperator(operator Operator) Operator {
	if Operator(strings.ToUpper(string(operator))) == OperatorOr {
		return OperatorOr
	}

	return OperatorAnd
}

/***** TermQuery *****/

// TermQuery matches entities whose field equals the value.
type TermQuery struct {
	field string
	value any
}

// Term creates a TermQuery. A nil value matches NULL columns.
func Term(field string, value any) TermQuery {
	return TermQuery{field: field, value: value}
}

// QueryType implements Query.
func (q TermQuery) QueryType() string { return "term" }

// Field returns the property path.
func (q TermQuery) Field() string { return q.field }

// Value returns the compared value.
func (q TermQuery) Value() any { return q.value }

/***** TermsQuery *****/

// TermsQuery matches entities whose field equals one of the values.
type TermsQuery struct {
	field  string
	values []any
}

// Terms creates a TermsQuery.
func Terms(field string, values ...any) TermsQuery {
	return TermsQuery{field: field, values: slices.Clip(values)}
}

// TermsOf creates a TermsQuery from a typed slice.
func TermsOf[T any](field string, values []T) TermsQuery {
	anyValues := make([]any, 0, len(values))
	for _, value := range values {
		anyValues = append(anyValues, value)
	}

	return TermsQuery{field: field, values: anyValues}
}

// QueryType implements Query.
func (q TermsQuery) QueryType() string { return "terms" }

// Field returns the property path.
func (q TermsQuery) Field() string { return q.field }

// Values returns the accepted values.
func (q TermsQuery) Values() []any { return q.values }

/***** MatchQuery *****/

// MatchQuery matches entities whose field contains the value.
type MatchQuery struct {
	field string
	value string
}

// Match creates a MatchQuery.
func Match(field string, value string) MatchQuery {
	return MatchQuery{field: field, value: value}
}

// QueryType implements Query.
func (q MatchQuery) QueryType() string { return "match" }

// Field returns the property path.
func (q MatchQuery) Field() string { return q.field }

// Value returns the searched substring.
func (q MatchQuery) Value() string { return q.value }

/***** RangeQuery *****/

// RangeOperator names one bound of a RangeQuery.
type RangeOperator string

const (
	// GT is the exclusive lower bound.
	GT RangeOperator = "gt"

	// GTE is the inclusive lower bound.
	GTE RangeOperator = "gte"

	// LT is the exclusive upper bound.
	LT RangeOperator = "lt"

	// LTE is the inclusive upper bound.
	LTE RangeOperator = "lte"
)

// RangeParams maps range operators to bound values.
type RangeParams map[RangeOperator]any

// RangeQuery matches entities whose field lies within the bounds.
// GT wins over GTE and LT wins over LTE when both are given.
type RangeQuery struct {
	field  string
	params RangeParams
}

// Range creates a RangeQuery. Unknown operators are dropped.
func Range(field string, params RangeParams) RangeQuery {
	sanitized := make(RangeParams, len(params))
	for operator, value := range params {
		switch operator {
		case GT, GTE, LT, LTE:
			sanitized[operator] = value
		}
	}

	return RangeQuery{field: field, params: sanitized}
}

// QueryType implements Query.
func (q RangeQuery) QueryType() string { return "range" }

// Field returns the property path.
func (q RangeQuery) Field() string { return q.field }

// HasParameter reports whether the bound is set.
func (q RangeQuery) HasParameter(operator RangeOperator) bool {
	_, ok := q.params[operator]

	return ok
}

// Parameter returns the bound value.
func (q RangeQuery) Parameter(operator RangeOperator) any {
	return q.params[operator]
}

/***** NestedQuery *****/

// NestedQuery combines child queries with an operator.
type NestedQuery struct {
	operator Operator
	queries  []Query
}

// Nested creates a NestedQuery. Nil children are dropped.
func Nested(operator Operator, queries ...Query) NestedQuery {
	return NestedQuery{operator: sanitizeOperator(operator), queries: compactQueries(queries)}
}

// And creates a NestedQuery requiring all children to match.
func And(queries ...Query) NestedQuery {
	return Nested(OperatorAnd, queries...)
}

// Or creates a NestedQuery requiring at least one child to match.
func Or(queries ...Query) NestedQuery {
	return Nested(OperatorOr, queries...)
}

// QueryType implements Query.
func (q NestedQuery) QueryType() string { return "nested" }

// Operator returns the glue operator.
func (q NestedQuery) Operator() Operator { return q.operator }

// Queries returns the children.
func (q NestedQuery) Queries() []Query { return q.queries }

/***** NotQuery *****/

// NotQuery negates its children combined with an operator.
type NotQuery struct {
	NestedQuery
}

// Not creates a NotQuery.
func Not(operator Operator, queries ...Query) NotQuery {
	return NotQuery{NestedQuery: Nested(operator, queries...)}
}

// QueryType implements Query.
func (q NotQuery) QueryType() string { return "not" }

/***** ScoreQuery *****/

// ScoreQuery adds score to every matching entity, optionally multiplied by a field value.
type ScoreQuery struct {
	query      Query
	score      float64
	scoreField string
}

// Score creates a ScoreQuery.
func Score(query Query, score float64) ScoreQuery {
	return ScoreQuery{query: query, score: score}
}

// ScoreByField creates a ScoreQuery whose score is multiplied by the value of scoreField.
func ScoreByField(query Query, score float64, scoreField string) ScoreQuery {
	return ScoreQuery{query: query, score: score, scoreField: scoreField}
}

// QueryType implements Query.
func (q ScoreQuery) QueryType() string { return "score" }

// Query returns the wrapped query.
func (q ScoreQuery) Query() Query { return q.query }

// Score returns the score.
func (q ScoreQuery) Score() float64 { return q.score }

// ScoreField returns the multiplier field or "".
func (q ScoreQuery) ScoreField() string { return q.scoreField }

func compactQueries(queries []Query) []Query {
	compacted := slices.DeleteFunc(slices.Clone(queries), func(q Query) bool { return q == nil })

	return slices.Clip(compacted)
}
