package dbal

import (
	"errors"
	"slices"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

const renderPrefix = "SELECT 1 WHERE "

// Join is a LEFT JOIN required by a resolved field.
type Join struct {
	Table string
	Alias string
	On    exp.Expression
}

// ParseResult holds the predicates produced by the SQLQueryParser and the joins they need.
// Predicates are combined with AND.
type ParseResult struct {
	wheres []exp.Expression
	joins  []Join
}

// NewParseResult creates an empty ParseResult.
func NewParseResult() *ParseResult {
	return &ParseResult{}
}

// AddWhere appends predicates. Nil predicates are ignored.
func (r *ParseResult) AddWhere(expressions ...exp.Expression) {
	for _, expression := range expressions {
		if expression != nil {
			r.wheres = append(r.wheres, expression)
		}
	}
}

// AddJoin appends joins, skipping aliases which are already joined.
func (r *ParseResult) AddJoin(joins ...Join) {
	for _, join := range joins {
		if !r.HasJoin(join.Alias) {
			r.joins = append(r.joins, join)
		}
	}
}

// HasJoin reports whether a join with the alias exists.
func (r *ParseResult) HasJoin(alias string) bool {
	return slices.ContainsFunc(r.joins, func(j Join) bool { return j.Alias == alias })
}

// Wheres returns the predicates.
func (r *ParseResult) Wheres() []exp.Expression {
	return r.wheres
}

// Joins returns the joins.
func (r *ParseResult) Joins() []Join {
	return r.joins
}

// IsEmpty reports whether there are no predicates.
func (r *ParseResult) IsEmpty() bool {
	return len(r.wheres) == 0
}

// Merge appends the predicates and joins of other.
func (r *ParseResult) Merge(other *ParseResult) *ParseResult {
	if other == nil {
		return r
	}

	r.AddWhere(other.wheres...)
	r.AddJoin(other.joins...)

	return r
}

// ResetWheres drops all predicates but keeps the joins.
func (r *ParseResult) ResetWheres() {
	r.wheres = nil
}

// Expression combines all predicates with AND, nil if there are none.
func (r *ParseResult) Expression() exp.Expression {
	if r.IsEmpty() {
		return nil
	}

	return goqu.And(r.wheres...)
}

// Score adds up the expressions of a ranking result, nil if there are none.
func (r *ParseResult) Score() exp.Expression {
	switch len(r.wheres) {
	case 0:
		return nil
	case 1:
		return r.wheres[0]
	default:
		placeholders := strings.TrimSuffix(strings.Repeat("? + ", len(r.wheres)), " + ")
		args := make([]any, 0, len(r.wheres))

		for _, where := range r.wheres {
			args = append(args, where)
		}

		return goqu.L("("+placeholders+")", args...)
	}
}

// ToSQL renders the combined predicates as an SQL fragment with positional parameters.
func (r *ParseResult) ToSQL(dialect Dialect) (string, []any, error) {
	if r.IsEmpty() {
		return "", []any{}, nil
	}

	sql, args, err := dialect.builder().
		Select(goqu.L("1")).
		Where(r.Expression()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return "", nil, errors.Join(ErrBuildingQueryFailed, err)
	}

	return strings.TrimPrefix(sql, renderPrefix), args, nil
}

func (r *ParseResult) applyJoins(ds *goqu.SelectDataset) *goqu.SelectDataset {
	for _, join := range r.joins {
		ds = ds.LeftJoin(goqu.T(join.Table).As(goqu.T(join.Alias)), goqu.On(join.On))
	}

	return ds
}
