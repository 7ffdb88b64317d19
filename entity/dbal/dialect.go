package dbal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/dialect/mysql"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

// Dialect names the SQL dialect the statements are rendered for.
type Dialect string

const (
	// DialectPostgres renders "quoted" identifiers, $n placeholders, native uuid and jsonb columns.
	DialectPostgres Dialect = "postgres"

	// DialectMySQL renders `quoted` identifiers, ? placeholders, binary(16) uuid and json columns.
	DialectMySQL Dialect = "mysql"
)

// goquMySQL is the mysql dialect without INSERT IGNORE for conflict clauses, so an upsert fails
// on constraint violations instead of turning them into warnings.
const goquMySQL = "entitystore-mysql"

func init() {
	options := mysql.DialectOptions()
	options.SupportsInsertIgnoreSyntax = false

	goqu.RegisterDialect(goquMySQL, options)
}

// ParseDialect maps a dialect name to a Dialect.
func ParseDialect(name string) (Dialect, error) {
	switch Dialect(strings.ToLower(name)) {
	case DialectPostgres, "postgresql", "pgx":
		return DialectPostgres, nil
	case DialectMySQL, "mariadb":
		return DialectMySQL, nil
	default:
		return "", errors.Join(ErrUnsupportedDialect, fmt.Errorf("dialect %q", name))
	}
}

func (d Dialect) builder() goqu.DialectWrapper {
	if d == DialectMySQL {
		return goqu.Dialect(goquMySQL)
	}

	return goqu.Dialect(string(d))
}

// uuidValue converts an id into the value bound for uuid columns.
func (d Dialect) uuidValue(id uuid.UUID) any {
	if d == DialectMySQL {
		return id[:]
	}

	return id
}

// arrayContains renders a predicate matching JSON array columns which contain all values.
func (d Dialect) arrayContains(column exp.Expression, values []any) (exp.Expression, error) {
	encoded, err := jsoniter.ConfigFastest.MarshalToString(values)
	if err != nil {
		return nil, errors.Join(ErrBuildingQueryFailed, err)
	}

	if d == DialectMySQL {
		return goqu.L("JSON_CONTAINS(?, ?)", column, encoded), nil
	}

	return goqu.L("? @> ?::jsonb", column, encoded), nil
}

// excluded references the value proposed for insertion inside an upsert's update clause.
func (d Dialect) excluded(column string) exp.Expression {
	if d == DialectMySQL {
		return goqu.L("VALUES(?)", goqu.C(column))
	}

	return goqu.T("excluded").Col(column)
}
