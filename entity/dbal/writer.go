package dbal

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
	"github.com/AntonStoeckl/dynamic-entities-go/entity/dbal/internal/adapters"
	"github.com/AntonStoeckl/dynamic-entities-go/entity/write"
)

// Write executes the commands in the given order within one transaction and returns the
// written primary keys per entity name.
//
// Inserts and updates map to INSERT and UPDATE, upserts to INSERT ... ON CONFLICT DO UPDATE for
// postgres and INSERT ... ON DUPLICATE KEY UPDATE for mysql. The first failing statement aborts
// the write and rolls back the statements executed before.
func (s *Store) Write(ctx context.Context, commands []write.Command) (map[string][]entity.PrimaryKeyValues, error) {
	entityName := ""
	if len(commands) > 0 {
		entityName = commands[0].EntityName
	}

	observer, ctx := s.observe(ctx, operationWrite, entityName)

	statements := make([]writeStatement, 0, len(commands))
	for _, command := range commands {
		sqlQuery, args, err := s.buildWriteStatement(command)
		if err != nil {
			s.logError(ctx, logMsgBuildQueryFailed, err, logAttrEntity, command.EntityName)
			observer.finishError(errorTypeBuildQuery)

			return nil, err
		}

		if sqlQuery != "" {
			statements = append(statements, writeStatement{entityName: command.EntityName, sql: sqlQuery, args: args})
		}
	}

	rowCount, err := s.executeInTransaction(ctx, statements)
	if err != nil {
		observer.finishError(errorTypeDatabase)
		return nil, err
	}

	written := make(map[string][]entity.PrimaryKeyValues)
	for _, command := range commands {
		written[command.EntityName] = append(written[command.EntityName], command.PrimaryKey)
	}

	s.logOperation(ctx, logMsgRowsWritten, logAttrEntity, entityName, logAttrStatements, len(commands), logAttrRowAffected, rowCount)
	observer.finishSuccess(len(commands))

	return written, nil
}

type writeStatement struct {
	entityName string
	sql        string
	args       []any
}

// executeInTransaction runs the statements on one transaction and commits it.
// Nothing is started for an empty statement list.
func (s *Store) executeInTransaction(ctx context.Context, statements []writeStatement) (int64, error) {
	if len(statements) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		s.logError(ctx, logMsgBeginTxFailed, err)
		return 0, errors.Join(ErrTransactionFailed, err)
	}

	rowCount := int64(0)

	for _, statement := range statements {
		rowsAffected, execErr := s.executeStatement(ctx, tx, operationWrite, statement.sql, statement.args)
		if execErr != nil {
			s.rollback(ctx, tx)
			return 0, errors.Join(execErr, fmt.Errorf("entity %q", statement.entityName))
		}

		rowCount += rowsAffected
	}

	if err = tx.Commit(ctx); err != nil {
		s.logError(ctx, logMsgCommitTxFailed, err)
		return 0, errors.Join(ErrTransactionFailed, err)
	}

	return rowCount, nil
}

func (s *Store) rollback(ctx context.Context, tx adapters.DBTx) {
	if err := tx.Rollback(ctx); err != nil {
		s.logWarn(ctx, logMsgRollbackFailed, err)
	}
}

// buildWriteStatement renders the statement of one command. Updates without columns to set
// render no statement.
func (s *Store) buildWriteStatement(command write.Command) (string, []any, error) {
	record := make(goqu.Record, len(command.Data))
	for column, value := range command.Data {
		record[column] = s.bindWriteValue(value)
	}

	builder := s.dialect.builder()

	var (
		sqlQuery string
		args     []any
		err      error
	)

	switch command.Mode {
	case write.Insert:
		sqlQuery, args, err = builder.Insert(command.Table).Rows(record).Prepared(true).ToSQL()

	case write.Update:
		set := make(goqu.Record, len(record))
		conditions := make([]exp.Expression, 0, len(command.PrimaryKeyColumns))

		for column, value := range record {
			if slices.Contains(command.PrimaryKeyColumns, column) {
				continue
			}

			set[column] = value
		}

		for _, column := range command.PrimaryKeyColumns {
			conditions = append(conditions, goqu.C(column).Eq(record[column]))
		}

		if len(set) == 0 {
			return "", nil, nil
		}

		if len(conditions) == 0 {
			return "", nil, errors.Join(entity.ErrMissingPrimaryKey, fmt.Errorf("update of %q", command.Table))
		}

		sqlQuery, args, err = builder.Update(command.Table).Set(set).Where(conditions...).Prepared(true).ToSQL()

	default:
		update := make(goqu.Record, len(record))

		for column := range record {
			if !slices.Contains(command.PrimaryKeyColumns, column) {
				update[column] = s.dialect.excluded(column)
			}
		}

		if len(update) == 0 {
			for _, column := range command.PrimaryKeyColumns {
				update[column] = s.dialect.excluded(column)
			}
		}

		sqlQuery, args, err = builder.Insert(command.Table).
			Rows(record).
			OnConflict(goqu.DoUpdate(strings.Join(command.PrimaryKeyColumns, ","), update)).
			Prepared(true).
			ToSQL()
	}

	if err != nil {
		return "", nil, errors.Join(ErrBuildingQueryFailed, err)
	}

	return sqlQuery, args, nil
}

func (s *Store) bindWriteValue(value any) any {
	if id, ok := value.(uuid.UUID); ok {
		return s.dialect.uuidValue(id)
	}

	return value
}

// Delete deletes the rows of definition with the given primary keys and returns the number of deleted rows.
func (s *Store) Delete(ctx context.Context, definition *entity.Definition, primaryKeys []entity.PrimaryKeyValues) (int64, error) {
	if len(primaryKeys) == 0 {
		return 0, nil
	}

	observer, ctx := s.observe(ctx, operationDelete, definition.Name())

	sqlQuery, args, err := s.buildDeleteStatement(definition, primaryKeys)
	if err != nil {
		s.logError(ctx, logMsgBuildQueryFailed, err, logAttrEntity, definition.Name())
		observer.finishError(errorTypeBuildQuery)

		return 0, err
	}

	rowsAffected, err := s.executeStatement(ctx, s.db, operationDelete, sqlQuery, args)
	if err != nil {
		observer.finishError(errorTypeDatabase)
		return 0, err
	}

	s.logOperation(ctx, logMsgRowsDeleted, logAttrEntity, definition.Name(), logAttrRowAffected, rowsAffected)
	observer.finishSuccess(int(rowsAffected))

	return rowsAffected, nil
}

func (s *Store) buildDeleteStatement(definition *entity.Definition, primaryKeys []entity.PrimaryKeyValues) (string, []any, error) {
	keyFields := definition.PrimaryKeys()
	matches := make([]exp.Expression, 0, len(primaryKeys))

	for _, primaryKey := range primaryKeys {
		conditions := make([]exp.Expression, 0, len(keyFields))

		for _, field := range slices.SortedFunc(slices.Values(keyFields), byStorageName) {
			value, ok := primaryKey[field.PropertyName()]
			if !ok || value == nil {
				return "", nil, errors.Join(
					entity.ErrMissingPrimaryKey,
					fmt.Errorf("%q of %q in %v", field.PropertyName(), definition.Name(), slices.Sorted(maps.Keys(primaryKey))),
				)
			}

			if entity.IsUUIDField(field) {
				id, err := entity.ParseUUID(value)
				if err != nil {
					return "", nil, err
				}

				value = s.dialect.uuidValue(id)
			}

			conditions = append(conditions, goqu.C(field.StorageName()).Eq(value))
		}

		matches = append(matches, goqu.And(conditions...))
	}

	sqlQuery, args, err := s.dialect.builder().
		Delete(definition.Name()).
		Where(goqu.Or(matches...)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return "", nil, errors.Join(ErrBuildingQueryFailed, err)
	}

	return sqlQuery, args, nil
}

func byStorageName(a, b entity.StorageField) int {
	return strings.Compare(a.StorageName(), b.StorageName())
}
