package dbal_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/AntonStoeckl/dynamic-entities-go/entity/dbal/internal/adapters"
)

type recordedStatement struct {
	sql  string
	args []any
}

// fakeAdapter records statements and serves queued result sets in call order.
// Statements executed within a transaction are recorded in execs as well.
type fakeAdapter struct {
	queries      []recordedStatement
	execs        []recordedStatement
	resultSets   [][][]any
	queryErr     error
	execErr      error
	failExecAt   int // 1-based; execErr fails every exec if zero
	beginErr     error
	commitErr    error
	rowsAffected int64
	begins       int
	commits      int
	rollbacks    int
}

func (f *fakeAdapter) Query(_ context.Context, query string, args ...any) (adapters.DBRows, error) {
	f.queries = append(f.queries, recordedStatement{sql: query, args: args})

	if f.queryErr != nil {
		return nil, f.queryErr
	}

	if len(f.resultSets) == 0 {
		return &fakeRows{}, nil
	}

	rows := f.resultSets[0]
	f.resultSets = f.resultSets[1:]

	return &fakeRows{data: rows, pos: -1}, nil
}

func (f *fakeAdapter) Exec(_ context.Context, query string, args ...any) (adapters.DBResult, error) {
	f.execs = append(f.execs, recordedStatement{sql: query, args: args})

	if f.execErr != nil && (f.failExecAt == 0 || f.failExecAt == len(f.execs)) {
		return nil, f.execErr
	}

	return fakeResult(f.rowsAffected), nil
}

func (f *fakeAdapter) Begin(context.Context) (adapters.DBTx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}

	f.begins++

	return &fakeTx{db: f}, nil
}

type fakeTx struct {
	db *fakeAdapter
}

func (tx *fakeTx) Exec(ctx context.Context, query string, args ...any) (adapters.DBResult, error) {
	return tx.db.Exec(ctx, query, args...)
}

func (tx *fakeTx) Commit(context.Context) error {
	if tx.db.commitErr != nil {
		return tx.db.commitErr
	}

	tx.db.commits++

	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	tx.db.rollbacks++
	return nil
}

type fakeRows struct {
	data [][]any
	pos  int
}

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos < len(r.data)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.pos]
	if len(row) != len(dest) {
		return fmt.Errorf("row has %d values, scanning into %d", len(row), len(dest))
	}

	for i, target := range dest {
		slot, ok := target.(*any)
		if !ok {
			return errors.New("scan target is no *any")
		}

		*slot = row[i]
	}

	return nil
}

func (r *fakeRows) Err() error {
	return nil
}

func (r *fakeRows) Close() error {
	return nil
}

type fakeResult int64

func (r fakeResult) RowsAffected() (int64, error) {
	return int64(r), nil
}
