package adapters

import (
	"context"
	"database/sql"
)

// SQLAdapter implements DBAdapter for sql.DB.
type SQLAdapter struct {
	db *sql.DB
}

// NewSQLAdapter creates a new SQL adapter.
func NewSQLAdapter(db *sql.DB) *SQLAdapter {
	return &SQLAdapter{db: db}
}

// Query executes a query using the sql.DB and returns wrapped rows.
func (s *SQLAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdRows{rows: rows}, nil
}

// Exec executes a query using the sql.DB and returns wrapped result.
func (s *SQLAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	result, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdResult{result: result}, nil
}

// Begin starts a transaction on the sql.DB.
func (s *SQLAdapter) Begin(ctx context.Context) (DBTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	return &sqlTx{tx: tx}, nil
}

// sqlTx wraps sql.Tx to implement the DBTx interface.
type sqlTx struct {
	tx *sql.Tx
}

// Query executes a query inside the transaction and returns wrapped rows.
func (t *sqlTx) Query(ctx context.Context, query string) (DBRows, error) {
	rows, err := t.tx.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdRows{rows: rows}, nil
}

// Exec executes a query inside the transaction and returns wrapped result.
func (t *sqlTx) Exec(ctx context.Context, query string) (DBResult, error) {
	result, err := t.tx.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdResult{result: result}, nil
}

// Commit commits the transaction. The context is accepted for interface
// symmetry; database/sql transactions are bound to the context of BeginTx.
func (t *sqlTx) Commit(_ context.Context) error {
	return t.tx.Commit()
}

// Rollback aborts the transaction. Safe to call after Commit.
func (t *sqlTx) Rollback(_ context.Context) error {
	return t.tx.Rollback()
}
