package adapters

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// SQLXAdapter implements DBAdapter for sqlx.DB.
type SQLXAdapter struct {
	db *sqlx.DB
}

// NewSQLXAdapter creates a new SQLX adapter.
func NewSQLXAdapter(db *sqlx.DB) *SQLXAdapter {
	return &SQLXAdapter{db: db}
}

// Query executes a query using the sqlx.DB and returns wrapped rows.
func (s *SQLXAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdRows{rows: rows}, nil
}

// Exec executes a query using the sqlx.DB and returns wrapped result.
func (s *SQLXAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	result, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdResult{result: result}, nil
}

// Begin starts a transaction on the sqlx.DB.
func (s *SQLXAdapter) Begin(ctx context.Context) (DBTx, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}

	return &sqlxTx{tx: tx}, nil
}

// sqlxTx wraps sqlx.Tx to implement the DBTx interface.
type sqlxTx struct {
	tx *sqlx.Tx
}

// Query executes a query inside the transaction and returns wrapped rows.
func (t *sqlxTx) Query(ctx context.Context, query string) (DBRows, error) {
	rows, err := t.tx.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdRows{rows: rows}, nil
}

// Exec executes a query inside the transaction and returns wrapped result.
func (t *sqlxTx) Exec(ctx context.Context, query string) (DBResult, error) {
	result, err := t.tx.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdResult{result: result}, nil
}

// Commit commits the transaction. The context is accepted for interface
// symmetry; sqlx transactions are bound to the context of BeginTxx.
func (t *sqlxTx) Commit(_ context.Context) error {
	return t.tx.Commit()
}

// Rollback aborts the transaction. Safe to call after Commit.
func (t *sqlxTx) Rollback(_ context.Context) error {
	return t.tx.Rollback()
}
