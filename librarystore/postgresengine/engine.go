package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"librarysvc/librarystore"
	"librarysvc/librarystore/postgresengine/internal/adapters"
)

const (
	tableUsers = "users"
	tableBooks = "books"
	tableLoans = "user_books"

	colID                = "id"
	colName              = "name"
	colEmail             = "email"
	colPassword          = "password"
	colIsAdmin           = "is_admin"
	colTitle             = "title"
	colAuthor            = "author"
	colISBN              = "isbn"
	colAvailableQuantity = "available_quantity"
	colShelfLocation     = "shelf_location"
	colUserID            = "user_id"
	colBookID            = "book_id"
	colDueDate           = "due_date"

	// Constraint names of the loans table, matching the Postgres defaults
	// so schemas created before they were spelled out stay compatible.
	constraintLoanUserFK = "user_books_user_id_fkey"
	constraintLoanBookFK = "user_books_book_id_fkey"

	dialectPostgres = "postgres"

	logMsgDBQueryFailed     = "database query execution failed"
	logMsgDBExecFailed      = "database execution failed"
	logMsgCloseRowsFailed   = "failed to close database rows"
	logMsgScanRowFailed     = "failed to scan database row"
	logMsgBeginTxFailed     = "failed to begin transaction"
	logMsgCommitTxFailed    = "failed to commit transaction"
	logMsgRollbackTxFailed  = "failed to roll back transaction"
	logMsgSQLExecuted       = "executed sql for: "
	logMsgOperation         = "librarystore operation: "
	logMsgBookBorrowed      = "book borrowed"
	logMsgBookReturned      = "book returned"
	logMsgBorrowConflict    = "borrow conflict detected"
	logMsgReturnWithoutLoan = "return without active loan"

	logAttrError        = "error"
	logAttrQuery        = "query"
	logAttrDurationMS   = "duration_ms"
	logAttrRowsAffected = "rows_affected"
	logAttrUserID       = "user_id"
	logAttrBookID       = "book_id"
	logAttrDueDate      = "due_date"

	logActionQuery = "query"
	logActionExec  = "exec"
)

type (
	sqlQueryString    = string
	rowsAffectedInt64 = int64
)

// Store is the PostgreSQL storage engine of the library backend. It persists
// users, books and active loans, and executes the borrow/return state
// transitions transactionally so that loan records and stock counters never
// diverge. It leverages a database adapter and supports customizable logging.
type Store struct {
	db     adapters.DBAdapter
	logger librarystore.Logger
}

// Option defines a functional option for configuring Store.
type Option func(*Store) error

// WithLogger sets the logger for the Store.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: operation outcomes, conflicts, durations (production-safe)
// Warn level: non-critical issues like cleanup failures
// Error level: critical failures that cause operation failures.
func WithLogger(logger librarystore.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// NewStoreFromPGXPool creates a new Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, librarystore.ErrNilDatabaseConnection
	}

	s := Store{db: adapters.NewPGXAdapter(db)}

	for _, option := range options {
		if err := option(&s); err != nil {
			return Store{}, err
		}
	}

	return s, nil
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, librarystore.ErrNilDatabaseConnection
	}

	s := Store{db: adapters.NewSQLAdapter(db)}

	for _, option := range options {
		if err := option(&s); err != nil {
			return Store{}, err
		}
	}

	return s, nil
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, librarystore.ErrNilDatabaseConnection
	}

	s := Store{db: adapters.NewSQLXAdapter(db)}

	for _, option := range options {
		if err := option(&s); err != nil {
			return Store{}, err
		}
	}

	return s, nil
}

// builder returns the goqu dialect wrapper all queries are built with.
func (s Store) builder() goqu.DialectWrapper {
	return goqu.Dialect(dialectPostgres)
}

// executeQuery executes the SQL query with timing and debug logging.
func (s Store) executeQuery(ctx context.Context, sqlQuery sqlQueryString) (adapters.DBRows, error) {
	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery)
	s.logQueryWithDuration(sqlQuery, logActionQuery, time.Since(start))

	if queryErr != nil {
		s.logError(logMsgDBQueryFailed, logAttrError, queryErr.Error(), logAttrQuery, sqlQuery)
		return nil, queryErr
	}

	return rows, nil
}

// executeExec executes the SQL statement with timing and debug logging and
// returns the number of affected rows.
func (s Store) executeExec(ctx context.Context, sqlQuery sqlQueryString) (rowsAffectedInt64, error) {
	start := time.Now()
	result, execErr := s.db.Exec(ctx, sqlQuery)
	s.logQueryWithDuration(sqlQuery, logActionExec, time.Since(start))

	if execErr != nil {
		s.logError(logMsgDBExecFailed, logAttrError, execErr.Error(), logAttrQuery, sqlQuery)
		return 0, execErr
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		s.logError(logMsgDBExecFailed, logAttrError, rowsAffectedErr.Error())
		return 0, rowsAffectedErr
	}

	return rowsAffected, nil
}

// executeTxExec executes the SQL statement inside the given transaction with
// timing and debug logging and returns the number of affected rows.
func (s Store) executeTxExec(ctx context.Context, tx adapters.DBTx, sqlQuery sqlQueryString) (rowsAffectedInt64, error) {
	start := time.Now()
	result, execErr := tx.Exec(ctx, sqlQuery)
	s.logQueryWithDuration(sqlQuery, logActionExec, time.Since(start))

	if execErr != nil {
		return 0, execErr
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		return 0, rowsAffectedErr
	}

	return rowsAffected, nil
}

// rollbackTx safely aborts a transaction and logs any rollback failure.
func (s Store) rollbackTx(ctx context.Context, tx adapters.DBTx) {
	if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
		s.logWarn(logMsgRollbackTxFailed, logAttrError, rollbackErr.Error())
	}
}

// closeRows safely closes database rows and logs any errors.
func (s Store) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		s.logWarn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

// logQueryWithDuration logs SQL queries with execution time at debug level if the logger is configured.
func (s Store) logQueryWithDuration(sqlQuery sqlQueryString, action string, duration time.Duration) {
	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, s.durationToMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level if the logger is configured.
func (s Store) logOperation(action string, args ...any) {
	if s.logger != nil {
		s.logger.Info(logMsgOperation+action, args...)
	}
}

func (s Store) logWarn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s Store) logError(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}

// durationToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (s Store) durationToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

var errScanFailed = errors.New("scanning database row failed")

// CreateSchema creates the users, books and user_books tables if they do not
// exist yet. The primary key on (user_id, book_id) enforces the one active
// loan per user and book invariant; the CHECK constraint backstops the
// non-negative stock invariant.
func (s Store) CreateSchema(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS users (
			id       BIGSERIAL PRIMARY KEY,
			name     TEXT      NOT NULL DEFAULT '',
			email    TEXT      NOT NULL UNIQUE,
			password TEXT      NOT NULL,
			is_admin BOOLEAN   NOT NULL DEFAULT FALSE
		);
		CREATE TABLE IF NOT EXISTS books (
			id                 BIGSERIAL PRIMARY KEY,
			title              TEXT      NOT NULL DEFAULT '',
			author             TEXT      NOT NULL DEFAULT '',
			isbn               TEXT      NOT NULL DEFAULT '',
			available_quantity INTEGER   NOT NULL DEFAULT 0 CHECK (available_quantity >= 0),
			shelf_location     TEXT      NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS user_books (
			user_id  BIGINT NOT NULL,
			book_id  BIGINT NOT NULL,
			due_date DATE   NOT NULL,
			PRIMARY KEY (user_id, book_id),
			CONSTRAINT user_books_user_id_fkey FOREIGN KEY (user_id) REFERENCES users (id),
			CONSTRAINT user_books_book_id_fkey FOREIGN KEY (book_id) REFERENCES books (id)
		);`

	if _, err := s.db.Exec(ctx, schema); err != nil {
		s.logError(logMsgDBExecFailed, logAttrError, err.Error())
		return err
	}

	return nil
}
