// Package postgresengine provides the PostgreSQL storage engine of the
// library backend.
//
// The engine persists users, books and active loans, and implements the
// borrow/return state transitions as single database transactions so that
// the loan registry and the stock counters never diverge: a loan's creation
// decrements available_quantity by exactly 1, its removal increments it by
// exactly 1, and a failed decrement rolls the loan insert back.
//
// The engine supports multiple database connection types (pgx.Pool, sql.DB,
// sqlx.DB) through internal adapters, uses goqu for all query building, and
// logs queries and operations through a pluggable Logger.
package postgresengine
