package librarystore

import "errors"

var (
	// ErrNilDatabaseConnection is returned by the engine constructors when the supplied connection is nil.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrUserNotFound is returned when no user row matches the given id or email.
	ErrUserNotFound = errors.New("user not found")

	// ErrBookNotFound is returned when no book row matches the given id.
	ErrBookNotFound = errors.New("book not found")

	// ErrDuplicateEmail is returned when registering or updating a user would violate the email uniqueness constraint.
	ErrDuplicateEmail = errors.New("email is already registered")

	// ErrDuplicateLoan is returned when the (user, book) pair already has an active loan.
	ErrDuplicateLoan = errors.New("book is already borrowed by this user")

	// ErrOutOfStock is returned when a borrow would take available_quantity below zero.
	ErrOutOfStock = errors.New("no more copies of this book available")

	// ErrLoanNotFound is returned when a return finds no active loan for the (user, book) pair.
	ErrLoanNotFound = errors.New("no active loan for this user and book")
)
