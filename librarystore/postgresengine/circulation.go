package postgresengine

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"

	"librarysvc/librarystore"
	"librarysvc/librarystore/postgresengine/internal/adapters"
)

// BorrowBook executes the Available -> Borrowed transition for the given
// (user, book) pair: it creates the loan record and decrements the book's
// available quantity as one atomic unit. Either both happen or neither does.
//
// Outcomes:
//
//	librarystore.ErrDuplicateLoan - the pair already has an active loan; no stock change
//	librarystore.ErrOutOfStock    - available_quantity is 0; no loan record remains
//	librarystore.ErrBookNotFound  - the book does not exist; no loan record remains
//	librarystore.ErrUserNotFound  - the user was deleted after the token was issued
//
// Two concurrent borrows of the same pair are resolved by the loans primary
// key: exactly one succeeds. Two users racing for the last copy are resolved
// by the guarded decrement: the loser's loan insert is rolled back.
func (s Store) BorrowBook(ctx context.Context, userID, bookID int64, dueDate librarystore.Date) error {
	tx, beginErr := s.db.Begin(ctx)
	if beginErr != nil {
		s.logError(logMsgBeginTxFailed, logAttrError, beginErr.Error())
		return beginErr
	}

	if insertErr := s.insertLoan(ctx, tx, userID, bookID, dueDate); insertErr != nil {
		s.rollbackTx(ctx, tx)

		if errors.Is(insertErr, librarystore.ErrDuplicateLoan) {
			s.logOperation(logMsgBorrowConflict, logAttrUserID, userID, logAttrBookID, bookID)
			return insertErr
		}
		if adapters.IsForeignKeyViolation(insertErr) {
			// Either side of the loan can be the missing one; the violated
			// constraint tells them apart. A vanished user means the caller's
			// token outlived the account.
			if adapters.ConstraintName(insertErr) == constraintLoanUserFK {
				return errors.Join(librarystore.ErrUserNotFound, insertErr)
			}

			return errors.Join(librarystore.ErrBookNotFound, insertErr)
		}

		return insertErr
	}

	decremented, decrementErr := s.decrementStock(ctx, tx, bookID)
	if decrementErr != nil {
		s.rollbackTx(ctx, tx)
		return decrementErr
	}

	if !decremented {
		// The loan insert is undone with the rollback; no loan may exist
		// for an out-of-stock or missing book.
		s.rollbackTx(ctx, tx)

		if _, getErr := s.GetBookByID(ctx, bookID); errors.Is(getErr, librarystore.ErrBookNotFound) {
			return librarystore.ErrBookNotFound
		}

		s.logOperation(logMsgBorrowConflict, logAttrUserID, userID, logAttrBookID, bookID)

		return librarystore.ErrOutOfStock
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		s.logError(logMsgCommitTxFailed, logAttrError, commitErr.Error())
		s.rollbackTx(ctx, tx)

		return commitErr
	}

	s.logOperation(logMsgBookBorrowed,
		logAttrUserID, userID,
		logAttrBookID, bookID,
		logAttrDueDate, dueDate.String(),
	)

	return nil
}

// ReturnBook executes the Borrowed -> Available transition for the given
// (user, book) pair: it removes the loan record and increments the book's
// available quantity as one atomic unit.
//
// Returns librarystore.ErrLoanNotFound when the pair has no active loan; in
// that case the stock is unchanged.
func (s Store) ReturnBook(ctx context.Context, userID, bookID int64) error {
	tx, beginErr := s.db.Begin(ctx)
	if beginErr != nil {
		s.logError(logMsgBeginTxFailed, logAttrError, beginErr.Error())
		return beginErr
	}

	if deleteErr := s.deleteLoan(ctx, tx, userID, bookID); deleteErr != nil {
		s.rollbackTx(ctx, tx)

		if errors.Is(deleteErr, librarystore.ErrLoanNotFound) {
			s.logOperation(logMsgReturnWithoutLoan, logAttrUserID, userID, logAttrBookID, bookID)
		}

		return deleteErr
	}

	if incrementErr := s.incrementStock(ctx, tx, bookID); incrementErr != nil {
		s.rollbackTx(ctx, tx)
		return incrementErr
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		s.logError(logMsgCommitTxFailed, logAttrError, commitErr.Error())
		s.rollbackTx(ctx, tx)

		return commitErr
	}

	s.logOperation(logMsgBookReturned, logAttrUserID, userID, logAttrBookID, bookID)

	return nil
}

// decrementStock decrements the book's available quantity inside the given
// transaction, guarded so the counter never goes below zero. It reports
// whether a row was updated; false means the book is missing or out of stock.
func (s Store) decrementStock(ctx context.Context, tx adapters.DBTx, bookID int64) (bool, error) {
	sqlQuery, _, toSQLErr := s.builder().
		Update(tableBooks).
		Set(goqu.Record{colAvailableQuantity: goqu.L(colAvailableQuantity + " - 1")}).
		Where(
			goqu.Ex{colID: bookID},
			goqu.I(colAvailableQuantity).Gt(0),
		).
		ToSQL()
	if toSQLErr != nil {
		return false, toSQLErr
	}

	rowsAffected, execErr := s.executeTxExec(ctx, tx, sqlQuery)
	if execErr != nil {
		return false, execErr
	}

	return rowsAffected > 0, nil
}

// incrementStock increments the book's available quantity inside the given
// transaction. No upper bound is enforced.
func (s Store) incrementStock(ctx context.Context, tx adapters.DBTx, bookID int64) error {
	sqlQuery, _, toSQLErr := s.builder().
		Update(tableBooks).
		Set(goqu.Record{colAvailableQuantity: goqu.L(colAvailableQuantity + " + 1")}).
		Where(goqu.Ex{colID: bookID}).
		ToSQL()
	if toSQLErr != nil {
		return toSQLErr
	}

	rowsAffected, execErr := s.executeTxExec(ctx, tx, sqlQuery)
	if execErr != nil {
		return execErr
	}

	if rowsAffected == 0 {
		return librarystore.ErrBookNotFound
	}

	return nil
}
