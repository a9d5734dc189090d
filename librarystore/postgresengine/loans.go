package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"librarysvc/librarystore"
	"librarysvc/librarystore/postgresengine/internal/adapters"
)

const (
	aliasLoans = "ub"
	aliasUsers = "u"
	aliasBooks = "b"
)

// ListBorrowedBooks returns all active loans joined with the user and book
// display fields, ordered by due date ascending.
func (s Store) ListBorrowedBooks(ctx context.Context) ([]librarystore.BorrowedBook, error) {
	return s.listLoans(ctx, nil)
}

// ListOverdueBooks returns the active loans whose due date lies before the
// current date, ordered by due date ascending.
func (s Store) ListOverdueBooks(ctx context.Context) ([]librarystore.BorrowedBook, error) {
	return s.listLoans(ctx, goqu.I(aliasLoans+"."+colDueDate).Lt(goqu.L("CURRENT_DATE")))
}

// ListBooksForUser returns the active loans of a single user, ordered by due
// date ascending.
func (s Store) ListBooksForUser(ctx context.Context, userID int64) ([]librarystore.BorrowedBook, error) {
	return s.listLoans(ctx, goqu.I(aliasLoans+"."+colUserID).Eq(userID))
}

func (s Store) listLoans(ctx context.Context, where exp.Expression) ([]librarystore.BorrowedBook, error) {
	selectStmt := s.builder().
		From(goqu.T(tableLoans).As(aliasLoans)).
		Join(
			goqu.T(tableUsers).As(aliasUsers),
			goqu.On(goqu.I(aliasUsers+"."+colID).Eq(goqu.I(aliasLoans+"."+colUserID))),
		).
		Join(
			goqu.T(tableBooks).As(aliasBooks),
			goqu.On(goqu.I(aliasBooks+"."+colID).Eq(goqu.I(aliasLoans+"."+colBookID))),
		).
		Select(
			goqu.I(aliasLoans+"."+colUserID),
			goqu.I(aliasUsers+"."+colName),
			goqu.I(aliasUsers+"."+colEmail),
			goqu.I(aliasLoans+"."+colBookID),
			goqu.I(aliasBooks+"."+colTitle),
			goqu.I(aliasBooks+"."+colAuthor),
			goqu.I(aliasLoans+"."+colDueDate),
		).
		Order(goqu.I(aliasLoans + "." + colDueDate).Asc())

	if where != nil {
		selectStmt = selectStmt.Where(where)
	}

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return nil, toSQLErr
	}

	rows, queryErr := s.executeQuery(ctx, sqlQuery)
	if queryErr != nil {
		return nil, queryErr
	}
	defer s.closeRows(rows)

	loans := make([]librarystore.BorrowedBook, 0)

	for rows.Next() {
		var loan librarystore.BorrowedBook
		var dueDate time.Time

		scanErr := rows.Scan(&loan.UserID, &loan.UserName, &loan.Email, &loan.BookID, &loan.Title, &loan.Author, &dueDate)
		if scanErr != nil {
			s.logError(logMsgScanRowFailed, logAttrError, scanErr.Error())
			return nil, errors.Join(errScanFailed, scanErr)
		}

		loan.DueDate = librarystore.NewDate(dueDate)
		loans = append(loans, loan)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		s.logError(logMsgDBQueryFailed, logAttrError, rowsErr.Error(), logAttrQuery, sqlQuery)
		return nil, rowsErr
	}

	return loans, nil
}

// insertLoan creates a loan row inside the given transaction. A duplicate
// (user, book) pair yields librarystore.ErrDuplicateLoan.
func (s Store) insertLoan(ctx context.Context, tx adapters.DBTx, userID, bookID int64, dueDate librarystore.Date) error {
	sqlQuery, _, toSQLErr := s.builder().
		Insert(tableLoans).
		Rows(goqu.Record{
			colUserID:  userID,
			colBookID:  bookID,
			colDueDate: dueDate.String(),
		}).
		ToSQL()
	if toSQLErr != nil {
		return toSQLErr
	}

	if _, execErr := s.executeTxExec(ctx, tx, sqlQuery); execErr != nil {
		if adapters.IsUniqueViolation(execErr) {
			return errors.Join(librarystore.ErrDuplicateLoan, execErr)
		}

		return execErr
	}

	return nil
}

// deleteLoan removes a loan row inside the given transaction. A missing
// (user, book) pair yields librarystore.ErrLoanNotFound.
func (s Store) deleteLoan(ctx context.Context, tx adapters.DBTx, userID, bookID int64) error {
	sqlQuery, _, toSQLErr := s.builder().
		Delete(tableLoans).
		Where(goqu.Ex{colUserID: userID, colBookID: bookID}).
		ToSQL()
	if toSQLErr != nil {
		return toSQLErr
	}

	rowsAffected, execErr := s.executeTxExec(ctx, tx, sqlQuery)
	if execErr != nil {
		return execErr
	}

	if rowsAffected == 0 {
		return librarystore.ErrLoanNotFound
	}

	return nil
}
