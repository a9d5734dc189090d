package postgresengine

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"

	"librarysvc/librarystore"
)

// AddBook persists a new book and returns the generated id. The id field of
// the given book is ignored.
func (s Store) AddBook(ctx context.Context, book librarystore.Book) (int64, error) {
	sqlQuery, _, toSQLErr := s.builder().
		Insert(tableBooks).
		Rows(goqu.Record{
			colTitle:             book.Title,
			colAuthor:            book.Author,
			colISBN:              book.ISBN,
			colAvailableQuantity: book.AvailableQuantity,
			colShelfLocation:     book.ShelfLocation,
		}).
		Returning(colID).
		ToSQL()
	if toSQLErr != nil {
		return 0, toSQLErr
	}

	rows, queryErr := s.executeQuery(ctx, sqlQuery)
	if queryErr != nil {
		return 0, queryErr
	}
	defer s.closeRows(rows)

	var id int64
	if !rows.Next() {
		// pgx surfaces server-side errors only here, after iteration.
		rowsErr := rows.Err()
		if rowsErr == nil {
			return 0, errScanFailed
		}

		s.logError(logMsgDBQueryFailed, logAttrError, rowsErr.Error(), logAttrQuery, sqlQuery)

		return 0, rowsErr
	}
	if scanErr := rows.Scan(&id); scanErr != nil {
		s.logError(logMsgScanRowFailed, logAttrError, scanErr.Error())
		return 0, errors.Join(errScanFailed, scanErr)
	}

	s.logOperation("book added", logAttrBookID, id)

	return id, nil
}

// GetBookByID retrieves a book by id. Returns librarystore.ErrBookNotFound
// when no row matches.
func (s Store) GetBookByID(ctx context.Context, id int64) (librarystore.Book, error) {
	var empty librarystore.Book

	sqlQuery, _, toSQLErr := s.builder().
		From(tableBooks).
		Select(colID, colTitle, colAuthor, colISBN, colAvailableQuantity, colShelfLocation).
		Where(goqu.Ex{colID: id}).
		ToSQL()
	if toSQLErr != nil {
		return empty, toSQLErr
	}

	rows, queryErr := s.executeQuery(ctx, sqlQuery)
	if queryErr != nil {
		return empty, queryErr
	}
	defer s.closeRows(rows)

	if !rows.Next() {
		if rowsErr := rows.Err(); rowsErr != nil {
			s.logError(logMsgDBQueryFailed, logAttrError, rowsErr.Error(), logAttrQuery, sqlQuery)
			return empty, rowsErr
		}

		return empty, librarystore.ErrBookNotFound
	}

	var book librarystore.Book
	if scanErr := rows.Scan(&book.ID, &book.Title, &book.Author, &book.ISBN, &book.AvailableQuantity, &book.ShelfLocation); scanErr != nil {
		s.logError(logMsgScanRowFailed, logAttrError, scanErr.Error())
		return empty, errors.Join(errScanFailed, scanErr)
	}

	return book, nil
}

// ListBooks returns all books ordered by id. The result is a finite,
// one-shot slice.
func (s Store) ListBooks(ctx context.Context) ([]librarystore.Book, error) {
	sqlQuery, _, toSQLErr := s.builder().
		From(tableBooks).
		Select(colID, colTitle, colAuthor, colISBN, colAvailableQuantity, colShelfLocation).
		Order(goqu.I(colID).Asc()).
		ToSQL()
	if toSQLErr != nil {
		return nil, toSQLErr
	}

	rows, queryErr := s.executeQuery(ctx, sqlQuery)
	if queryErr != nil {
		return nil, queryErr
	}
	defer s.closeRows(rows)

	books := make([]librarystore.Book, 0)

	for rows.Next() {
		var book librarystore.Book
		if scanErr := rows.Scan(&book.ID, &book.Title, &book.Author, &book.ISBN, &book.AvailableQuantity, &book.ShelfLocation); scanErr != nil {
			s.logError(logMsgScanRowFailed, logAttrError, scanErr.Error())
			return nil, errors.Join(errScanFailed, scanErr)
		}

		books = append(books, book)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		s.logError(logMsgDBQueryFailed, logAttrError, rowsErr.Error(), logAttrQuery, sqlQuery)
		return nil, rowsErr
	}

	return books, nil
}

// UpdateBook partially updates a book. Nil fields keep the stored values; an
// update with no fields set is a no-op. Returns librarystore.ErrBookNotFound
// when no row matches. Direct quantity edits through this method are admin
// stock corrections and bypass the borrow/return consistency guarantees.
func (s Store) UpdateBook(ctx context.Context, id int64, update librarystore.BookUpdate) error {
	record := goqu.Record{}

	if update.Title != nil {
		record[colTitle] = *update.Title
	}
	if update.Author != nil {
		record[colAuthor] = *update.Author
	}
	if update.ISBN != nil {
		record[colISBN] = *update.ISBN
	}
	if update.AvailableQuantity != nil {
		record[colAvailableQuantity] = *update.AvailableQuantity
	}
	if update.ShelfLocation != nil {
		record[colShelfLocation] = *update.ShelfLocation
	}

	if len(record) == 0 {
		return nil
	}

	sqlQuery, _, toSQLErr := s.builder().
		Update(tableBooks).
		Set(record).
		Where(goqu.Ex{colID: id}).
		ToSQL()
	if toSQLErr != nil {
		return toSQLErr
	}

	rowsAffected, execErr := s.executeExec(ctx, sqlQuery)
	if execErr != nil {
		return execErr
	}

	if rowsAffected == 0 {
		return librarystore.ErrBookNotFound
	}

	s.logOperation("book updated", logAttrBookID, id)

	return nil
}

// DeleteBook removes a book by id. Returns librarystore.ErrBookNotFound when
// no row matches. Deleting a book with active loans fails with the foreign
// key violation of the loans table.
func (s Store) DeleteBook(ctx context.Context, id int64) error {
	sqlQuery, _, toSQLErr := s.builder().
		Delete(tableBooks).
		Where(goqu.Ex{colID: id}).
		ToSQL()
	if toSQLErr != nil {
		return toSQLErr
	}

	rowsAffected, execErr := s.executeExec(ctx, sqlQuery)
	if execErr != nil {
		return execErr
	}

	if rowsAffected == 0 {
		return librarystore.ErrBookNotFound
	}

	s.logOperation("book deleted", logAttrBookID, id)

	return nil
}
