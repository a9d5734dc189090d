package postgresengine_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"librarysvc/config"
	"librarysvc/librarystore"
	"librarysvc/librarystore/postgresengine"
)

func Test_AddUser_AndGetUserByEmail(t *testing.T) {
	// arrange
	store := givenCleanStore(t)
	ctx := context.Background()

	// act
	id, addErr := store.AddUser(ctx, "Ada", "ada@example.com", "hash-1", false)

	// assert
	require.NoError(t, addErr)
	assert.Positive(t, id)

	user, getErr := store.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, getErr)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, "hash-1", user.PasswordHash)
	assert.False(t, user.IsAdmin)
}

func Test_AddUser_DuplicateEmailIsRejected(t *testing.T) {
	// arrange
	store := givenCleanStore(t)
	ctx := context.Background()
	_, err := store.AddUser(ctx, "Ada", "ada@example.com", "hash-1", false)
	require.NoError(t, err)

	// act
	_, err = store.AddUser(ctx, "Impostor", "ada@example.com", "hash-2", false)

	// assert
	assert.ErrorIs(t, err, librarystore.ErrDuplicateEmail)
}

func Test_GetUserByID_UnknownUser(t *testing.T) {
	// arrange
	store := givenCleanStore(t)

	// act
	_, err := store.GetUserByID(context.Background(), 4711)

	// assert
	assert.ErrorIs(t, err, librarystore.ErrUserNotFound)
}

func Test_UpdateUser_ChangesOnlySuppliedFields(t *testing.T) {
	// arrange
	store := givenCleanStore(t)
	ctx := context.Background()
	id, err := store.AddUser(ctx, "Ada", "ada@example.com", "hash-1", false)
	require.NoError(t, err)

	// act
	newName := "Ada Lovelace"
	err = store.UpdateUser(ctx, id, librarystore.UserUpdate{Name: &newName})

	// assert
	require.NoError(t, err)

	user, getErr := store.GetUserByID(ctx, id)
	require.NoError(t, getErr)
	assert.Equal(t, "Ada Lovelace", user.Name)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "hash-1", user.PasswordHash)
}

func Test_UpdateUser_UnknownUser(t *testing.T) {
	// arrange
	store := givenCleanStore(t)
	newName := "Nobody"

	// act
	err := store.UpdateUser(context.Background(), 4711, librarystore.UserUpdate{Name: &newName})

	// assert
	assert.ErrorIs(t, err, librarystore.ErrUserNotFound)
}

func Test_DeleteUser_RemovesTheAccount(t *testing.T) {
	// arrange
	store := givenCleanStore(t)
	ctx := context.Background()
	id, err := store.AddUser(ctx, "Ada", "ada@example.com", "hash-1", false)
	require.NoError(t, err)

	// act
	err = store.DeleteUser(ctx, id)

	// assert
	require.NoError(t, err)

	_, getErr := store.GetUserByID(ctx, id)
	assert.ErrorIs(t, getErr, librarystore.ErrUserNotFound)
}

func Test_AddBook_AndGetBookByID(t *testing.T) {
	// arrange
	store := givenCleanStore(t)
	ctx := context.Background()

	// act
	id, addErr := store.AddBook(ctx, librarystore.Book{
		Title:             "Dune",
		Author:            "Frank Herbert",
		ISBN:              "978-0441013593",
		AvailableQuantity: 3,
		ShelfLocation:     "A-12",
	})

	// assert
	require.NoError(t, addErr)

	book, getErr := store.GetBookByID(ctx, id)
	require.NoError(t, getErr)
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, 3, book.AvailableQuantity)
	assert.Equal(t, "A-12", book.ShelfLocation)
}

func Test_UpdateBook_ChangesOnlySuppliedFields(t *testing.T) {
	// arrange
	store := givenCleanStore(t)
	ctx := context.Background()
	id := givenBook(t, store, "Dune", 3)

	// act
	newShelf := "B-7"
	err := store.UpdateBook(ctx, id, librarystore.BookUpdate{ShelfLocation: &newShelf})

	// assert
	require.NoError(t, err)

	book, getErr := store.GetBookByID(ctx, id)
	require.NoError(t, getErr)
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, "B-7", book.ShelfLocation)
	assert.Equal(t, 3, book.AvailableQuantity)
}

func Test_DeleteBook_UnknownBook(t *testing.T) {
	// arrange
	store := givenCleanStore(t)

	// act
	err := store.DeleteBook(context.Background(), 4711)

	// assert
	assert.ErrorIs(t, err, librarystore.ErrBookNotFound)
}

func Test_BorrowBook_DecrementsAvailableQuantity(t *testing.T) {
	// arrange
	store := givenCleanStore(t)
	ctx := context.Background()
	userID := givenUser(t, store, "ada@example.com")
	bookID := givenBook(t, store, "Dune", 2)

	// act
	err := store.BorrowBook(ctx, userID, bookID, givenDueDate(t, "2026-09-15"))

	// assert
	require.NoError(t, err)

	book, getErr := store.GetBookByID(ctx, bookID)
	require.NoError(t, getErr)
	assert.Equal(t, 1, book.AvailableQuantity)
}

func Test_BorrowBook_SameBookTwiceIsRejected(t *testing.T) {
	// arrange
	store := givenCleanStore(t)
	ctx := context.Background()
	userID := givenUser(t, store, "ada@example.com")
	bookID := givenBook(t, store, "Dune", 2)
	require.NoError(t, store.BorrowBook(ctx, userID, bookID, givenDueDate(t, "2026-09-15")))

	// act
	err := store.BorrowBook(ctx, userID, bookID, givenDueDate(t, "2026-10-01"))

	// assert
	assert.ErrorIs(t, err, librarystore.ErrDuplicateLoan)

	book, getErr := store.GetBookByID(ctx, bookID)
	require.NoError(t, getErr)
	assert.Equal(t, 1, book.AvailableQuantity, "failed borrow must not change the stock")
}

func Test_BorrowBook_OutOfStock(t *testing.T) {
	// arrange
	store := givenCleanStore(t)
	ctx := context.Background()
	firstUser := givenUser(t, store, "ada@example.com")
	secondUser := givenUser(t, store, "grace@example.com")
	bookID := givenBook(t, store, "Dune", 1)
	require.NoError(t, store.BorrowBook(ctx, firstUser, bookID, givenDueDate(t, "2026-09-15")))

	// act
	err := store.BorrowBook(ctx, secondUser, bookID, givenDueDate(t, "2026-09-15"))

	// assert
	assert.ErrorIs(t, err, librarystore.ErrOutOfStock)
}

func Test_BorrowBook_UnknownBook(t *testing.T) {
	// arrange
	store := givenCleanStore(t)
	userID := givenUser(t, store, "ada@example.com")

	// act
	err := store.BorrowBook(context.Background(), userID, 4711, givenDueDate(t, "2026-09-15"))

	// assert
	assert.ErrorIs(t, err, librarystore.ErrBookNotFound)
}

func Test_BorrowBook_UnknownUser(t *testing.T) {
	// arrange
	store := givenCleanStore(t)
	ctx := context.Background()
	bookID := givenBook(t, store, "Dune", 1)

	// act
	err := store.BorrowBook(ctx, 4711, bookID, givenDueDate(t, "2026-09-15"))

	// assert
	assert.ErrorIs(t, err, librarystore.ErrUserNotFound)

	book, getErr := store.GetBookByID(ctx, bookID)
	require.NoError(t, getErr)
	assert.Equal(t, 1, book.AvailableQuantity, "failed borrow must not change the stock")
}

func Test_ReturnBook_RestoresAvailableQuantity(t *testing.T) {
	// arrange
	store := givenCleanStore(t)
	ctx := context.Background()
	userID := givenUser(t, store, "ada@example.com")
	bookID := givenBook(t, store, "Dune", 1)
	require.NoError(t, store.BorrowBook(ctx, userID, bookID, givenDueDate(t, "2026-09-15")))

	// act
	err := store.ReturnBook(ctx, userID, bookID)

	// assert
	require.NoError(t, err)

	book, getErr := store.GetBookByID(ctx, bookID)
	require.NoError(t, getErr)
	assert.Equal(t, 1, book.AvailableQuantity)

	loans, listErr := store.ListBooksForUser(ctx, userID)
	require.NoError(t, listErr)
	assert.Empty(t, loans)
}

func Test_ReturnBook_WithoutLoan(t *testing.T) {
	// arrange
	store := givenCleanStore(t)
	userID := givenUser(t, store, "ada@example.com")
	bookID := givenBook(t, store, "Dune", 1)

	// act
	err := store.ReturnBook(context.Background(), userID, bookID)

	// assert
	assert.ErrorIs(t, err, librarystore.ErrLoanNotFound)
}

func Test_ListBorrowedBooks_JoinsUserAndBookFields(t *testing.T) {
	// arrange
	store := givenCleanStore(t)
	ctx := context.Background()
	userID := givenUser(t, store, "ada@example.com")
	bookID := givenBook(t, store, "Dune", 2)
	require.NoError(t, store.BorrowBook(ctx, userID, bookID, givenDueDate(t, "2026-09-15")))

	// act
	loans, err := store.ListBorrowedBooks(ctx)

	// assert
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, userID, loans[0].UserID)
	assert.Equal(t, "ada@example.com", loans[0].Email)
	assert.Equal(t, bookID, loans[0].BookID)
	assert.Equal(t, "Dune", loans[0].Title)
	assert.Equal(t, "2026-09-15", loans[0].DueDate.String())
}

func Test_ListOverdueBooks_ReturnsOnlyPastDueLoans(t *testing.T) {
	// arrange
	store := givenCleanStore(t)
	ctx := context.Background()
	userID := givenUser(t, store, "ada@example.com")
	overdueBook := givenBook(t, store, "Dune", 1)
	currentBook := givenBook(t, store, "The Left Hand of Darkness", 1)

	yesterday := librarystore.NewDate(time.Now().AddDate(0, 0, -1))
	nextMonth := librarystore.NewDate(time.Now().AddDate(0, 1, 0))
	require.NoError(t, store.BorrowBook(ctx, userID, overdueBook, yesterday))
	require.NoError(t, store.BorrowBook(ctx, userID, currentBook, nextMonth))

	// act
	loans, err := store.ListOverdueBooks(ctx)

	// assert
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, overdueBook, loans[0].BookID)
}

// -- fixtures --

func givenCleanStore(t *testing.T) postgresengine.Store {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config.PostgresPGXPoolTestConfig())
	require.NoError(t, err)

	if pingErr := pool.Ping(ctx); pingErr != nil {
		pool.Close()
		t.Skipf("postgres not reachable: %s", pingErr)
	}

	t.Cleanup(pool.Close)

	store, err := postgresengine.NewStoreFromPGXPool(pool)
	require.NoError(t, err)

	require.NoError(t, store.CreateSchema(ctx))

	_, err = pool.Exec(ctx, "TRUNCATE user_books, users, books RESTART IDENTITY CASCADE")
	require.NoError(t, err)

	return store
}

func givenUser(t *testing.T, store postgresengine.Store, email string) int64 {
	t.Helper()

	id, err := store.AddUser(context.Background(), "Reader", email, "hash", false)
	require.NoError(t, err)

	return id
}

func givenBook(t *testing.T, store postgresengine.Store, title string, quantity int) int64 {
	t.Helper()

	id, err := store.AddBook(context.Background(), librarystore.Book{
		Title:             title,
		Author:            "Test Author",
		ISBN:              "000-0000000000",
		AvailableQuantity: quantity,
		ShelfLocation:     "A-1",
	})
	require.NoError(t, err)

	return id
}

func givenDueDate(t *testing.T, value string) librarystore.Date {
	t.Helper()

	date, err := librarystore.ParseDate(value)
	require.NoError(t, err)

	return date
}
