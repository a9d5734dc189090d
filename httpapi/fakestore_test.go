package httpapi_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"librarysvc/librarystore"
)

// fakeStore is an in-memory Store with the same observable semantics as the
// Postgres engine: one loan per user and book, guarded stock counters, and
// the engine's sentinel errors.
type fakeStore struct {
	mu         sync.Mutex
	users      map[int64]librarystore.User
	books      map[int64]librarystore.Book
	loans      map[loanKey]librarystore.Date
	nextUserID int64
	nextBookID int64
}

type loanKey struct {
	userID int64
	bookID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      make(map[int64]librarystore.User),
		books:      make(map[int64]librarystore.Book),
		loans:      make(map[loanKey]librarystore.Date),
		nextUserID: 1,
		nextBookID: 1,
	}
}

func (f *fakeStore) AddUser(_ context.Context, name, email, passwordHash string, isAdmin bool) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.Email == email {
			return 0, librarystore.ErrDuplicateEmail
		}
	}

	id := f.nextUserID
	f.nextUserID++
	f.users[id] = librarystore.User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		IsAdmin:      isAdmin,
	}

	return id, nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id int64) (librarystore.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return librarystore.User{}, librarystore.ErrUserNotFound
	}

	return user, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (librarystore.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}

	return librarystore.User{}, librarystore.ErrUserNotFound
}

func (f *fakeStore) ListUsers(_ context.Context) ([]librarystore.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	users := make([]librarystore.User, 0, len(f.users))
	for _, user := range f.users {
		users = append(users, user)
	}

	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	return users, nil
}

func (f *fakeStore) UpdateUser(_ context.Context, id int64, update librarystore.UserUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return librarystore.ErrUserNotFound
	}

	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.PasswordHash != nil {
		user.PasswordHash = *update.PasswordHash
	}

	f.users[id] = user

	return nil
}

func (f *fakeStore) DeleteUser(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[id]; !ok {
		return librarystore.ErrUserNotFound
	}

	delete(f.users, id)

	return nil
}

func (f *fakeStore) AddBook(_ context.Context, book librarystore.Book) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextBookID
	f.nextBookID++
	book.ID = id
	f.books[id] = book

	return id, nil
}

func (f *fakeStore) GetBookByID(_ context.Context, id int64) (librarystore.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	book, ok := f.books[id]
	if !ok {
		return librarystore.Book{}, librarystore.ErrBookNotFound
	}

	return book, nil
}

func (f *fakeStore) ListBooks(_ context.Context) ([]librarystore.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	books := make([]librarystore.Book, 0, len(f.books))
	for _, book := range f.books {
		books = append(books, book)
	}

	sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })

	return books, nil
}

func (f *fakeStore) UpdateBook(_ context.Context, id int64, update librarystore.BookUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	book, ok := f.books[id]
	if !ok {
		return librarystore.ErrBookNotFound
	}

	if update.Title != nil {
		book.Title = *update.Title
	}
	if update.Author != nil {
		book.Author = *update.Author
	}
	if update.ISBN != nil {
		book.ISBN = *update.ISBN
	}
	if update.AvailableQuantity != nil {
		book.AvailableQuantity = *update.AvailableQuantity
	}
	if update.ShelfLocation != nil {
		book.ShelfLocation = *update.ShelfLocation
	}

	f.books[id] = book

	return nil
}

func (f *fakeStore) DeleteBook(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.books[id]; !ok {
		return librarystore.ErrBookNotFound
	}

	delete(f.books, id)

	return nil
}

func (f *fakeStore) ListBorrowedBooks(_ context.Context) ([]librarystore.BorrowedBook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.borrowedBooksLocked(func(loanKey) bool { return true }), nil
}

func (f *fakeStore) ListOverdueBooks(_ context.Context) ([]librarystore.BorrowedBook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	today := librarystore.NewDate(time.Now())

	return f.borrowedBooksLocked(func(key loanKey) bool {
		return f.loans[key].Before(today.Time)
	}), nil
}

func (f *fakeStore) ListBooksForUser(_ context.Context, userID int64) ([]librarystore.BorrowedBook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.borrowedBooksLocked(func(key loanKey) bool {
		return key.userID == userID
	}), nil
}

func (f *fakeStore) borrowedBooksLocked(include func(loanKey) bool) []librarystore.BorrowedBook {
	loans := make([]librarystore.BorrowedBook, 0)
	for key, dueDate := range f.loans {
		if !include(key) {
			continue
		}

		user := f.users[key.userID]
		book := f.books[key.bookID]
		loans = append(loans, librarystore.BorrowedBook{
			UserID:   key.userID,
			UserName: user.Name,
			Email:    user.Email,
			BookID:   key.bookID,
			Title:    book.Title,
			Author:   book.Author,
			DueDate:  dueDate,
		})
	}

	sort.Slice(loans, func(i, j int) bool {
		return loans[i].DueDate.Before(loans[j].DueDate.Time)
	})

	return loans
}

func (f *fakeStore) BorrowBook(_ context.Context, userID, bookID int64, dueDate librarystore.Date) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.loans[loanKey{userID: userID, bookID: bookID}]; ok {
		return librarystore.ErrDuplicateLoan
	}

	if _, ok := f.users[userID]; !ok {
		return librarystore.ErrUserNotFound
	}

	book, ok := f.books[bookID]
	if !ok {
		return librarystore.ErrBookNotFound
	}

	if book.AvailableQuantity == 0 {
		return librarystore.ErrOutOfStock
	}

	book.AvailableQuantity--
	f.books[bookID] = book
	f.loans[loanKey{userID: userID, bookID: bookID}] = dueDate

	return nil
}

func (f *fakeStore) ReturnBook(_ context.Context, userID, bookID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.loans[loanKey{userID: userID, bookID: bookID}]; !ok {
		return librarystore.ErrLoanNotFound
	}

	delete(f.loans, loanKey{userID: userID, bookID: bookID})

	book, ok := f.books[bookID]
	if !ok {
		return librarystore.ErrBookNotFound
	}

	book.AvailableQuantity++
	f.books[bookID] = book

	return nil
}
