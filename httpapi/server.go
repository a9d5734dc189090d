package httpapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"librarysvc/auth"
	"librarysvc/librarystore"
)

// Store is the storage contract the HTTP layer depends on. The Postgres
// engine satisfies it; tests substitute an in-memory fake.
type Store interface {
	AddUser(ctx context.Context, name, email, passwordHash string, isAdmin bool) (int64, error)
	GetUserByID(ctx context.Context, id int64) (librarystore.User, error)
	GetUserByEmail(ctx context.Context, email string) (librarystore.User, error)
	ListUsers(ctx context.Context) ([]librarystore.User, error)
	UpdateUser(ctx context.Context, id int64, update librarystore.UserUpdate) error
	DeleteUser(ctx context.Context, id int64) error

	AddBook(ctx context.Context, book librarystore.Book) (int64, error)
	GetBookByID(ctx context.Context, id int64) (librarystore.Book, error)
	ListBooks(ctx context.Context) ([]librarystore.Book, error)
	UpdateBook(ctx context.Context, id int64, update librarystore.BookUpdate) error
	DeleteBook(ctx context.Context, id int64) error

	ListBorrowedBooks(ctx context.Context) ([]librarystore.BorrowedBook, error)
	ListOverdueBooks(ctx context.Context) ([]librarystore.BorrowedBook, error)
	ListBooksForUser(ctx context.Context, userID int64) ([]librarystore.BorrowedBook, error)

	BorrowBook(ctx context.Context, userID, bookID int64, dueDate librarystore.Date) error
	ReturnBook(ctx context.Context, userID, bookID int64) error
}

// Server is the REST surface of the library backend. Routing and request
// plumbing live here; all domain decisions are made by the Store.
type Server struct {
	echo   *echo.Echo
	store  Store
	codec  *auth.TokenCodec
	logger librarystore.Logger
}

// NewServer wires the Echo instance, the JSON serializer, the middleware
// chain and all routes.
func NewServer(store Store, codec *auth.TokenCodec, logger librarystore.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsonSerializer{}

	s := &Server{
		echo:   e,
		store:  store,
		codec:  codec,
		logger: logger,
	}

	e.Use(s.requestLogger)

	v1 := e.Group("/api/v1")

	v1.POST("/users", s.registerUser)
	v1.POST("/users/login", s.loginUser)
	v1.PATCH("/users/:id", s.updateUser, s.bearerAuth)
	v1.DELETE("/users", s.deleteCurrentUser, s.bearerAuth)
	v1.GET("/mybooks", s.listMyBooks, s.bearerAuth)

	v1.GET("/books", s.listBooks)
	v1.GET("/books/:id", s.getBook)
	v1.POST("/books/borrow", s.borrowBook, s.bearerAuth)
	v1.POST("/books/return", s.returnBook, s.bearerAuth)

	admin := v1.Group("/admin", s.bearerAuth, s.requireAdmin)
	admin.POST("/books", s.addBook)
	admin.PATCH("/books/:id", s.updateBook)
	admin.DELETE("/books/:id", s.deleteBook)
	admin.GET("/users", s.listUsers)
	admin.GET("/users/:id", s.getUser)
	admin.GET("/borrowedbooks", s.listBorrowedBooks)
	admin.GET("/overdue", s.listOverdueBooks)

	return s
}

// Handler exposes the underlying handler for tests and custom servers.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start begins serving on the given address and blocks until the server
// stops.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
