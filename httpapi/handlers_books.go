package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"librarysvc/librarystore"
)

type borrowRequest struct {
	BookID  int64             `json:"book_id"`
	DueDate librarystore.Date `json:"due_date"`
}

type returnRequest struct {
	BookID int64 `json:"book_id"`
}

func parseIDParam(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func (s *Server) listBooks(c echo.Context) error {
	books, err := s.store.ListBooks(c.Request().Context())
	if err != nil {
		return s.respondStoreError(c, err)
	}

	if len(books) == 0 {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "list empty"})
	}

	return c.JSON(http.StatusOK, books)
}

func (s *Server) getBook(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid book id"})
	}

	book, getErr := s.store.GetBookByID(c.Request().Context(), id)
	if getErr != nil {
		return s.respondStoreError(c, getErr)
	}

	return c.JSON(http.StatusOK, book)
}

func (s *Server) borrowBook(c echo.Context) error {
	var req borrowRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	if req.BookID == 0 {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "book_id is required"})
	}
	if req.DueDate.IsZero() {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "due_date is required (YYYY-MM-DD)"})
	}

	if err := s.store.BorrowBook(c.Request().Context(), currentUserID(c), req.BookID, req.DueDate); err != nil {
		// A missing borrower means the account behind a still-valid token
		// was deleted; that is an authentication failure, not a 404.
		if errors.Is(err, librarystore.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "please authenticate")
		}

		return s.respondStoreError(c, err)
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "borrowed successfully"})
}

func (s *Server) returnBook(c echo.Context) error {
	var req returnRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	if req.BookID == 0 {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "book_id is required"})
	}

	if err := s.store.ReturnBook(c.Request().Context(), currentUserID(c), req.BookID); err != nil {
		return s.respondStoreError(c, err)
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "returned successfully"})
}
