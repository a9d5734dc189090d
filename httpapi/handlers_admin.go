package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"librarysvc/librarystore"
)

type addBookRequest struct {
	Title             string `json:"title"`
	Author            string `json:"author"`
	ISBN              string `json:"isbn"`
	AvailableQuantity int    `json:"available_quantity"`
	ShelfLocation     string `json:"shelf_location"`
}

type updateBookRequest struct {
	Title             *string `json:"title"`
	Author            *string `json:"author"`
	ISBN              *string `json:"isbn"`
	AvailableQuantity *int    `json:"available_quantity"`
	ShelfLocation     *string `json:"shelf_location"`
}

func (s *Server) addBook(c echo.Context) error {
	var req addBookRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "title is required"})
	}
	if req.AvailableQuantity < 0 {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "available_quantity must not be negative"})
	}

	id, addErr := s.store.AddBook(c.Request().Context(), librarystore.Book{
		Title:             req.Title,
		Author:            req.Author,
		ISBN:              req.ISBN,
		AvailableQuantity: req.AvailableQuantity,
		ShelfLocation:     req.ShelfLocation,
	})
	if addErr != nil {
		return s.respondStoreError(c, addErr)
	}

	return c.JSON(http.StatusCreated, messageResponse{Message: "book added successfully", ID: id})
}

func (s *Server) updateBook(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid book id"})
	}

	var req updateBookRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	if req.AvailableQuantity != nil && *req.AvailableQuantity < 0 {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "available_quantity must not be negative"})
	}

	update := librarystore.BookUpdate{
		Title:             req.Title,
		Author:            req.Author,
		ISBN:              req.ISBN,
		AvailableQuantity: req.AvailableQuantity,
		ShelfLocation:     req.ShelfLocation,
	}

	if updateErr := s.store.UpdateBook(c.Request().Context(), id, update); updateErr != nil {
		return s.respondStoreError(c, updateErr)
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "book updated successfully"})
}

func (s *Server) deleteBook(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid book id"})
	}

	if deleteErr := s.store.DeleteBook(c.Request().Context(), id); deleteErr != nil {
		return s.respondStoreError(c, deleteErr)
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "book deleted successfully"})
}

func (s *Server) listUsers(c echo.Context) error {
	users, err := s.store.ListUsers(c.Request().Context())
	if err != nil {
		return s.respondStoreError(c, err)
	}

	if len(users) == 0 {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "list empty"})
	}

	return c.JSON(http.StatusOK, users)
}

func (s *Server) getUser(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid user id"})
	}

	user, getErr := s.store.GetUserByID(c.Request().Context(), id)
	if getErr != nil {
		return s.respondStoreError(c, getErr)
	}

	return c.JSON(http.StatusOK, user)
}

func (s *Server) listBorrowedBooks(c echo.Context) error {
	loans, err := s.store.ListBorrowedBooks(c.Request().Context())
	if err != nil {
		return s.respondStoreError(c, err)
	}

	if len(loans) == 0 {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "list empty"})
	}

	return c.JSON(http.StatusOK, loans)
}

func (s *Server) listOverdueBooks(c echo.Context) error {
	loans, err := s.store.ListOverdueBooks(c.Request().Context())
	if err != nil {
		return s.respondStoreError(c, err)
	}

	if len(loans) == 0 {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "list empty"})
	}

	return c.JSON(http.StatusOK, loans)
}
