package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"librarysvc/librarystore"
)

type messageResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// respondStoreError maps domain-expected outcomes to 400/404 responses and
// everything else to a generic 500 without leaking internal detail.
func (s *Server) respondStoreError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, librarystore.ErrUserNotFound),
		errors.Is(err, librarystore.ErrBookNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: unwrapSentinel(err)})

	case errors.Is(err, librarystore.ErrDuplicateLoan),
		errors.Is(err, librarystore.ErrOutOfStock),
		errors.Is(err, librarystore.ErrLoanNotFound):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: unwrapSentinel(err)})

	default:
		if s.logger != nil {
			s.logger.Error("storage failure", "error", err.Error())
		}

		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

// unwrapSentinel renders only the leading sentinel message of a joined
// error, keeping driver details out of response bodies.
func unwrapSentinel(err error) string {
	for _, sentinel := range []error{
		librarystore.ErrUserNotFound,
		librarystore.ErrBookNotFound,
		librarystore.ErrDuplicateLoan,
		librarystore.ErrOutOfStock,
		librarystore.ErrLoanNotFound,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}

	return err.Error()
}
