package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"librarysvc/auth"
	"librarysvc/librarystore"
)

const msgBadCredentials = "incorrect email or password"

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (s *Server) registerUser(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "email and password are required"})
	}

	passwordHash, hashErr := auth.HashPassword(req.Password)
	if hashErr != nil {
		return s.respondStoreError(c, hashErr)
	}

	id, addErr := s.store.AddUser(c.Request().Context(), req.Name, req.Email, passwordHash, req.IsAdmin)
	if addErr != nil {
		return s.respondStoreError(c, addErr)
	}

	return c.JSON(http.StatusCreated, messageResponse{Message: "user added successfully", ID: id})
}

// loginUser authenticates by email and password. An unknown email and a
// wrong password produce the same response so callers cannot tell which
// check failed.
func (s *Server) loginUser(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	user, getErr := s.store.GetUserByEmail(c.Request().Context(), req.Email)
	if getErr != nil {
		if errors.Is(getErr, librarystore.ErrUserNotFound) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: msgBadCredentials})
		}

		return s.respondStoreError(c, getErr)
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgBadCredentials})
	}

	token, issueErr := s.codec.Issue(user.ID)
	if issueErr != nil {
		return s.respondStoreError(c, issueErr)
	}

	return c.JSON(http.StatusOK, loginResponse{Message: "login successful", Token: token})
}

func (s *Server) updateUser(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid user id"})
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	update := librarystore.UserUpdate{
		Name:  req.Name,
		Email: req.Email,
	}

	if req.Password != nil {
		passwordHash, hashErr := auth.HashPassword(*req.Password)
		if hashErr != nil {
			return s.respondStoreError(c, hashErr)
		}

		update.PasswordHash = &passwordHash
	}

	if updateErr := s.store.UpdateUser(c.Request().Context(), id, update); updateErr != nil {
		return s.respondStoreError(c, updateErr)
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "user updated successfully"})
}

func (s *Server) deleteCurrentUser(c echo.Context) error {
	if err := s.store.DeleteUser(c.Request().Context(), currentUserID(c)); err != nil {
		return s.respondStoreError(c, err)
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "user deleted successfully"})
}

func (s *Server) listMyBooks(c echo.Context) error {
	loans, err := s.store.ListBooksForUser(c.Request().Context(), currentUserID(c))
	if err != nil {
		return s.respondStoreError(c, err)
	}

	return c.JSON(http.StatusOK, loans)
}
