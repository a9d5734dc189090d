package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"librarysvc/librarystore"
)

// contextKeyUserID carries the authenticated user's id through the request.
const contextKeyUserID = "librarysvc.user_id"

// requestLogger attaches a request id and logs every handled request with
// method, path, status and duration.
func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := uuid.NewString()
		c.Response().Header().Set(echo.HeaderXRequestID, requestID)

		start := time.Now()

		if err := next(c); err != nil {
			c.Error(err)
		}

		if s.logger != nil {
			s.logger.Info("request handled",
				"request_id", requestID,
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"duration_ms", float64(time.Since(start).Microseconds())/1000,
			)
		}

		return nil
	}
}

// bearerAuth is the access gate: it resolves the calling identity from the
// Authorization header and stores the user id in the request context. It
// rejects missing, malformed or invalid tokens with 401 before any further
// processing. It does not check that the user still exists.
func (s *Server) bearerAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := s.codec.Authenticate(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "please authenticate")
		}

		c.Set(contextKeyUserID, userID)

		return next(c)
	}
}

// requireAdmin resolves the authenticated user and rejects non-admin
// callers. Runs after bearerAuth.
func (s *Server) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := s.store.GetUserByID(c.Request().Context(), currentUserID(c))
		if err != nil {
			if errors.Is(err, librarystore.ErrUserNotFound) {
				return echo.NewHTTPError(http.StatusUnauthorized, "please authenticate")
			}

			return s.respondStoreError(c, err)
		}

		if !user.IsAdmin {
			return echo.NewHTTPError(http.StatusBadRequest, "please sign in with an administrator")
		}

		return next(c)
	}
}

func currentUserID(c echo.Context) int64 {
	userID, _ := c.Get(contextKeyUserID).(int64)
	return userID
}
