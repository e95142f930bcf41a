package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ubonisrael/alx-files-manager/internal/server/database"
	"github.com/ubonisrael/alx-files-manager/internal/server/service"
)

// TokenHeader is the request header carrying the session token.
const TokenHeader = "X-Token"

const userContextKey = "authenticated-user"

// RequestLogger returns an echo middleware that logs requests using slog.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			req := c.Request()
			res := c.Response()

			slog.Info("request",
				"method", req.Method,
				"path", req.URL.Path,
				"status", res.Status,
				"latency_ms", time.Since(start).Milliseconds(),
				"ip", c.RealIP(),
				"user_agent", req.UserAgent(),
				"bytes_out", res.Size,
			)

			return err
		}
	}
}

// SessionAuth returns an echo middleware that resolves the X-Token
// header to a user and stores it on the request context. Requests
// without a valid session are rejected with 401.
func SessionAuth(users *service.UserService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := c.Request().Header.Get(TokenHeader)

			user, err := users.RequireSession(c.Request().Context(), token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// currentUser returns the user resolved by SessionAuth.
func currentUser(c echo.Context) *database.User {
	user, _ := c.Get(userContextKey).(*database.User)
	return user
}
