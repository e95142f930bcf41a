package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ubonisrael/alx-files-manager/internal/server/service"
)

// SetupRouter creates and configures the echo router with all routes
// and middleware.
func SetupRouter(handler *Handler, users *service.UserService) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Global middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization", TokenHeader},
	}))
	e.Use(RequestLogger())

	auth := SessionAuth(users)

	// Health & stats
	e.GET("/status", handler.HandleStatus)
	e.GET("/stats", handler.HandleStats)

	// Accounts & sessions
	e.POST("/users", handler.HandleCreateUser)
	e.GET("/connect", handler.HandleConnect)
	e.GET("/disconnect", handler.HandleDisconnect, auth)
	e.GET("/users/me", handler.HandleMe, auth)

	// Files
	e.POST("/files", handler.HandleUpload, auth)
	e.GET("/files", handler.HandleList, auth)
	e.GET("/files/:id", handler.HandleShow, auth)
	e.PUT("/files/:id/publish", handler.HandlePublish, auth)
	e.PUT("/files/:id/unpublish", handler.HandleUnpublish, auth)

	// Content retrieval resolves the session itself: failures must be
	// indistinguishable from missing records (404, never 401).
	e.GET("/files/:id/data", handler.HandleData)

	return e
}
