package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ubonisrael/alx-files-manager/internal/server/service"
)

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler contains the HTTP handlers for the files manager API.
type Handler struct {
	users *service.UserService
	auth  *service.AuthService
	files *service.FileService
	db    HealthChecker
	cache HealthChecker
}

// NewHandler creates a new handler with its service dependencies.
func NewHandler(users *service.UserService, auth *service.AuthService, files *service.FileService, db, cache HealthChecker) *Handler {
	return &Handler{users: users, auth: auth, files: files, db: db, cache: cache}
}

// HandleStatus handles GET /status: liveness of both backing stores.
func (h *Handler) HandleStatus(c echo.Context) error {
	ctx := c.Request().Context()
	if h.db.HealthCheck(ctx) != nil || h.cache.HealthCheck(ctx) != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{})
	}
	return c.JSON(http.StatusOK, echo.Map{"redis": true, "db": true})
}

// HandleStats handles GET /stats: user and file record counts.
func (h *Handler) HandleStats(c echo.Context) error {
	ctx := c.Request().Context()

	users, err := h.users.CountUsers(ctx)
	if err != nil {
		return mapServiceError(c, err)
	}
	files, err := h.files.CountFiles(ctx)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"users": users, "files": files})
}

// HandleCreateUser handles POST /users.
func (h *Handler) HandleCreateUser(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return mapServiceError(c, service.ErrMissingEmail)
	}

	user, err := h.users.Register(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

// HandleConnect handles GET /connect: Basic credentials for a token.
func (h *Handler) HandleConnect(c echo.Context) error {
	email, password, ok := c.Request().BasicAuth()
	if !ok {
		return mapServiceError(c, service.ErrUnauthorized)
	}

	token, err := h.auth.Login(c.Request().Context(), email, password)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"token": token})
}

// HandleDisconnect handles GET /disconnect. The route is guarded, so
// only a live session reaches revocation.
func (h *Handler) HandleDisconnect(c echo.Context) error {
	token := c.Request().Header.Get(TokenHeader)
	if err := h.auth.Logout(c.Request().Context(), token); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleMe handles GET /users/me.
func (h *Handler) HandleMe(c echo.Context) error {
	user := currentUser(c)
	return c.JSON(http.StatusOK, service.UserView{ID: user.ID.Hex(), Email: user.Email})
}

// HandleUpload handles POST /files.
func (h *Handler) HandleUpload(c echo.Context) error {
	var req service.UploadRequest
	if err := c.Bind(&req); err != nil {
		return mapServiceError(c, service.ErrMissingName)
	}

	view, err := h.files.Upload(c.Request().Context(), currentUser(c), req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, view)
}

// HandleList handles GET /files with parentId and page query params.
func (h *Handler) HandleList(c echo.Context) error {
	parentID := c.QueryParam("parentId")
	page, err := strconv.ParseInt(c.QueryParam("page"), 10, 64)
	if err != nil {
		page = 0
	}

	views, err := h.files.List(c.Request().Context(), currentUser(c), parentID, page)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, views)
}

// HandleShow handles GET /files/:id.
func (h *Handler) HandleShow(c echo.Context) error {
	view, err := h.files.Get(c.Request().Context(), currentUser(c), c.Param("id"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// HandlePublish handles PUT /files/:id/publish.
func (h *Handler) HandlePublish(c echo.Context) error {
	return h.setVisibility(c, true)
}

// HandleUnpublish handles PUT /files/:id/unpublish.
func (h *Handler) HandleUnpublish(c echo.Context) error {
	return h.setVisibility(c, false)
}

func (h *Handler) setVisibility(c echo.Context, isPublic bool) error {
	view, err := h.files.SetVisibility(c.Request().Context(), currentUser(c), c.Param("id"), isPublic)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// HandleData handles GET /files/:id/data. Unlike the other guarded
// routes, every failure here including a bad token maps to 404 so that
// probing leaks nothing about a record's existence.
func (h *Handler) HandleData(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.users.RequireSession(ctx, c.Request().Header.Get(TokenHeader))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Not found"})
	}

	data, contentType, err := h.files.Content(ctx, user, c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Not found"})
	}
	return c.Blob(http.StatusOK, contentType, data)
}

// mapServiceError translates service-layer errors into HTTP responses.
func mapServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrMissingName),
		errors.Is(err, service.ErrMissingType),
		errors.Is(err, service.ErrMissingData),
		errors.Is(err, service.ErrParentNotFound),
		errors.Is(err, service.ErrParentNotFolder),
		errors.Is(err, service.ErrMissingEmail),
		errors.Is(err, service.ErrMissingPassword),
		errors.Is(err, service.ErrAlreadyExists):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Not found"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
}
