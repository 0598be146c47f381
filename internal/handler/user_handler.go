package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "userhub/internal/errors"
	"userhub/internal/model"
	"userhub/internal/service"
)

// UserHandler bundles the public user endpoints.
type UserHandler struct {
	userSvc service.UserService
	authSvc service.AuthService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(userSvc service.UserService, authSvc service.AuthService) *UserHandler {
	return &UserHandler{userSvc: userSvc, authSvc: authSvc}
}

// SignupRequest represents a signup payload.
type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Age      *int   `json:"age" validate:"omitempty,min=1"`
}

// SignupResponse is returned on successful signup.
type SignupResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// Signup godoc
// @Summary Create a new user account
// @Tags users
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Signup data"
// @Success 201 {object} SignupResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users [post]
func (h *UserHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userSvc.Create(c.Request().Context(), service.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
	})
	if err != nil {
		return httpError(err)
	}

	token, err := h.authSvc.IssueToken(c.Request().Context(), user)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, SignupResponse{User: user, Token: token})
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {array} model.User
// @Failure 500 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.userSvc.List(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}

// GetUser godoc
// @Summary Get user by id or name
// @Description UUID-shaped keys resolve by id, anything else by name (oldest match wins).
// @Tags users
// @Produce json
// @Param key path string true "User id or name"
// @Success 200 {object} model.User
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{key} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.resolveByKey(c)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateUser godoc
// @Summary Update user by id or name
// @Tags users
// @Accept json
// @Produce json
// @Param key path string true "User id or name"
// @Param updates body map[string]interface{} true "Subset of name, age, email, password"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{key} [patch]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	updates := map[string]any{}
	if err := c.Bind(&updates); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, err := h.resolveByKey(c)
	if err != nil {
		return httpError(err)
	}

	updated, err := h.userSvc.Update(c.Request().Context(), user.ID, updates)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteUser godoc
// @Summary Delete user by id or name
// @Tags users
// @Produce json
// @Param key path string true "User id or name"
// @Success 200 {object} model.User
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{key} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	user, err := h.resolveByKey(c)
	if err != nil {
		return httpError(err)
	}

	deleted, err := h.userSvc.Delete(c.Request().Context(), user.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, deleted)
}

// resolveByKey looks up the :key path param, by id when it parses as a UUID
// and by name otherwise.
func (h *UserHandler) resolveByKey(c echo.Context) (*model.User, error) {
	key := c.Param("key")
	if key == "" {
		return nil, apperrors.ErrUserNotFound
	}
	if id, err := uuid.Parse(key); err == nil {
		return h.userSvc.GetByID(c.Request().Context(), id)
	}
	return h.userSvc.GetByName(c.Request().Context(), key)
}

// httpError converts a domain error into an echo error with the standard body.
func httpError(err error) *echo.HTTPError {
	he := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
}
