package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "userhub/internal/errors"
	"userhub/internal/service"
)

// SeedHandler exposes a convenience endpoint that loads demo users.
type SeedHandler struct {
	userSvc service.UserService
}

// NewSeedHandler creates a new seed handler.
func NewSeedHandler(userSvc service.UserService) *SeedHandler {
	return &SeedHandler{userSvc: userSvc}
}

// SeedUsersResponse represents the seed response.
type SeedUsersResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// demoUsers is the fixed set created by the seed endpoint and the seed CLI.
var demoUsers = []service.CreateUserInput{
	{Name: "Ann", Email: "ann@example.com", Password: "secretpass", Age: intPtr(30)},
	{Name: "Bob", Email: "bob@example.com", Password: "hunter2hunter2", Age: intPtr(42)},
	{Name: "Carol", Email: "carol@example.com", Password: "correcthorse"},
}

// DemoUsers returns the seed fixtures.
func DemoUsers() []service.CreateUserInput {
	return demoUsers
}

// SeedUsers godoc
// @Summary Seed demo users
// @Tags seed
// @Produce json
// @Success 200 {object} SeedUsersResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /seed/users [get]
func (h *SeedHandler) SeedUsers(c echo.Context) error {
	count := 0
	for _, in := range demoUsers {
		_, err := h.userSvc.Create(c.Request().Context(), in)
		if err != nil {
			// Re-running the seed is fine; existing demo users are skipped.
			if errors.Is(err, apperrors.ErrEmailTaken) {
				continue
			}
			return httpError(err)
		}
		count++
	}

	return c.JSON(http.StatusOK, SeedUsersResponse{
		Message: "demo users seeded successfully",
		Count:   count,
	})
}

func intPtr(v int) *int {
	return &v
}
