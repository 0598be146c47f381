package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"userhub/internal/auth"
	"userhub/internal/config"
	apperrors "userhub/internal/errors"
	"userhub/internal/handler"
	"userhub/internal/repository"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	userHandler *handler.UserHandler,
	authHandler *handler.AuthHandler,
	seedHandler *handler.SeedHandler,
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Public routes
	e.POST("/users", userHandler.Signup)
	e.GET("/users", userHandler.ListUsers)
	e.POST("/users/login", authHandler.Login)
	e.GET("/seed/users", seedHandler.SeedUsers)

	// Key routes resolve a UUID by id and anything else by name. Static
	// paths (login, me, logout) win over :key in echo's router.
	e.GET("/users/:key", userHandler.GetUser)
	e.PATCH("/users/:key", userHandler.UpdateUser)
	e.DELETE("/users/:key", userHandler.DeleteUser)

	// Secured routes: echo-jwt verifies the signature, then the auth gate
	// resolves the user and checks the token is still active.
	secured := e.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(cfg.JWTSecret),
		// The third segment strips the scheme; echo-jwt has no implicit
		// "Bearer " handling.
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			// Uniform failure body, no detail leaked.
			he := apperrors.MapErrorToHTTP(apperrors.ErrAuthentication)
			return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
		},
	}), auth.RequireActiveToken(userRepo, tokenRepo))

	secured.POST("/users/logout", authHandler.Logout)
	secured.POST("/users/logoutAll", authHandler.LogoutAll)
	secured.GET("/users/me", authHandler.Me)
	secured.PATCH("/users/me", authHandler.UpdateMe)
	secured.DELETE("/users/me", authHandler.DeleteMe)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
