package auth

import (
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"

	apperrors "userhub/internal/errors"
	"userhub/internal/model"
	"userhub/internal/repository"
)

const (
	// ContextUserKey is the echo context key holding the resolved user.
	ContextUserKey = "currentUser"
	// ContextTokenKey is the echo context key holding the raw bearer token.
	// Logout needs the literal string to delete the matching row.
	ContextTokenKey = "currentToken"
)

// RequireActiveToken completes the auth gate after signature verification.
// The echo-jwt middleware runs first and leaves the parsed token in the
// context; this stage resolves the user and confirms the token has not been
// revoked by a logout. Every failure maps to the same uninformative 401.
func RequireActiveToken(users repository.UserRepository, tokens repository.TokenRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			parsed, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return unauthorized()
			}
			claims, ok := parsed.Claims.(*Claims)
			if !ok {
				return unauthorized()
			}

			userID, err := claims.ParseUserID()
			if err != nil {
				return unauthorized()
			}

			ctx := c.Request().Context()
			user, err := users.FindByID(ctx, userID)
			if err != nil {
				return unauthorized()
			}

			active, err := tokens.Exists(ctx, user.ID, parsed.Raw)
			if err != nil || !active {
				return unauthorized()
			}

			c.Set(ContextUserKey, user)
			c.Set(ContextTokenKey, parsed.Raw)
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user attached by the auth gate.
func CurrentUser(c echo.Context) (*model.User, bool) {
	user, ok := c.Get(ContextUserKey).(*model.User)
	return user, ok
}

// CurrentToken returns the raw bearer token attached by the auth gate.
func CurrentToken(c echo.Context) (string, bool) {
	token, ok := c.Get(ContextTokenKey).(string)
	return token, ok
}

func unauthorized() *echo.HTTPError {
	httpErr := apperrors.MapErrorToHTTP(apperrors.ErrAuthentication)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}
