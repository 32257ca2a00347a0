package middleware

import (
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"solarsizing/internal/auth"
	apperrors "solarsizing/internal/errors"
	"solarsizing/internal/model"
	"solarsizing/internal/service"
)

// Context keys set by Authenticate.
const (
	ClaimsKey = "token_claims"
	UserKey   = "current_user"
)

const bearerPrefix = "bearer "

// Authenticate verifies the bearer token and loads its user into the request
// context.
func Authenticate(authService service.AuthService) echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		ContextKey:  ClaimsKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return authService.VerifyToken(c.Request().Context(), token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if !hasBearerToken(c.Request().Header.Get(echo.HeaderAuthorization)) {
				return apperrors.ToHTTPError(apperrors.ErrMissingToken)
			}
			return apperrors.ToHTTPError(apperrors.ErrInvalidToken)
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(func(c echo.Context) error {
			claims, ok := c.Get(ClaimsKey).(*auth.Claims)
			if !ok {
				return apperrors.ToHTTPError(apperrors.ErrInvalidToken)
			}
			user, err := authService.UserFromClaims(c.Request().Context(), claims)
			if err != nil {
				return apperrors.ToHTTPError(err)
			}
			c.Set(UserKey, user)
			return next(c)
		})
	}
}

// RequireActive rejects users that have not completed payment. It must run
// after Authenticate.
func RequireActive(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := CurrentUser(c)
		if user == nil {
			return apperrors.ToHTTPError(apperrors.ErrMissingToken)
		}
		if !user.IsActive {
			return apperrors.ToHTTPError(apperrors.ErrPaymentRequired)
		}
		return next(c)
	}
}

// CurrentUser returns the authenticated user, or nil outside Authenticate.
func CurrentUser(c echo.Context) *model.User {
	user, _ := c.Get(UserKey).(*model.User)
	return user
}

// Claims returns the verified token claims, or nil outside Authenticate.
func Claims(c echo.Context) *auth.Claims {
	claims, _ := c.Get(ClaimsKey).(*auth.Claims)
	return claims
}

func hasBearerToken(header string) bool {
	if len(header) <= len(bearerPrefix) {
		return false
	}
	return strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) &&
		strings.TrimSpace(header[len(bearerPrefix):]) != ""
}
