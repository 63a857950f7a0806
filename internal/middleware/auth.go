package middleware

import (
	stderrors "errors"
	"strings"

	"github.com/ggegelya/expensetracker/internal/errors"
	"github.com/ggegelya/expensetracker/internal/handlers"
	"github.com/ggegelya/expensetracker/internal/services"

	"github.com/labstack/echo/v4"
)

// RequireDeviceToken creates a middleware that requires a valid paired-device
// token on the mutation surface
func RequireDeviceToken(tokenService services.TokenServiceInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return handlers.SendError(c, errors.SyncMissingToken)
			}

			token, ok := extractBearerToken(authHeader)
			if !ok {
				return handlers.SendError(c, errors.SyncInvalidTokenFormat)
			}

			claims, err := tokenService.ValidateToken(token)
			if err != nil {
				if stderrors.Is(err, services.ErrExpiredToken) {
					return handlers.SendError(c, errors.SyncExpiredToken)
				}
				return handlers.SendError(c, errors.SyncInvalidTokenFormat)
			}

			c.Set("device_name", claims.DeviceName)
			c.Set("token_jti", claims.ID)

			return next(c)
		}
	}
}

func extractBearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
