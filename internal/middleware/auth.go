package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rijalsawan/photography-sub000/internal/apperrors"
	"go.uber.org/zap"
)

const actorKey = "actorID"

// TokenVerifier turns a bearer token into the id of the calling account.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

// AuthMiddleware authenticates the Authorization bearer token with verifier and stores
// the caller's id for ActorID.
func AuthMiddleware(verifier TokenVerifier, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return apperrors.Unauthorized("authorization header is missing")
			}

			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return apperrors.Unauthorized("authorization header must be in Bearer format")
			}

			actorID, err := verifier.VerifyToken(c.Request().Context(), parts[1])
			if err != nil || actorID == "" {
				log.Debug("token rejected", zap.Error(err))
				return apperrors.Unauthorized("invalid or expired token")
			}

			c.Set(actorKey, actorID)
			return next(c)
		}
	}
}

// ActorID returns the authenticated caller, or "" outside AuthMiddleware.
func ActorID(c echo.Context) string {
	id, _ := c.Get(actorKey).(string)
	return id
}
