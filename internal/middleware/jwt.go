package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-identity-service/internal/utils"
)

// Context keys under which JWTAuth stores the authenticated principal.
const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
	CtxRole   = "role"
)

// JWTAuth returns an Echo middleware that validates a Bearer identity
// token and injects the subject id, email and role claims into the request
// context.  Token parsing is delegated to utils.ParseToken so the signing
// method, issuer and audience are enforced in one place.  Handlers access
// the authenticated user via c.Get(CtxUserID) etc.
func JWTAuth(secret, issuer, audience string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.ParseToken(secret, issuer, audience, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			uid, err := claims.UserID()
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(CtxUserID, uid)
			c.Set(CtxEmail, claims.Email)
			c.Set(CtxRole, claims.Role)
			return next(c)
		}
	}
}

// UserID extracts the authenticated user's id from the context.  The
// boolean is false when JWTAuth did not run or the value has the wrong
// type.
func UserID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(CtxUserID).(uuid.UUID)
	return id, ok
}
