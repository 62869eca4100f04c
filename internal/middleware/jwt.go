// Package middleware provides the shared request processing applied
// around handlers: JWT verification, role checks, response caching and
// rate limiting.
package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth for downstream middleware and handlers.
const (
	CtxUserID      = "user_id"
	CtxRole        = "role"
	CtxDisplayName = "display_name"
)

// JWTAuth validates a Bearer access token signed with secret and puts
// the operator's id (uint64), role and display name into the request
// context. Handlers build their capability value from these.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			c.Set(CtxUserID, subjectID(claims["sub"]))
			if role, ok := claims["role"].(string); ok {
				c.Set(CtxRole, role)
			}
			if name, ok := claims["name"].(string); ok {
				c.Set(CtxDisplayName, name)
			}
			return next(c)
		}
	}
}

// subjectID normalizes the sub claim to uint64. JSON numbers decode as
// float64; string subjects are parsed for tolerance.
func subjectID(v interface{}) uint64 {
	switch t := v.(type) {
	case float64:
		return uint64(t)
	case uint64:
		return t
	case int64:
		return uint64(t)
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}
