// Package middleware holds the reusable Echo middleware: bearer token
// auth, role gating, response caching and rate limiting.
package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/study-room-reservation/internal/model"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// JWTAuth validates a Bearer access token signed with the given secret
// and stores the subject and role claims in the request context.
// Handlers read them back through Identity.
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

			sub, _ := claims["sub"].(string)
			uid, err := strconv.ParseUint(sub, 10, 64)
			if err != nil || uid == 0 {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}
			roleClaim, _ := claims["role"].(string)
			role, err := model.ParseRole(roleClaim)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			c.Set(ctxUserID, uid)
			c.Set(ctxRole, role)
			return next(c)
		}
	}
}

// Identity returns the authenticated user ID and role stored by
// JWTAuth.  ok is false on routes that skipped the auth middleware.
func Identity(c echo.Context) (userID uint64, role model.Role, ok bool) {
	uid, okID := c.Get(ctxUserID).(uint64)
	r, okRole := c.Get(ctxRole).(model.Role)
	if !okID || !okRole {
		return 0, "", false
	}
	return uid, r, true
}

// cacheIdentity keys cached responses and rate limit buckets per user.
// Unauthenticated requests share the "guest" bucket.
func cacheIdentity(c echo.Context) string {
	if uid, _, ok := Identity(c); ok {
		return strconv.FormatUint(uid, 10)
	}
	return "guest"
}
