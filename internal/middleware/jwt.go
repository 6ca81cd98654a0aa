// Package middleware contains reusable HTTP middleware for the Echo
// server: authentication, role checks, rate limiting, response caching
// and prometheus instrumentation.
package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and injects the numeric user ID and role claims into the
// request context.  Token issuance lives with the identity service;
// this server only verifies.  Handlers read the values via
// c.Get("user_id") (uint64) and c.Get("role") (string).
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A valid header carries "Bearer " followed by the JWT.
			// Anything else is answered with 401 before any parsing.
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// Parse with the shared secret.  The keyfunc pins the
			// algorithm to HMAC so a token signed with "none" or an
			// RSA key is rejected regardless of its payload.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			// Expired and not-yet-valid tokens already failed above;
			// what is left is reading the claims we care about.
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			uid, ok := subjectID(claims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid subject"})
			}

			// Store the typed values so handlers never re-parse the
			// token: user_id as uint64, role as string.
			c.Set("user_id", uid)
			if role, ok := claims["role"].(string); ok {
				c.Set("role", role)
			}
			return next(c)
		}
	}
}

// subjectID reads the numeric user ID from the "sub" claim.  JSON
// numbers arrive as float64; string subjects are parsed for tokens
// minted by issuers that stringify IDs.
func subjectID(claims jwt.MapClaims) (uint64, bool) {
	switch v := claims["sub"].(type) {
	case float64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case string:
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
