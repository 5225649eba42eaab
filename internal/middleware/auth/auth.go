// Package auth gates protected routes: Authenticate decodes the bearer
// token into the request context, RequireRoles checks the role claim
// against a per-route allow-list. Authorization trusts the token entirely;
// there is no per-request principal lookup.
package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pendoke/pendo-backend/internal/models"
	"github.com/pendoke/pendo-backend/internal/tokens"
)

const claimsKey = "claims"

type Middleware struct {
	JWTSecret []byte
}

func (m *Middleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Access denied. No token provided.")
		}

		claims, err := tokens.Parse(raw, m.JWTSecret)
		if err != nil {
			return echo.NewHTTPError(http.StatusForbidden, "Invalid or expired token.")
		}

		SetClaims(c, claims)
		return next(c)
	}
}

func (m *Middleware) RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := GetClaims(c)
			if claims == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Access denied. No token provided.")
			}
			for _, role := range roles {
				if claims.Role == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "Access denied. Unauthorized role.")
		}
	}
}

func (m *Middleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return m.RequireRoles(models.RoleAdmin)(next)
}

func SetClaims(c echo.Context, claims *tokens.Claims) {
	c.Set(claimsKey, claims)
}

func GetClaims(c echo.Context) *tokens.Claims {
	if claims, ok := c.Get(claimsKey).(*tokens.Claims); ok {
		return claims
	}
	return nil
}
