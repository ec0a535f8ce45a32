package httpserver

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/MadridBabajev/ShoppingCart/internal/tokens"
)

type AuthMiddleware struct {
	Tokens *tokens.Manager
}

// RequireAuth validates the bearer token and stashes the caller's id on
// the context.
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := bearerToken(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := m.Tokens.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid subject claim")
		}

		c.Set("user_id", userID)
		return next(c)
	}
}

// OptionalAuth resolves the caller's identity when a valid bearer token is
// present and stays anonymous otherwise.
func (m *AuthMiddleware) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := bearerToken(c)
		if raw != "" {
			if claims, err := m.Tokens.Parse(raw); err == nil {
				if userID, err := uuid.Parse(claims.Subject); err == nil {
					c.Set("user_id", userID)
				}
			}
		}
		return next(c)
	}
}

func bearerToken(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func userIDFromContext(c echo.Context) (uuid.UUID, bool) {
	v, ok := c.Get("user_id").(uuid.UUID)
	return v, ok
}
