package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/MadridBabajev/ShoppingCart/internal/events"
	"github.com/MadridBabajev/ShoppingCart/internal/logging"
	"github.com/MadridBabajev/ShoppingCart/internal/service/auth"
	"github.com/MadridBabajev/ShoppingCart/internal/transport"
)

type AuthHTTP struct {
	Svc      *auth.AuthService
	Producer *events.Producer
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Register(ctx, req, expiresInParam(c))
	if err != nil {
		return httpError(err)
	}

	h.publish(c, req.Email, map[string]any{
		"type":  "user_registered",
		"email": req.Email,
	})
	return c.JSON(http.StatusOK, res)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req, expiresInParam(c))
	if err != nil {
		return httpError(err)
	}

	h.publish(c, req.Email, map[string]any{
		"type":  "user_logged_in",
		"email": req.Email,
	})
	return c.JSON(http.StatusOK, res)
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Refresh(ctx, req.JWT, req.RefreshToken, expiresInParam(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := userIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.LogoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	deleted, err := h.Svc.Logout(ctx, userID, req.RefreshToken)
	if err != nil {
		return httpError(err)
	}

	h.publish(c, userID.String(), map[string]any{
		"type":    "user_logged_out",
		"user_id": userID,
	})
	return c.JSON(http.StatusOK, transport.LogoutResponse{TokenDeleteCount: int(deleted)})
}

// expiresInParam reads the optional access-token TTL override; zero means
// "use the default".
func expiresInParam(c echo.Context) int {
	s := c.QueryParam("expires_in")
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

func (h *AuthHTTP) publish(c echo.Context, key string, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, events.TopicUserEvents, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}
