package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/MadridBabajev/ShoppingCart/internal/events"
	"github.com/MadridBabajev/ShoppingCart/internal/logging"
	"github.com/MadridBabajev/ShoppingCart/internal/service/cart"
	"github.com/MadridBabajev/ShoppingCart/internal/transport"
)

type CartHTTP struct {
	Svc      *cart.CartService
	Producer *events.Producer
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "get_cart")

	userID, ok := userIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	lines, err := h.Svc.ListCartLines(ctx, userID)
	if err != nil {
		l.Error("get_cart_error", "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, lines)
}

func (h *CartHTTP) GetCartLine(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := userIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid item id")
	}

	line, err := h.Svc.GetCartLine(ctx, userID, itemID)
	if err != nil {
		return httpError(err)
	}
	if line == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, line)
}

// ApplyAction is the single dispatch endpoint for increment, decrement and
// set_amount.
func (h *CartHTTP) ApplyAction(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart_action")

	userID, ok := userIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.CartActionRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("cart_action_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.ItemID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "item_id required")
	}

	action, err := cart.ParseAction(req.Action)
	if err != nil {
		return httpError(err)
	}

	item, err := h.Svc.Apply(ctx, userID, req.ItemID, action, req.Quantity)
	if err != nil {
		return httpError(err)
	}

	h.publish(c, userID, map[string]any{
		"type":    "cart_action",
		"user_id": userID,
		"item_id": req.ItemID,
		"action":  action.String(),
	})

	if item == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "clear_cart")

	userID, ok := userIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if err := h.Svc.Clear(ctx, userID); err != nil {
		l.Error("clear_cart_error", "error", err)
		return httpError(err)
	}

	h.publish(c, userID, map[string]any{
		"type":    "cart_cleared",
		"user_id": userID,
	})
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) publish(c echo.Context, userID uuid.UUID, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, events.TopicCartEvents, userID.String(), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}
