package httpserver

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/MadridBabajev/ShoppingCart/internal/logging"
	"github.com/MadridBabajev/ShoppingCart/internal/service/catalog"
	"github.com/MadridBabajev/ShoppingCart/internal/transport"
	"github.com/MadridBabajev/ShoppingCart/internal/util"
)

type CatalogHTTP struct {
	Svc *catalog.CatalogService
}

func (h *CatalogHTTP) GetItems(c echo.Context) error {
	ctx := c.Request().Context()

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.ListItems(ctx, optionalUserID(c), offset, limit)
	if err != nil {
		logging.FromContext(ctx).Error("get_items_error", "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": transport.ListMeta{
			Page:       page,
			Size:       limit,
			Total:      total,
			TotalPages: (total + int64(limit) - 1) / int64(limit),
		},
	})
}

func (h *CatalogHTTP) GetItem(c echo.Context) error {
	ctx := c.Request().Context()

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid item id")
	}

	item, err := h.Svc.GetItem(ctx, optionalUserID(c), itemID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CatalogHTTP) CreateItem(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.CreateItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, err := h.Svc.CreateItem(ctx, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *CatalogHTTP) PatchItem(c echo.Context) error {
	ctx := c.Request().Context()

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid item id")
	}

	var req transport.PatchItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, err := h.Svc.PatchItem(ctx, req, itemID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CatalogHTTP) DeleteItem(c echo.Context) error {
	ctx := c.Request().Context()

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid item id")
	}

	if err := h.Svc.DeleteItem(ctx, itemID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func optionalUserID(c echo.Context) *uuid.UUID {
	if id, ok := userIDFromContext(c); ok {
		return &id
	}
	return nil
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
