package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/MadridBabajev/ShoppingCart/internal/tokens"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	CartHandler    *CartHTTP
	CatalogHandler *CatalogHTTP
	SearchHandler  *SearchHTTP
	Tokens         *tokens.Manager
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	authMw := &AuthMiddleware{Tokens: d.Tokens}

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/refresh", d.AuthHandler.Refresh)
	v1.POST("/logout", d.AuthHandler.Logout, authMw.RequireAuth)

	items := v1.Group("/items", authMw.OptionalAuth)
	items.GET("", d.CatalogHandler.GetItems)
	items.GET("/:id", d.CatalogHandler.GetItem)

	admin := v1.Group("/items", authMw.RequireAuth)
	admin.POST("", d.CatalogHandler.CreateItem)
	admin.PATCH("/:id", d.CatalogHandler.PatchItem)
	admin.DELETE("/:id", d.CatalogHandler.DeleteItem)

	cart := v1.Group("/cart", authMw.RequireAuth)
	cart.GET("", d.CartHandler.GetCart)
	cart.GET("/:itemId", d.CartHandler.GetCartLine)
	cart.PUT("", d.CartHandler.ApplyAction)
	cart.DELETE("", d.CartHandler.ClearCart)

	if d.SearchHandler != nil {
		v1.GET("/search", d.SearchHandler.Search)
	}
}
