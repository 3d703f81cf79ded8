package router // package router defines how HTTP routes are registered for the API

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4" // Echo web framework used for routing

	"github.com/iliyamo/online-shop-api/internal/config"
	"github.com/iliyamo/online-shop-api/internal/handler"
	"github.com/iliyamo/online-shop-api/internal/middleware"
	"github.com/iliyamo/online-shop-api/internal/model"
	"github.com/iliyamo/online-shop-api/internal/repository"
)

// Deps bundles everything the route tree needs: configuration for the JWT
// secrets, the repositories backing the auth middleware and the handlers
// themselves. The router owns no logic of its own; it only decides which
// middleware gates protect which endpoint.
type Deps struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Roles    *repository.RoleRepo
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Product  *handler.ProductHandler
	Order    *handler.OrderHandler
	CacheGET echo.MiddlewareFunc // optional Redis response cache for product reads
}

// RegisterRoutes registers the full route tree on the provided Echo instance.
// Unauthenticated operations live under /v1/auth, everything else under /v1
// behind the JWT middleware plus a per-group role gate.
func RegisterRoutes(e *echo.Echo, d Deps) {
	// Health check for load balancers and monitoring; no auth, no version
	// prefix.
	e.GET("/healthz", handler.Health)

	// Session endpoints. Login mints the token pair, refreshAccessToken
	// exchanges a stored refresh token for a fresh access token, and logout
	// revokes the refresh token.
	auth := e.Group("/v1/auth")
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refreshAccessToken", d.Auth.RefreshAccessToken)
	auth.POST("/logout", d.Auth.Logout)

	protect := middleware.Protect(d.Cfg.AccessSecret, d.Users)
	adminOnly := middleware.AllowTo(d.Roles, model.RoleAdmin)
	anyRole := middleware.AllowTo(d.Roles, model.RoleAdmin, model.RoleCustomer)

	// User administration is admin-only across the board, including the
	// creation of new accounts.
	users := e.Group("/v1/user", protect, adminOnly)
	users.POST("", d.User.Create)
	users.GET("", d.User.List)
	users.GET("/:id", d.User.GetByID)
	users.PUT("/:id", d.User.Update)
	users.DELETE("/:id", d.User.Delete)

	// Product reads are open to both roles and optionally served out of the
	// Redis response cache; writes stay admin-only. The bulk update route is
	// registered on the literal path /products so it never collides with the
	// :id parameter route.
	products := e.Group("/v1/product", protect)
	if d.CacheGET != nil {
		products.GET("", d.Product.List, anyRole, d.CacheGET)
		products.GET("/:id", d.Product.GetByID, anyRole, d.CacheGET)
	} else {
		products.GET("", d.Product.List, anyRole)
		products.GET("/:id", d.Product.GetByID, anyRole)
	}
	products.POST("", d.Product.Create, adminOnly)
	products.PUT("/products", d.Product.BulkUpdate, adminOnly)
	products.PUT("/:id", d.Product.Update, adminOnly)
	products.DELETE("/:id", d.Product.Delete, adminOnly)

	// Orders: customers place orders and read or delete their own, admins
	// read and delete any and list everything. The handler performs the
	// ownership check for customers; the role gates here only decide who
	// gets through at all.
	orders := e.Group("/v1/order", protect)
	orders.POST("", d.Order.Place, middleware.AllowTo(d.Roles, model.RoleCustomer))
	orders.GET("", d.Order.List, adminOnly)
	orders.GET("/:id", d.Order.Get, anyRole)
	orders.DELETE("/:id", d.Order.Delete, anyRole)

	// Catch-all for unknown paths so clients get a JSON body instead of
	// Echo's default 404 page.
	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": fmt.Sprintf("can't find this route %s", c.Request().URL.Path),
		})
	})
}
