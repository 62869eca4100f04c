// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/trungvq/bida-pos/internal/config"
	"github.com/trungvq/bida-pos/internal/handler"
	"github.com/trungvq/bida-pos/internal/middleware"
	"github.com/trungvq/bida-pos/internal/model"
)

// Handlers bundles everything the route table needs.
type Handlers struct {
	Auth     *handler.AuthHandler
	Tables   *handler.TableHandler
	Items    *handler.ItemHandler
	Bookings *handler.BookingHandler
	Orders   *handler.OrderHandler
}

// Register sets up the whole route table.
//
// Unauthenticated: health check and the auth endpoints. Everything
// else requires a valid access token; table and item mutations
// additionally require the ADMIN role. Read endpoints go through the
// Redis response cache; every route goes through the rate limiter.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	e.GET("/healthz", handler.Health)

	a := e.Group("/v1/auth")
	a.POST("/register", h.Auth.Register)
	a.POST("/login", h.Auth.Login)
	a.POST("/refresh", h.Auth.Refresh)
	a.POST("/refresh-access", h.Auth.RefreshAccess)
	// Logout stays unauthenticated so an expired access token does not
	// trap a session; it validates the refresh token itself.
	a.POST("/logout", h.Auth.Logout)

	auth := e.Group("/v1",
		middleware.JWTAuth(cfg.JWTSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleStaff),
	)
	auth.GET("/me", h.Auth.Me)

	cached := auth.Group("", middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	cached.GET("/tables", h.Tables.List)
	cached.GET("/tables/:id", h.Tables.Get)
	cached.GET("/items", h.Items.List)
	cached.GET("/orders", h.Orders.ListPaid)
	cached.GET("/orders/:id", h.Orders.Get)

	auth.POST("/bookings", h.Bookings.Create)
	auth.POST("/orders", h.Orders.CreateDirect)
	auth.POST("/orders/:id/checkout", h.Bookings.Checkout)
	auth.PUT("/orders/:id/items", h.Orders.ReplaceItems)

	adm := auth.Group("", middleware.RequireRole(model.RoleAdmin))
	adm.POST("/tables", h.Tables.Create)
	adm.PUT("/tables/:id", h.Tables.Update)
	adm.DELETE("/tables/:id", h.Tables.Delete)
	adm.POST("/items", h.Items.Create)
	adm.PUT("/items/:id", h.Items.Update)
	adm.DELETE("/items/:id", h.Items.Delete)
}
