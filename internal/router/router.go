// Package router registers the HTTP routes and their middleware
// chains.  Three surfaces exist: public browse endpoints (optionally
// cached), authenticated customer endpoints and the admin surface.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/mycinema/screening-engine/internal/config"
	"github.com/mycinema/screening-engine/internal/handler"
	"github.com/mycinema/screening-engine/internal/metrics"
	"github.com/mycinema/screening-engine/internal/middleware"
)

// Options carries the cross-cutting collaborators the route groups
// share.  Redis may be nil; rate limiting and response caching then
// disable themselves.
type Options struct {
	JWTSecret string
	Metrics   *metrics.Metrics
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
}

// Register wires every route onto the Echo instance.
func Register(e *echo.Echo, h *handler.Handler, opts Options) {
	e.Use(middleware.Prometheus(opts.Metrics))
	e.Use(middleware.NewTokenBucket(opts.RateLimit, opts.Redis))

	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Public browse surface.  Read-only, safe to cache.
	public := e.Group("/v1")
	public.Use(middleware.NewRedisCache(opts.Cache, opts.Redis))
	public.GET("/films", h.ListFilms)
	public.GET("/films/:id", h.GetFilm)
	public.GET("/screenings", h.ListScreenings)
	public.GET("/screenings/:id", h.GetScreening)
	public.GET("/screenings/:id/availability", h.GetAvailability)

	// Customer surface.  Any authenticated role may purchase.
	customer := e.Group("/v1")
	customer.Use(middleware.JWTAuth(opts.JWTSecret))
	customer.Use(middleware.RequireRole(middleware.RoleAdmin, middleware.RoleCustomer))
	customer.POST("/screenings/:id/purchase", h.PurchaseTickets)
	customer.GET("/me/purchases", h.MyPurchases)
	customer.GET("/me/purchases/:ref", h.GetPurchase)

	// Admin surface.  Halls, the film catalog and the schedule.
	admin := e.Group("/v1/admin")
	admin.Use(middleware.JWTAuth(opts.JWTSecret))
	admin.Use(middleware.RequireRole(middleware.RoleAdmin))
	admin.POST("/halls", h.CreateHall)
	admin.GET("/halls/:id", h.GetHall)
	admin.PATCH("/halls/:id", h.UpdateHall)
	admin.DELETE("/halls/:id", h.DeleteHall)
	admin.POST("/films", h.CreateFilm)
	admin.POST("/screenings", h.CreateScreening)
	admin.PATCH("/screenings/:id", h.UpdateScreening)
	admin.POST("/screenings/:id/deactivate", h.DeactivateScreening)
	admin.DELETE("/screenings/:id", h.DeleteScreening)
}
