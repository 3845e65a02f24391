package routes

import (
	"knotty_backend/internal/auth"
	"knotty_backend/internal/handlers"
	"knotty_backend/internal/middleware"
	"knotty_backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// RateLimitConfig bounds request rates on the auth endpoints.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// RegisterRoutes mounts the whole HTTP surface under /api/v1. Three
// nested groups carry the guard tiers: public, authenticated session,
// and admin.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	tokens *auth.TokenIssuer,
	rl RateLimitConfig,
) {
	ginRouter.GET("/metrics", gin.WrapH(promhttp.Handler()))
	ginRouter.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := ginRouter.Group("/api/v1")
	api.Use(middleware.RateLimitPerIP(rate.Limit(rl.RPS), rl.Burst))

	protected := api.Group("")
	protected.Use(middleware.Authenticate(tokens, middleware.HeaderExtractor{}, middleware.CookieExtractor{}))

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))

	appHandlers.AuthHandler.RegisterRoutes(api, protected)
	appHandlers.UserHandler.RegisterRoutes(protected, admin)
	appHandlers.ProductHandler.RegisterRoutes(api, admin)
	appHandlers.OrderHandler.RegisterRoutes(protected, admin)
	appHandlers.ReviewHandler.RegisterRoutes(api, protected)
}
