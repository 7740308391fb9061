package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"

	"github.com/ignatzorin/campus-lostfound/internal/config"
	"github.com/ignatzorin/campus-lostfound/internal/http/handlers"
	"github.com/ignatzorin/campus-lostfound/internal/http/middleware"
	"github.com/ignatzorin/campus-lostfound/internal/models"
)

// Handlers набор хэндлеров, которые подключает роутер. Seed может быть nil.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Locations *handlers.LocationHandler
	Found     *handlers.FoundItemHandler
	Lost      *handlers.LostItemHandler
	Claims    *handlers.ClaimHandler
	Stats     *handlers.StatsHandler
	Health    *handlers.HealthHandler
	WS        *handlers.WSHandler
	Seed      *handlers.SeedHandler
}

// Deps инфраструктура, нужная middleware и служебным маршрутам.
type Deps struct {
	Tokens         middleware.AccessTokenParser
	RateLimitStore limiter.Store
	Gatherer       prometheus.Gatherer
}

func SetupRouter(cfg *config.Config, h Handlers, deps Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}
	r.StaticFS(cfg.MediaURLPrefix, http.Dir(cfg.MediaStoragePath))

	auth := middleware.AuthMiddleware(deps.Tokens)
	staff := middleware.RequireStaff()

	api := r.Group("/api")

	if h.Seed != nil && cfg.IsDevelopment() {
		api.POST("/seed", h.Seed.Seed)
	}

	authGroup := api.Group("/auth")
	{
		authRateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod, deps.RateLimitStore)
		authGroup.POST("/register", authRateLimit, h.Auth.Register)
		authGroup.POST("/login", authRateLimit, h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
		authGroup.GET("/me", auth, h.Auth.Me)
	}

	api.PUT("/users/:id/role", auth, middleware.RequireRole(models.RoleAdmin), middleware.UUIDValidator("id"), h.Auth.UpdateRole)

	// Справочник мест
	api.GET("/locations", h.Locations.List)
	api.POST("/locations", auth, middleware.RequireRole(models.RoleAdmin), h.Locations.Create)

	// Найденные вещи
	found := api.Group("/found")
	{
		found.POST("", h.Found.Create)
		found.GET("", h.Found.List)
		found.GET("/:id", middleware.UUIDValidator("id"), h.Found.Get)
		found.PUT("/:id/status", auth, staff, middleware.UUIDValidator("id"), h.Found.UpdateStatus)
	}

	// Заявления о потере и совпадения
	lost := api.Group("/lost")
	{
		lost.POST("", h.Lost.Create)
		lost.GET("/:id", middleware.UUIDValidator("id"), h.Lost.Get)
		lost.GET("/:id/matches", middleware.UUIDValidator("id"), h.Lost.Matches)
		lost.POST("/:id/matches/refresh", auth, staff, middleware.UUIDValidator("id"), h.Lost.RefreshMatches)
	}

	// Заявки: создать может любой, остальное только сотрудники
	api.POST("/claims", h.Claims.Create)
	claims := api.Group("/claims", auth, staff)
	{
		claims.GET("", h.Claims.List)
		claims.GET("/:id", middleware.UUIDValidator("id"), h.Claims.Get)
		claims.PUT("/:id/verify", middleware.UUIDValidator("id"), h.Claims.Verify)
		claims.POST("/:id/pickup", middleware.UUIDValidator("id"), h.Claims.Pickup)
	}

	api.GET("/stats", h.Stats.Get)
	api.GET("/ws", middleware.QueryTokenAuth(deps.Tokens), h.WS.Handle)

	return r
}
