// README: gin engine construction: global middleware, API routes and legacy aliases.
package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tripplanner/internal/http/handlers"
	"tripplanner/internal/http/middleware"
	"tripplanner/internal/infra"
)

// RouterDeps wires the engine. Verifier, Quota and Limiter are optional.
type RouterDeps struct {
	Planner        handlers.Planner
	Quota          handlers.Quota
	Verifier       infra.TokenVerifier
	Limiter        middleware.Limiter
	Logger         *zap.Logger
	CORSOrigins    []string
	TrustedProxies []string
	RequestTimeout time.Duration
	Health         handlers.Health
}

func NewRouter(deps RouterDeps) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	// Forwarded headers count only when the direct peer is a listed proxy.
	if err := r.SetTrustedProxies(deps.TrustedProxies); err != nil {
		log.Error("invalid trusted proxies, trusting none", zap.Strings("proxies", deps.TrustedProxies), zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(middleware.AccessLog(log), middleware.Recovery(log))
	r.Use(cors.New(corsConfig(deps.CORSOrigins)))

	r.GET("/", deps.Health.Root)
	r.GET("/health", deps.Health.Check)

	h := handlers.NewItineraryHandler(deps.Planner, deps.Quota, deps.RequestTimeout)

	guarded := []gin.HandlerFunc{}
	if deps.Limiter != nil {
		guarded = append(guarded, middleware.RateLimit(deps.Limiter, log))
	}
	if deps.Verifier != nil {
		guarded = append(guarded, middleware.Auth(deps.Verifier))
	}

	api := r.Group("/api", guarded...)
	{
		api.POST("/itineraries", h.Generate)
		api.POST("/itineraries/regenerate", h.Regenerate)
		api.GET("/usage", h.Usage)
	}

	legacy := r.Group("", guarded...)
	{
		legacy.POST("/ai_suggestion", h.Generate)
		legacy.POST("/regenerate_plan", h.Regenerate)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
