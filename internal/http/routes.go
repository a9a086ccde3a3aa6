package http

import (
	"os"
	"path/filepath"
	"time"

	"todo_app/internal/config"
	"todo_app/internal/http/handlers"
	"todo_app/internal/http/middleware"
	"todo_app/internal/rpc"
	"todo_app/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Deps struct {
	Config   *config.Config
	Store    handlers.Pinger
	Registry *rpc.Registry
	Hub      *ws.Hub
	Version  string
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config

	r.Use(middleware.RequestID(), middleware.Metrics(), middleware.CORS(cfg.AllowedOrigin))

	healthHandler := handlers.NewHealthHandler(d.Store, cfg.DBDriver, d.Version, d.Hub.Count)
	rpcHandler := handlers.NewRPCHandler(d.Registry)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	window := time.Duration(cfg.APIRateWindowSeconds) * time.Second

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(cfg.APIRateLimit, window))
	{
		v1.GET("/rpc", rpcHandler.Procedures)
		v1.GET("/rpc/:procedure", rpcHandler.Get)
		v1.POST("/rpc/:procedure", rpcHandler.Post)
	}

	r.GET("/ws", ws.HandleWS(d.Hub, cfg.AllowedOrigin))

	if cfg.WebDir != "" {
		registerStatic(r, cfg.WebDir)
	}
}

func registerStatic(r *gin.Engine, dir string) {
	index := filepath.Join(dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		return
	}
	r.StaticFS("/assets", gin.Dir(filepath.Join(dir, "assets"), false))
	r.NoRoute(func(c *gin.Context) {
		c.File(index)
	})
}
