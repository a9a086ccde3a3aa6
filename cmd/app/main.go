package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todo_app/internal/config"
	"todo_app/internal/events"
	httpServer "todo_app/internal/http"
	"todo_app/internal/http/middleware"
	"todo_app/internal/logger"
	"todo_app/internal/repository"
	"todo_app/internal/rpc"
	"todo_app/internal/service"
	"todo_app/internal/ws"

	"github.com/gin-gonic/gin"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := repository.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to open store", "driver", cfg.DBDriver, "error", err)
	}
	defer closeStore()

	registry := rpc.NewRegistry()
	hub := ws.NewHub(registry)
	defer hub.Close()

	// With Redis, events go through pub/sub so every instance's clients see
	// them; without it the hub is notified directly.
	var notifier service.Notifier = hub
	if rdb := middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); rdb != nil {
		defer rdb.Close()
		bridge := events.NewRedisBridge(rdb, cfg.EventsChannel, hub)
		if err := bridge.Subscribe(ctx); err != nil {
			logger.Warn("events subscribe failed, delivering locally", "channel", cfg.EventsChannel, "error", err)
		} else {
			notifier = bridge
			go func() {
				if err := bridge.Run(ctx); err != nil {
					logger.Error("events bridge stopped", "error", err)
				}
			}()
		}
	}

	svc := service.NewTodoService(store, notifier)
	rpc.RegisterTodoProcedures(registry, svc)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	httpServer.RegisterRoutes(r, httpServer.Deps{
		Config:   cfg,
		Store:    store,
		Registry: registry,
		Hub:      hub,
		Version:  version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "driver", cfg.DBDriver, "procedures", registry.Names())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	logger.Info("server exited")
}
