// Command board runs the board-collaboration signaling service: the single
// /collab/:boardId upgrade endpoint plus health and metrics endpoints.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/auth"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/bus"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/config"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/health"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/logging"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/middleware"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/ratelimit"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/room"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/router"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/store"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/tracing"
)

func main() {
	envPaths := []string{".env", "../../../.env", "../../.env"}
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			break
		}
	}

	cfg, err := config.ValidateEnv()
	if err != nil {
		panic(err)
	}

	if err := logging.Initialize(cfg.GoEnv != "production"); err != nil {
		panic(err)
	}
	logger := logging.GetLogger()
	defer logger.Sync()

	ctx := context.Background()

	dsn, err := cfg.ResolvedDatabaseURL()
	if err != nil {
		logging.Fatal(ctx, "failed to resolve database dsn", zap.Error(err))
	}
	snapshotStore, err := store.NewPostgresStore(ctx, dsn)
	if err != nil {
		logging.Fatal(ctx, "failed to connect to snapshot store", zap.Error(err))
	}
	defer snapshotStore.Close()

	var busService *bus.Service
	if cfg.RedisEnabled {
		busService, err = bus.NewService(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logging.Fatal(ctx, "failed to connect to redis", zap.Error(err))
		}
		defer busService.Close()
	}

	resolver := auth.NewResolver([]byte(cfg.SupabaseJWTSecret), snapshotStore)

	manager := room.NewManager(snapshotStore, resolver, busService)

	allowedOrigins := auth.GetAllowedOriginsFromEnv("ALLOWED_ORIGINS")
	rt := router.New(manager, allowedOrigins)

	connectThrottle, err := ratelimit.NewConnectThrottle(cfg.RateLimitWsConnect, cfg.JoinAttemptBucketBackend, busService.Client())
	if err != nil {
		logging.Fatal(ctx, "failed to build connect throttle", zap.Error(err))
	}

	if cfg.GoEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.CorrelationID())

	if collectorAddr := os.Getenv("OTEL_COLLECTOR_ADDR"); collectorAddr != "" {
		tp, err := tracing.InitTracer(ctx, "board", collectorAddr)
		if err != nil {
			logging.Warn(ctx, "tracing disabled", zap.Error(err))
		} else {
			engine.Use(otelgin.Middleware("board"))
			defer tp.Shutdown(context.Background())
		}
	}

	healthHandler := health.NewHandler(snapshotStore, busService)
	engine.GET("/healthz", healthHandler.Liveness)
	engine.GET("/readyz", healthHandler.Readiness)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	engine.GET("/collab/:boardId", connectThrottle.Middleware(), rt.ServeWs)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: engine,
	}

	go func() {
		logging.Info(ctx, "board server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatal(ctx, "server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error(ctx, "server forced to shutdown", zap.Error(err))
	}
	manager.Shutdown(shutdownCtx)

	logging.Info(ctx, "server exiting")
}
