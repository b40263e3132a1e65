// Package health implements the liveness/readiness endpoints: /healthz is
// process-alive only, /readyz additionally checks the snapshot store and,
// if configured, the op/presence fan-out bus.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/bus"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/logging"
	"go.uber.org/zap"
)

// StoreChecker is the narrow readiness contract the handler needs from the
// snapshot store. PostgresStore.Ping satisfies this directly.
type StoreChecker interface {
	Ping(ctx context.Context) error
}

// Handler manages the health check endpoints.
type Handler struct {
	store        StoreChecker
	redisService *bus.Service
}

// NewHandler creates a new health check handler. store may be nil only in
// tests; redisService may be nil for a single-instance deployment.
func NewHandler(store StoreChecker, redisService *bus.Service) *Handler {
	return &Handler{store: store, redisService: redisService}
}

// LivenessResponse is the /healthz body.
type LivenessResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ReadinessResponse is the /readyz body.
type ReadinessResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp string            `json:"timestamp"`
}

// Liveness returns 200 if the process is alive, with no dependency checks.
func (h *Handler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, LivenessResponse{
		Status:    "alive",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Readiness returns 200 only if every critical dependency is healthy, 503
// otherwise.
func (h *Handler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allHealthy := true

	checks["store"] = h.checkStore(ctx)
	if checks["store"] != "healthy" {
		allHealthy = false
	}

	if h.redisService != nil {
		checks["redis"] = h.checkRedis(ctx)
		if checks["redis"] != "healthy" {
			allHealthy = false
		}
	}

	status := "ready"
	statusCode := http.StatusOK
	if !allHealthy {
		status = "unavailable"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, ReadinessResponse{
		Status:    status,
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) checkStore(ctx context.Context) string {
	if h.store == nil {
		return "healthy"
	}
	if err := h.store.Ping(ctx); err != nil {
		logging.Error(ctx, "store health check failed", zap.Error(err))
		return "unhealthy"
	}
	return "healthy"
}

func (h *Handler) checkRedis(ctx context.Context) string {
	if err := h.redisService.Ping(ctx); err != nil {
		logging.Error(ctx, "redis health check failed", zap.Error(err))
		return "unhealthy"
	}
	return "healthy"
}

// MarshalJSON keeps the output formatting stable across Go versions, as
// the teacher's handler did for its response types.
func (r ReadinessResponse) MarshalJSON() ([]byte, error) {
	type Alias ReadinessResponse
	return json.Marshal(&struct{ *Alias }{Alias: (*Alias)(&r)})
}
