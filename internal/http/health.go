package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/travel-planner-service/internal/degraded"
	"github.com/kjstillabower/travel-planner-service/internal/lifecycle"
)

// Pinger reports reachability of an external dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthConfig holds what GET /health evaluates.
type HealthConfig struct {
	Service  string
	Degraded degraded.Policy
	// Cache is nil for the in-memory backend; otherwise its Ping feeds checks.cache.
	Cache       Pinger
	PingTimeout time.Duration
}

// HealthHandler serves GET /health and logs status transitions.
type HealthHandler struct {
	cfg    HealthConfig
	logger *zap.Logger

	mu   sync.Mutex
	prev string
	now  func() time.Time
}

func NewHealthHandler(cfg HealthConfig, logger *zap.Logger) *HealthHandler {
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = 2 * time.Second
	}
	return &HealthHandler{cfg: cfg, logger: logger, now: time.Now}
}

type healthResult struct {
	status     string
	statusCode int
	reason     string
}

// computeStatus applies shutting-down > degraded > healthy.
func (h *HealthHandler) computeStatus() healthResult {
	if lifecycle.IsShuttingDown() {
		return healthResult{"shutting-down", http.StatusServiceUnavailable, "signal"}
	}
	if breached, _ := h.cfg.Degraded.Check(); breached {
		return healthResult{"degraded", http.StatusServiceUnavailable, "error_rate_breach"}
	}
	return healthResult{"healthy", http.StatusOK, ""}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	result := h.computeStatus()

	h.mu.Lock()
	if h.prev != "" && h.prev != result.status {
		h.logger.Info("health status transition",
			zap.String("previous_status", h.prev),
			zap.String("current_status", result.status),
			zap.String("reason", result.reason))
	}
	h.prev = result.status
	h.mu.Unlock()

	checks := map[string]string{"upstream": "healthy"}
	if result.status == "degraded" {
		checks["upstream"] = "unhealthy"
	}
	if h.cfg.Cache != nil {
		ctx, cancel := context.WithTimeout(r.Context(), h.cfg.PingTimeout)
		err := h.cfg.Cache.Ping(ctx)
		cancel()
		if err != nil {
			checks["cache"] = "unhealthy"
			loggerFromContext(r.Context(), h.logger).Warn("cache ping failed", zap.Error(err))
		} else {
			checks["cache"] = "healthy"
		}
	}

	now := h.now()
	writeJSON(w, result.statusCode, map[string]interface{}{
		"status":    result.status,
		"service":   h.cfg.Service,
		"checks":    checks,
		"uptime":    lifecycle.Uptime(now).String(),
		"timestamp": now.UTC().Format(time.RFC3339),
	})
}
