package http

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kjstillabower/travel-planner-service/internal/lifecycle"
	"github.com/kjstillabower/travel-planner-service/internal/observability"
)

// NewRouter returns a router with the shared middleware chain, GET /health and /metrics.
func NewRouter(logger *zap.Logger, health *HealthHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)
	router.Handle("/health", health).Methods(http.MethodGet)
	router.Handle("/metrics", observability.MetricsHandler())
	return router
}

// ShutdownConfig bounds the drain sequence.
type ShutdownConfig struct {
	Timeout               time.Duration
	InFlightTimeout       time.Duration
	InFlightCheckInterval time.Duration
}

// NewServer builds the http.Server. WriteTimeout sits above requestTimeout so handlers can still
// write their own timeout response.
// A non-positive requestTimeout leaves WriteTimeout unset, for handlers whose duration is bounded by the caller.
func NewServer(port string, handler http.Handler, requestTimeout time.Duration) *http.Server {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if requestTimeout > 0 {
		srv.WriteTimeout = requestTimeout + 5*time.Second
	}
	return srv
}

// Run serves until SIGINT/SIGTERM, then drains: shutdown flag, srv.Shutdown, wait for in-flight,
// flush logs, and finally the closers (caches, clients) in order.
func Run(srv *http.Server, logger *zap.Logger, cfg ShutdownConfig, closers ...func() error) {
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	lifecycle.SetShuttingDown(true)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	inFlight := InFlightCount()
	logger.Info("waiting for in-flight requests", zap.Int64("count", inFlight))
	observability.ShutdownInFlight.Set(float64(inFlight))
	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.InFlightTimeout)
	defer waitCancel()
	if err := WaitForInFlight(waitCtx, cfg.InFlightCheckInterval); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", InFlightCount()))
	}

	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logger.Error("close", zap.Error(err))
		}
	}
	logger.Info("shutdown complete")
}
