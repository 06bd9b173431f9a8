package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes registers the simulator endpoints with the router group.
//
// Endpoints:
//
//	POST   /v1/simulate           - Simulate one circuit
//	POST   /v1/simulate/batch     - Simulate several circuits concurrently
//	POST   /v1/import             - Parse QASM, Cirq, Quil or JSON source
//	POST   /v1/export             - Render a circuit in a text format
//	GET    /v1/presets            - List preset ids
//	GET    /v1/presets/:id        - Get a preset circuit
//	POST   /v1/presets/:id/run    - Simulate a preset
//	DELETE /v1/cache              - Clear the gate matrix cache
//	GET    /v1/health             - Health check
func RegisterRoutes(rg *gin.RouterGroup, h *Handlers) {
	rg.POST("/simulate", h.HandleSimulate)
	rg.POST("/simulate/batch", h.HandleBatch)

	rg.POST("/import", h.HandleImport)
	rg.POST("/export", h.HandleExport)

	presets := rg.Group("/presets")
	{
		presets.GET("", h.HandlePresets)
		presets.GET("/:id", h.HandlePreset)
		presets.POST("/:id/run", h.HandleRunPreset)
	}

	rg.DELETE("/cache", h.HandleClearCache)
	rg.GET("/health", h.HandleHealth)
}

// NewRouter builds the full HTTP handler: middleware, /v1 and /metrics
// served from gatherer.
func NewRouter(h *Handlers, m *HTTPMetrics, gatherer prometheus.Gatherer) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), Instrument(m), Timeout(h.cfg.RequestTimeout))

	RegisterRoutes(router.Group("/v1"), h)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	return router
}

// Serve listens on addr until ctx is done, then drains in-flight requests.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
