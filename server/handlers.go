// Package server exposes the simulator over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"qtermsim/config"
	"qtermsim/interchange"
	"qtermsim/sim"
)

// Version is reported by /v1/health.
var Version = "dev"

const requestIDKey = "request_id"

// Handlers serves the /v1 API on top of one engine.
type Handlers struct {
	engine   *sim.Engine
	cfg      config.ServerConfig
	logger   *slog.Logger
	tracer   trace.Tracer
	validate *validator.Validate
}

// NewHandlers wires the API to engine. A nil logger discards.
func NewHandlers(engine *sim.Engine, cfg config.ServerConfig, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		engine:   engine,
		cfg:      cfg,
		logger:   logger,
		tracer:   otel.Tracer("qtermsim.server"),
		validate: validator.New(),
	}
}

// getOrCreateRequestID gets or creates a request ID.
func getOrCreateRequestID(c *gin.Context) string {
	if id := c.GetString(requestIDKey); id != "" {
		return id
	}
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	c.Set(requestIDKey, requestID)
	return requestID
}

func (h *Handlers) requestLogger(c *gin.Context, handler string) *slog.Logger {
	return h.logger.With("request_id", getOrCreateRequestID(c), "handler", handler)
}

// bind decodes the JSON body into req and validates it. On failure the
// response has been written and false is returned.
func (h *Handlers) bind(c *gin.Context, logger *slog.Logger, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		h.fail(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		logger.Warn("Request failed validation", "error", err)
		h.fail(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return false
	}
	return true
}

func (h *Handlers) fail(c *gin.Context, status int, code string, err error) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     err.Error(),
		Code:      code,
		Details:   config.FieldErrors(err),
		RequestID: getOrCreateRequestID(c),
	})
}

// failSimulation maps engine and decode errors onto status codes.
func (h *Handlers) failSimulation(c *gin.Context, err error) {
	switch {
	case errors.Is(err, sim.ErrTooManyQubits):
		h.fail(c, http.StatusUnprocessableEntity, "TOO_MANY_QUBITS", err)
	case errors.Is(err, sim.ErrInvalidGateReference):
		h.fail(c, http.StatusUnprocessableEntity, "INVALID_GATE_REFERENCE", err)
	case errors.Is(err, sim.ErrUnsupportedGate):
		h.fail(c, http.StatusUnprocessableEntity, "UNSUPPORTED_GATE", err)
	case errors.Is(err, sim.ErrInvalidCircuit):
		h.fail(c, http.StatusUnprocessableEntity, "INVALID_CIRCUIT", err)
	case errors.Is(err, interchange.ErrUnknownFormat):
		h.fail(c, http.StatusBadRequest, "UNKNOWN_FORMAT", err)
	case errors.Is(err, interchange.ErrBadAngle), errors.Is(err, interchange.ErrUnsupportedShape):
		h.fail(c, http.StatusUnprocessableEntity, "INVALID_SOURCE", err)
	case errors.Is(err, context.DeadlineExceeded):
		h.fail(c, http.StatusGatewayTimeout, "TIMEOUT", err)
	case errors.Is(err, context.Canceled):
		h.fail(c, http.StatusServiceUnavailable, "CANCELED", err)
	default:
		h.fail(c, http.StatusInternalServerError, "INTERNAL", err)
	}
}

// checkLimits applies the configured gate ceiling, which validator tags cannot express.
func (h *Handlers) checkLimits(c sim.Circuit) error {
	if h.cfg.MaxGates > 0 && len(c.Gates) > h.cfg.MaxGates {
		return fmt.Errorf("%w: %d gates, limit is %d", sim.ErrInvalidCircuit, len(c.Gates), h.cfg.MaxGates)
	}
	return nil
}

// simulate runs one circuit inside a span.
func (h *Handlers) simulate(ctx context.Context, circuit sim.Circuit) (*sim.ExecutionResult, error) {
	ctx, span := h.tracer.Start(ctx, "sim.Simulate", trace.WithAttributes(
		attribute.Int("circuit.qubits", circuit.NumQubits),
		attribute.Int("circuit.gates", len(circuit.Gates)),
	))
	defer span.End()

	res, err := h.engine.SimulateContext(ctx, circuit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if len(res.Warnings) > 0 {
		span.SetAttributes(attribute.StringSlice("result.warnings", res.Warnings))
	}
	return res, nil
}

// HandleSimulate handles POST /v1/simulate.
//
// Response:
//
//	200 OK: sim.ExecutionResult
//	400 Bad Request: malformed or invalid body
//	422 Unprocessable Entity: circuit rejected by the engine
func (h *Handlers) HandleSimulate(c *gin.Context) {
	logger := h.requestLogger(c, "HandleSimulate")

	var req CircuitDTO
	if !h.bind(c, logger, &req) {
		return
	}
	circuit := req.Circuit()
	if err := h.checkLimits(circuit); err != nil {
		h.failSimulation(c, err)
		return
	}

	res, err := h.simulate(c.Request.Context(), circuit)
	if err != nil {
		logger.Warn("Simulation failed", "error", err)
		h.failSimulation(c, err)
		return
	}

	logger.Info("Simulated circuit", "qubits", req.NumQubits, "gates", len(req.Gates), "warnings", len(res.Warnings))
	c.JSON(http.StatusOK, res)
}

// HandleBatch handles POST /v1/simulate/batch.
func (h *Handlers) HandleBatch(c *gin.Context) {
	logger := h.requestLogger(c, "HandleBatch")

	var req BatchRequest
	if !h.bind(c, logger, &req) {
		return
	}
	if len(req.Circuits) > h.cfg.MaxBatch {
		h.fail(c, http.StatusBadRequest, "BATCH_TOO_LARGE",
			fmt.Errorf("batch of %d circuits exceeds limit of %d", len(req.Circuits), h.cfg.MaxBatch))
		return
	}

	circuits := make([]sim.Circuit, len(req.Circuits))
	for i, d := range req.Circuits {
		circuits[i] = d.Circuit()
	}

	results, err := h.runBatch(c.Request.Context(), circuits)
	if err != nil {
		logger.Warn("Batch failed", "error", err)
		h.failSimulation(c, err)
		return
	}

	logger.Info("Simulated batch", "circuits", len(circuits))
	c.JSON(http.StatusOK, BatchResponse{Results: results})
}

// HandleImport handles POST /v1/import.
func (h *Handlers) HandleImport(c *gin.Context) {
	logger := h.requestLogger(c, "HandleImport")

	var req ImportRequest
	if !h.bind(c, logger, &req) {
		return
	}
	format, err := interchange.ParseFormat(req.Format)
	if err != nil {
		h.failSimulation(c, err)
		return
	}
	circuit, err := interchange.Import(req.Source, format)
	if err != nil {
		logger.Warn("Import failed", "format", format, "error", err)
		h.failSimulation(c, err)
		return
	}
	c.JSON(http.StatusOK, circuit)
}

// HandleExport handles POST /v1/export.
func (h *Handlers) HandleExport(c *gin.Context) {
	logger := h.requestLogger(c, "HandleExport")

	var req ExportRequest
	if !h.bind(c, logger, &req) {
		return
	}
	format, err := interchange.ParseFormat(req.Format)
	if err != nil {
		h.failSimulation(c, err)
		return
	}
	src, err := interchange.Export(req.Circuit.Circuit(), format)
	if err != nil {
		h.failSimulation(c, err)
		return
	}
	c.JSON(http.StatusOK, ExportResponse{Format: string(format), Source: src})
}

// HandlePresets handles GET /v1/presets.
func (h *Handlers) HandlePresets(c *gin.Context) {
	c.JSON(http.StatusOK, PresetsResponse{Presets: sim.PresetIDs()})
}

// HandlePreset handles GET /v1/presets/:id.
func (h *Handlers) HandlePreset(c *gin.Context) {
	circuit, ok := sim.Preset(c.Param("id"))
	if !ok {
		h.fail(c, http.StatusNotFound, "PRESET_NOT_FOUND", fmt.Errorf("unknown preset %q", c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, circuit)
}

// HandleRunPreset handles POST /v1/presets/:id/run.
func (h *Handlers) HandleRunPreset(c *gin.Context) {
	logger := h.requestLogger(c, "HandleRunPreset")

	id := c.Param("id")
	circuit, ok := sim.Preset(id)
	if !ok {
		h.fail(c, http.StatusNotFound, "PRESET_NOT_FOUND", fmt.Errorf("unknown preset %q", id))
		return
	}
	res, err := h.simulate(c.Request.Context(), circuit)
	if err != nil {
		logger.Warn("Preset simulation failed", "preset", id, "error", err)
		h.failSimulation(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// HandleClearCache handles DELETE /v1/cache.
func (h *Handlers) HandleClearCache(c *gin.Context) {
	logger := h.requestLogger(c, "HandleClearCache")
	n := h.engine.ClearCache()
	logger.Info("Cleared gate cache", "entries", n)
	c.JSON(http.StatusOK, CacheResponse{Cleared: n})
}

// HandleHealth handles GET /v1/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Version: Version})
}
