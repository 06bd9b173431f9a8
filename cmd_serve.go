package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"qtermsim/server"
	"qtermsim/sim"
)

// runServe starts the HTTP API and blocks until SIGINT or SIGTERM.
func runServe(cmd *cobra.Command, args []string) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := newApp(cmd.ErrOrStderr(), cmd.ErrOrStderr(), sim.WithMetrics(sim.NewMetrics(reg)))
	if err != nil {
		return err
	}
	defer a.Close()

	addr := a.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	gin.SetMode(gin.ReleaseMode)
	h := server.NewHandlers(a.engine, a.cfg.Server, a.logger)
	router := server.NewRouter(h, server.NewHTTPMetrics(reg), reg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.logger.Info("starting simulator API",
		"version", server.Version,
		"max_qubits", a.engine.MaxQubits(),
		"batch_concurrency", a.cfg.Server.BatchConcurrency)
	return server.Serve(ctx, addr, router, a.logger)
}
