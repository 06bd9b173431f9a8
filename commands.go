package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"qtermsim/config"
	"qtermsim/logging"
	"qtermsim/sim"
)

// --- Global Command Variables ---
var (
	configPath  string
	logLevel    string
	logFile     string
	presetID    string
	editQubits  int
	savePath    string
	inputFormat string
	jsonOutput  bool
	minProb     float64
	exportTo    string
	runPreset   bool
	serveAddr   string

	rootCmd = &cobra.Command{
		Use:   "qtermsim [FILE]",
		Short: "A terminal quantum circuit editor and statevector simulator",
		Long: `qtermsim edits small quantum circuits in the terminal and simulates
them gate by gate. The same engine backs the run, export and serve commands.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runEditor, // Defined in cmd_editor.go
	}

	runCmd = &cobra.Command{
		Use:   "run FILE",
		Short: "Simulate a circuit file and print its final state",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation, // Defined in cmd_sim.go
	}

	exportCmd = &cobra.Command{
		Use:   "export FILE",
		Short: "Convert a circuit file to another format",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport, // Defined in cmd_sim.go
	}

	presetsCmd = &cobra.Command{
		Use:   "presets [ID]",
		Short: "List preset circuits, or print or run one",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPresets, // Defined in cmd_sim.go
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the simulator over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe, // Defined in cmd_serve.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "override log.file")

	rootCmd.Flags().StringVar(&presetID, "preset", "", "start the editor from a preset circuit")
	rootCmd.Flags().IntVar(&editQubits, "qubits", 3, "number of qubits for a new circuit")
	rootCmd.Flags().StringVarP(&savePath, "output", "o", defaultSavePath, "file written by ctrl+s")

	for _, c := range []*cobra.Command{runCmd, exportCmd} {
		c.Flags().StringVarP(&inputFormat, "format", "f", "auto", "input format (auto, qasm, cirq, quil, json, english)")
	}
	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the execution result as JSON")
	runCmd.Flags().Float64Var(&minProb, "min-prob", 1e-9, "hide basis states at or below this probability")

	exportCmd.Flags().StringVarP(&exportTo, "to", "t", "qasm", "output format (qasm, cirq, quil, json, english)")

	presetsCmd.Flags().BoolVar(&runPreset, "run", false, "simulate the preset instead of printing it")
	presetsCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the execution result as JSON")

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "override server.addr")

	rootCmd.AddCommand(runCmd, exportCmd, presetsCmd, serveCmd)
}

// loadConfig reads --config and applies the flag overrides shared by every command.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// app bundles what every command builds from the configuration.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	engine *sim.Engine
	close  func() error
	errOut io.Writer
}

// newApp loads configuration and builds the logger and engine. Logs go to
// log.file when set, otherwise to fallback. errOut receives errors that
// happen after the command has finished.
func newApp(errOut, fallback io.Writer, extra ...sim.Option) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, closeFn, err := logging.Open(cfg.Log, fallback)
	if err != nil {
		return nil, err
	}
	opts := append(cfg.Engine.EngineOptions(), sim.WithLogger(logger))
	opts = append(opts, extra...)
	return &app{
		cfg:    cfg,
		logger: logger,
		engine: sim.NewEngine(opts...),
		close:  closeFn,
		errOut: errOut,
	}, nil
}

func (a *app) Close() {
	if err := a.close(); err != nil {
		fmt.Fprintln(a.errOut, "close log:", err)
	}
}
