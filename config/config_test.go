package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qtermsim/sim"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 24, cfg.Engine.MaxQubits)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qtermsim.yaml")
	data := `
log:
  level: debug
engine:
  max_qubits: 12
  strict_gates: true
server:
  request_timeout: 5s
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 12, cfg.Engine.MaxQubits)
	assert.True(t, cfg.Engine.StrictGates)
	assert.Equal(t, sim.DefaultDegeneracyTolerance, cfg.Engine.DegeneracyTolerance)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 64, cfg.Server.MaxBatch)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		field string
	}{
		{"log level", "log: {level: loud}", "Config.Log.Level: oneof"},
		{"log format", "log: {format: xml}", "Config.Log.Format: oneof"},
		{"too many qubits", "engine: {max_qubits: 31}", "Config.Engine.MaxQubits: max"},
		{"zero tolerance", "engine: {degeneracy_tolerance: 0}", "Config.Engine.DegeneracyTolerance: gt"},
		{"empty addr", `server: {addr: ""}`, "Config.Server.Addr: required"},
		{"zero batch", "server: {max_batch: 0}", "Config.Server.MaxBatch: min"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			err := Parse([]byte(tt.data), &cfg)
			require.Error(t, err)
			assert.Contains(t, FieldErrors(err), tt.field)
		})
	}
}

func TestParseBadYAML(t *testing.T) {
	cfg := Default()
	err := Parse([]byte("engine: [1, 2"), &cfg)
	require.Error(t, err)
	assert.Nil(t, FieldErrors(err))
}

func TestEngineOptions(t *testing.T) {
	cfg := Default()
	cfg.Engine.MaxQubits = 3
	cfg.Engine.StrictGates = true

	e := sim.NewEngine(cfg.Engine.EngineOptions()...)
	assert.Equal(t, 3, e.MaxQubits())

	_, err := e.Simulate(sim.Circuit{NumQubits: 4})
	require.ErrorIs(t, err, sim.ErrTooManyQubits)

	_, err = e.Simulate(sim.Circuit{NumQubits: 1, Gates: []sim.Gate{{Type: "T", Target: 0}}})
	require.ErrorIs(t, err, sim.ErrUnsupportedGate)
}
