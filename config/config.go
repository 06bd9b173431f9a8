// Package config loads the qtermsim configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"qtermsim/sim"
)

// Config is the whole configuration file.
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Engine EngineConfig `yaml:"engine"`
	Server ServerConfig `yaml:"server"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
	// File redirects logs away from stderr. The editor needs this to log at all.
	File string `yaml:"file"`
}

// EngineConfig maps onto sim.Engine options.
type EngineConfig struct {
	MaxQubits           int     `yaml:"max_qubits" validate:"min=1,max=30"`
	StrictGates         bool    `yaml:"strict_gates"`
	DegeneracyTolerance float64 `yaml:"degeneracy_tolerance" validate:"gt=0,lt=1"`
}

type ServerConfig struct {
	Addr             string        `yaml:"addr" validate:"required"`
	BatchConcurrency int           `yaml:"batch_concurrency" validate:"min=1,max=256"`
	MaxBatch         int           `yaml:"max_batch" validate:"min=1,max=10000"`
	MaxGates         int           `yaml:"max_gates" validate:"min=1"`
	RequestTimeout   time.Duration `yaml:"request_timeout" validate:"gt=0"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Engine: EngineConfig{
			MaxQubits:           24,
			DegeneracyTolerance: sim.DefaultDegeneracyTolerance,
		},
		Server: ServerConfig{
			Addr:             ":8080",
			BatchConcurrency: 4,
			MaxBatch:         64,
			MaxGates:         10000,
			RequestTimeout:   30 * time.Second,
		},
	}
}

var validate = validator.New()

// Validate checks every field against its constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Load reads path over the defaults. An empty path returns the defaults.
// Keys missing from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read the config file: %w", err)
	}
	if err := Parse(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML into cfg and validates the result.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse the config: %w", err)
	}
	return cfg.Validate()
}

// EngineOptions translates the engine section.
func (c EngineConfig) EngineOptions() []sim.Option {
	return []sim.Option{
		sim.WithMaxQubits(c.MaxQubits),
		sim.WithStrictGates(c.StrictGates),
		sim.WithDegeneracyTolerance(c.DegeneracyTolerance),
	}
}

// FieldErrors lists the failing fields of a validation error as "Config.Section.Field: tag".
// It returns nil for any other error.
func FieldErrors(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag()))
	}
	return out
}
