// Package config provides configuration loading and access for the physics
// engine, the level tick loop, and the server.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Physics   PhysicsConfig   `yaml:"physics"`
	Automaton AutomatonConfig `yaml:"automaton"`
	Level     LevelConfig     `yaml:"level"`
	Explosion ExplosionConfig `yaml:"explosion"`
	Server    ServerConfig    `yaml:"server"`

	// Derived holds values computed after loading.
	Derived DerivedConfig `yaml:"-"`
}

// PhysicsConfig holds the cellular-automaton diffusion constants.
type PhysicsConfig struct {
	FlowFriction            float64 `yaml:"flow_friction"`
	FlowDamping             float64 `yaml:"flow_damping"`
	ConvectionFriction      float64 `yaml:"convection_friction"`
	HeatFlowFriction        float64 `yaml:"heat_flow_friction"`
	FogFlowFriction         float64 `yaml:"fog_flow_friction"`
	AirTempCoeffPerPressure float64 `yaml:"air_temp_coeff_per_pressure"`
	InitialPressure         float64 `yaml:"initial_pressure"`
	InitialTemperature      float64 `yaml:"initial_temperature"`
}

// AutomatonConfig holds grid and worker-pool sizing parameters.
type AutomatonConfig struct {
	SubdivisionCount int `yaml:"subdivision_count"`
	MaxWorkers       int `yaml:"max_workers"`
}

// LevelConfig holds coarse tile grid and tick pacing parameters.
type LevelConfig struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	TimeSlice float64 `yaml:"time_slice"`
}

// ExplosionConfig holds explosion/fire parameters.
type ExplosionConfig struct {
	BlockLifetime        int     `yaml:"block_lifetime"`
	FireParticleTempRise float64 `yaml:"fire_particle_temperature_rise"`
}

// ServerConfig holds real-time pacing parameters.
type ServerConfig struct {
	EarlyMarginMicros int64 `yaml:"early_margin_micros"`
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	// MoveDuration is the fixed number of Level ticks a Straight/Roll
	// movement takes to complete. The Movement state machine's "t" runs
	// 0..2 over a per-leg duration of time_slice/2, so a single Level tick
	// (length time_slice) covers the whole span and a move completes in
	// one tick.
	MoveDuration float64
}

var global *Config

// Init loads configuration from the given path, or uses embedded defaults if
// path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	return cfg, nil
}

func (c *Config) computeDerived() {
	c.Derived.MoveDuration = 1.0
}
