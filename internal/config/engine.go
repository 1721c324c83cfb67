package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Engine holds all configuration of the magic simulation.
type Engine struct {
	LogLevel string `yaml:"log_level" env:"MAGIC2D_LOG_LEVEL"`

	// Simulation
	TickMs          int32 `yaml:"tick_ms" env:"MAGIC2D_TICK_MS"`
	SimulationTicks int   `yaml:"simulation_ticks" env:"MAGIC2D_SIMULATION_TICKS"` // 0 = run until interrupted

	// Data
	CatalogDir  string `yaml:"catalog_dir" env:"MAGIC2D_CATALOG_DIR"`
	ModsDir     string `yaml:"mods_dir" env:"MAGIC2D_MODS_DIR"`
	UseDatabase bool   `yaml:"use_database" env:"MAGIC2D_USE_DATABASE"` // catalog from PostgreSQL instead of CatalogDir

	// Magic coordinator
	CollisionCellSize float64 `yaml:"collision_cell_size" env:"MAGIC2D_COLLISION_CELL_SIZE"`
	ViewRadius        float64 `yaml:"view_radius" env:"MAGIC2D_VIEW_RADIUS"`
	ScreenShakeMs     int32   `yaml:"screen_shake_ms" env:"MAGIC2D_SCREEN_SHAKE_MS"`

	// Database
	Database DatabaseConfig `yaml:"database" envPrefix:"MAGIC2D_DB_"`
}

// DefaultEngine returns Engine config with sensible defaults.
func DefaultEngine() Engine {
	return Engine{
		LogLevel:          "info",
		TickMs:            16,
		SimulationTicks:   0,
		CatalogDir:        "data/spells",
		ModsDir:           "data/mods",
		CollisionCellSize: 64,
		ViewRadius:        640,
		ScreenShakeMs:     500,
		Database:          DefaultDatabase(),
	}
}

// LoadEngine loads engine config from a YAML file, then applies MAGIC2D_*
// environment overrides. If the file doesn't exist, defaults are used.
func LoadEngine(path string) (Engine, error) {
	cfg := DefaultEngine()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the simulation cannot run with.
func (e Engine) Validate() error {
	if e.TickMs <= 0 {
		return fmt.Errorf("tick_ms must be positive, got %d", e.TickMs)
	}
	if e.SimulationTicks < 0 {
		return fmt.Errorf("simulation_ticks must not be negative, got %d", e.SimulationTicks)
	}
	if e.CollisionCellSize <= 0 {
		return fmt.Errorf("collision_cell_size must be positive, got %g", e.CollisionCellSize)
	}
	if e.ViewRadius <= 0 {
		return fmt.Errorf("view_radius must be positive, got %g", e.ViewRadius)
	}
	if e.ScreenShakeMs < 0 {
		return fmt.Errorf("screen_shake_ms must not be negative, got %d", e.ScreenShakeMs)
	}
	if !e.UseDatabase && e.CatalogDir == "" {
		return fmt.Errorf("catalog_dir is required when use_database is off")
	}
	return nil
}
