package config

import (
	"fmt"
	"os"

	"Imperium/internal/bridge"
	"Imperium/internal/diplomacy"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds all daemon configuration. YAML is the primary source;
// environment variables override individual fields for container deploys.
type Config struct {
	Simulation struct {
		DailyCron    string `yaml:"daily_cron" env:"SIM_DAILY_CRON"`
		Workers      int    `yaml:"workers" env:"SIM_WORKERS"`
		SnapshotFile string `yaml:"snapshot_file" env:"SIM_SNAPSHOT_FILE"`
	} `yaml:"simulation"`

	World struct {
		File string `yaml:"file" env:"WORLD_FILE"`
	} `yaml:"world"`

	Treasury struct {
		Floor   int64 `yaml:"floor" env:"TREASURY_FLOOR"`
		Ceiling int64 `yaml:"ceiling" env:"TREASURY_CEILING"`
	} `yaml:"treasury"`

	Database struct {
		SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH"`
	} `yaml:"database"`

	Population bridge.PopulationConfig `yaml:"population"`
	Trade      bridge.TradeConfig      `yaml:"trade"`
	Technology bridge.TechnologyConfig `yaml:"technology"`
	Diplomacy  diplomacy.Config        `yaml:"diplomacy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides, then fills defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Population: bridge.DefaultPopulationConfig(),
		Trade:      bridge.DefaultTradeConfig(),
		Technology: bridge.DefaultTechnologyConfig(),
		Diplomacy:  diplomacy.DefaultConfig(),
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	// Defaults
	if cfg.Simulation.DailyCron == "" {
		cfg.Simulation.DailyCron = "*/10 * * * * *"
	}
	if cfg.Simulation.Workers == 0 {
		cfg.Simulation.Workers = 4
	}
	if cfg.Simulation.SnapshotFile == "" {
		cfg.Simulation.SnapshotFile = "data/world_snapshot.json"
	}
	if cfg.Treasury.Ceiling == 0 {
		cfg.Treasury.Ceiling = 2_000_000_000
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/imperium.db"
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Simulation.DailyCron == "" {
		return fmt.Errorf("simulation.daily_cron is required")
	}
	if c.Simulation.Workers < 1 {
		return fmt.Errorf("simulation.workers must be positive")
	}
	if c.Treasury.Floor > c.Treasury.Ceiling {
		return fmt.Errorf("treasury.floor must not exceed treasury.ceiling")
	}
	if c.Population.UpdateIntervalDays <= 0 {
		return fmt.Errorf("population.update_interval_days must be positive")
	}
	if c.Trade.UpdateIntervalDays <= 0 {
		return fmt.Errorf("trade.update_interval_days must be positive")
	}
	if c.Technology.UpdateIntervalDays <= 0 {
		return fmt.Errorf("technology.update_interval_days must be positive")
	}
	if c.Diplomacy.UpdateIntervalDays <= 0 {
		return fmt.Errorf("diplomacy.update_interval_days must be positive")
	}
	return nil
}
