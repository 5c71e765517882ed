// Package config holds the YAML configuration for the feature pipeline.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendNone       = "none"
	BackendMemory     = "memory"
	BackendPostgres   = "postgres"
	BackendClickHouse = "clickhouse"
	BackendSQLite     = "sqlite"
)

// Environment overrides applied after the file is decoded.
const (
	EnvPostgresDSN   = "FEATURES_POSTGRES_DSN"
	EnvClickHouseDSN = "FEATURES_CLICKHOUSE_DSN"
	EnvSQLitePath    = "FEATURES_SQLITE_PATH"
	EnvLogLevel      = "FEATURES_LOG_LEVEL"
)

// ErrInvalidConfig is wrapped by Validate failures.
var ErrInvalidConfig = errors.New("invalid config")

// App captures process-wide settings.
type App struct {
	Name        string `yaml:"name"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"` // json or console
	MetricsAddr string `yaml:"metrics_addr"`
}

// Features configures the rolling windows.
type Features struct {
	VolWin       int  `yaml:"vol_win"`
	MomWin       int  `yaml:"mom_win"`
	StrictPrices bool `yaml:"strict_prices"`
}

// Output configures where the feature table is written.
type Output struct {
	Path string `yaml:"path"`
}

// Store selects and configures the feature store backend.
type Store struct {
	Backend       string `yaml:"backend"`
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickHouseDSN string `yaml:"clickhouse_dsn"`
	SQLitePath    string `yaml:"sqlite_path"`
}

// Quoting strategies available to the backtest.
const (
	StrategyAvellanedaStoikov = "avellaneda_stoikov"
	StrategyBaseline          = "baseline"
)

// AvellanedaStoikov parameterizes the inventory-aware quoter.
type AvellanedaStoikov struct {
	Gamma         float64 `yaml:"gamma"`        // risk aversion, > 0
	Kappa         float64 `yaml:"kappa"`        // order arrival decay, > 0
	HorizonBars   int     `yaml:"horizon_bars"` // variance horizon; values below 1 count as 1
	VolWindow     int     `yaml:"vol_window"`   // returns kept for sigma
	Tick          float64 `yaml:"tick"`         // 0 disables rounding
	BetaMom       float64 `yaml:"beta_mom"`     // reservation tilt per unit of momentum
	MinHalfSpread float64 `yaml:"min_half_spread"`
	MaxHalfSpread float64 `yaml:"max_half_spread"`
	QuoteSize     float64 `yaml:"quote_size"`
}

// Baseline parameterizes the fixed-spread quoter.
type Baseline struct {
	Spread      float64 `yaml:"spread"`
	SkewPerUnit float64 `yaml:"skew_per_unit"`
	Qty         float64 `yaml:"qty"`
	FallbackMid float64 `yaml:"fallback_mid"` // quoted around when a bar has no usable mid
}

// Backtest selects the quoting strategy replayed over a feature series.
type Backtest struct {
	Strategy          string            `yaml:"strategy"`
	AvellanedaStoikov AvellanedaStoikov `yaml:"avellaneda_stoikov"`
	Baseline          Baseline          `yaml:"baseline"`
}

// Config is the top-level configuration document.
type Config struct {
	App      App      `yaml:"app"`
	Features Features `yaml:"features"`
	Output   Output   `yaml:"output"`
	Store    Store    `yaml:"store"`
	Backtest Backtest `yaml:"backtest"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		App: App{
			Name:      "bar-feature-lab",
			LogLevel:  "info",
			LogFormat: "json",
		},
		Features: Features{
			VolWin: 60,
			MomWin: 5,
		},
		Output: Output{
			Path: "data/processed/features.csv",
		},
		Store: Store{
			Backend:    BackendNone,
			SQLitePath: "data/features.db",
		},
		Backtest: Backtest{
			Strategy: StrategyAvellanedaStoikov,
			AvellanedaStoikov: AvellanedaStoikov{
				Gamma:         0.10,
				Kappa:         1.00,
				HorizonBars:   5,
				VolWindow:     60,
				Tick:          0.01,
				MaxHalfSpread: 1.00,
				QuoteSize:     100,
			},
			Baseline: Baseline{
				Spread:      2,
				SkewPerUnit: 1,
				Qty:         5,
				FallbackMid: 100,
			},
		},
	}
}

// Load reads a YAML file over the defaults and applies environment overrides.
// A .env file in the working directory is loaded first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // optional

	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides DSNs, paths and log level from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvPostgresDSN); v != "" {
		c.Store.PostgresDSN = v
	}
	if v := os.Getenv(EnvClickHouseDSN); v != "" {
		c.Store.ClickHouseDSN = v
	}
	if v := os.Getenv(EnvSQLitePath); v != "" {
		c.Store.SQLitePath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.App.LogLevel = v
	}
}

// Validate checks window sizes and backend settings.
func (c *Config) Validate() error {
	if c.Features.VolWin <= 0 {
		return fmt.Errorf("%w: features.vol_win must be positive, got %d", ErrInvalidConfig, c.Features.VolWin)
	}
	if c.Features.MomWin <= 0 {
		return fmt.Errorf("%w: features.mom_win must be positive, got %d", ErrInvalidConfig, c.Features.MomWin)
	}

	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	switch c.Store.Backend {
	case "", BackendNone, BackendMemory:
	case BackendPostgres:
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("%w: store.postgres_dsn required for postgres backend", ErrInvalidConfig)
		}
	case BackendClickHouse:
		if c.Store.ClickHouseDSN == "" {
			return fmt.Errorf("%w: store.clickhouse_dsn required for clickhouse backend", ErrInvalidConfig)
		}
	case BackendSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("%w: store.sqlite_path required for sqlite backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store.backend %q", ErrInvalidConfig, c.Store.Backend)
	}

	c.Backtest.Strategy = strings.ToLower(strings.TrimSpace(c.Backtest.Strategy))
	switch c.Backtest.Strategy {
	case "", StrategyAvellanedaStoikov, StrategyBaseline:
	default:
		return fmt.Errorf("%w: unknown backtest.strategy %q", ErrInvalidConfig, c.Backtest.Strategy)
	}
	return nil
}

// Save persists a Config to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
