package config

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Setenv(EnvSQLitePath, "")
	t.Setenv(EnvLogLevel, "")

	cfg, err := Load(filepath.Join("testdata", "config.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.App.Name != "features-test" {
		t.Fatalf("unexpected App.Name: %s", cfg.App.Name)
	}
	if cfg.App.MetricsAddr != ":9102" {
		t.Fatalf("unexpected App.MetricsAddr: %s", cfg.App.MetricsAddr)
	}
	if cfg.Features.VolWin != 30 || cfg.Features.MomWin != 3 {
		t.Fatalf("unexpected windows: vol=%d mom=%d", cfg.Features.VolWin, cfg.Features.MomWin)
	}
	if !cfg.Features.StrictPrices {
		t.Fatalf("expected strict prices enabled")
	}
	if cfg.Output.Path != "out/features.csv" {
		t.Fatalf("unexpected output path: %s", cfg.Output.Path)
	}
	if cfg.Store.Backend != BackendSQLite {
		t.Fatalf("expected backend normalized to sqlite, got %s", cfg.Store.Backend)
	}
	if cfg.App.LogFormat != "console" {
		t.Fatalf("unexpected log format: %s", cfg.App.LogFormat)
	}
	if cfg.Backtest.Strategy != StrategyBaseline {
		t.Fatalf("unexpected backtest strategy: %s", cfg.Backtest.Strategy)
	}
	if cfg.Backtest.Baseline.Spread != 0.5 {
		t.Fatalf("unexpected baseline spread: %v", cfg.Backtest.Baseline.Spread)
	}
	if cfg.Backtest.AvellanedaStoikov.Gamma != 0.10 {
		t.Fatalf("expected default gamma kept, got %v", cfg.Backtest.AvellanedaStoikov.Gamma)
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv(EnvLogLevel, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Features.VolWin != 60 || cfg.Features.MomWin != 5 {
		t.Fatalf("unexpected default windows: vol=%d mom=%d", cfg.Features.VolWin, cfg.Features.MomWin)
	}
	if cfg.Output.Path != "data/processed/features.csv" {
		t.Fatalf("unexpected default output path: %s", cfg.Output.Path)
	}
	if cfg.Store.Backend != BackendNone {
		t.Fatalf("unexpected default backend: %s", cfg.Store.Backend)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvPostgresDSN, "postgres://env/db")
	t.Setenv(EnvClickHouseDSN, "clickhouse://env:9000/db")
	t.Setenv(EnvSQLitePath, "/tmp/env.db")
	t.Setenv(EnvLogLevel, "warn")

	cfg := Default()
	cfg.ApplyEnv()

	if cfg.Store.PostgresDSN != "postgres://env/db" {
		t.Errorf("unexpected postgres dsn: %s", cfg.Store.PostgresDSN)
	}
	if cfg.Store.ClickHouseDSN != "clickhouse://env:9000/db" {
		t.Errorf("unexpected clickhouse dsn: %s", cfg.Store.ClickHouseDSN)
	}
	if cfg.Store.SQLitePath != "/tmp/env.db" {
		t.Errorf("unexpected sqlite path: %s", cfg.Store.SQLitePath)
	}
	if cfg.App.LogLevel != "warn" {
		t.Errorf("unexpected log level: %s", cfg.App.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero vol window", func(c *Config) { c.Features.VolWin = 0 }, true},
		{"negative mom window", func(c *Config) { c.Features.MomWin = -2 }, true},
		{"postgres without dsn", func(c *Config) { c.Store.Backend = BackendPostgres }, true},
		{"postgres with dsn", func(c *Config) {
			c.Store.Backend = BackendPostgres
			c.Store.PostgresDSN = "postgres://x"
		}, false},
		{"clickhouse without dsn", func(c *Config) { c.Store.Backend = BackendClickHouse }, true},
		{"memory", func(c *Config) { c.Store.Backend = "Memory" }, false},
		{"unknown backend", func(c *Config) { c.Store.Backend = "redis" }, true},
		{"baseline strategy", func(c *Config) { c.Backtest.Strategy = " Baseline " }, false},
		{"unknown strategy", func(c *Config) { c.Backtest.Strategy = "twap" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Features.VolWin = 42
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.Features.VolWin != 42 {
		t.Fatalf("expected vol_win 42, got %d", loaded.Features.VolWin)
	}

	if err := Save(path, nil); err == nil {
		t.Fatalf("expected error saving nil config")
	}
}
