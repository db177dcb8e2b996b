package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/newthinker/tradesim/internal/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return cfgPath
}

func TestLoad_FromFile(t *testing.T) {
	cfgPath := writeConfig(t, `
backtest:
  initial_capital: 50000
  commission: 0.0005
  sizing: fixed
  fixed_quantity: 25

archive:
  type: localfs
  path: "/tmp/tradesim/results"

strategies:
  sma_crossover:
    params:
      short_window: 10
      long_window: 30

alerts:
  rules:
    - name: deep_drawdown
      expr: "max_drawdown > 25"
      severity: warning
      message: drawdown above 25%
  webhook:
    url: http://localhost:9000/hook
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Backtest.InitialCapital != 50000 {
		t.Errorf("expected initial_capital 50000, got %v", cfg.Backtest.InitialCapital)
	}
	if cfg.Backtest.Sizing != SizingFixed || cfg.Backtest.FixedQuantity != 25 {
		t.Errorf("expected fixed sizing of 25, got %s/%d", cfg.Backtest.Sizing, cfg.Backtest.FixedQuantity)
	}
	if cfg.Archive.Type != "localfs" {
		t.Errorf("expected localfs, got %s", cfg.Archive.Type)
	}

	// keys absent from the file keep their defaults
	if cfg.Backtest.Slippage != 0.001 {
		t.Errorf("expected default slippage 0.001, got %v", cfg.Backtest.Slippage)
	}
	if cfg.Metrics.PeriodsPerYear != 252 {
		t.Errorf("expected default periods_per_year 252, got %d", cfg.Metrics.PeriodsPerYear)
	}

	params := cfg.Params("sma_crossover")
	if params["short_window"] != 10 {
		t.Errorf("expected short_window 10, got %v", params["short_window"])
	}
	if cfg.Params("rsi") != nil {
		t.Error("expected nil params for unconfigured strategy")
	}

	if len(cfg.Alerts.Rules) != 1 || cfg.Alerts.Rules[0].Expr != "max_drawdown > 25" {
		t.Errorf("expected one alert rule, got %+v", cfg.Alerts.Rules)
	}
	if cfg.Alerts.Webhook.URL != "http://localhost:9000/hook" || cfg.Alerts.Webhook.Timeout != 30*time.Second {
		t.Errorf("unexpected webhook config %+v", cfg.Alerts.Webhook)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config should validate: %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TRADESIM_BACKTEST_COMMISSION", "0.002")
	t.Setenv("TRADESIM_BATCH_PARALLELISM", "8")
	t.Setenv("TEST_S3_SECRET", "s3cr3t")

	cfgPath := writeConfig(t, `
archive:
  type: s3
  s3:
    bucket: results
    secret_key: "${TEST_S3_SECRET}"
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Backtest.Commission != 0.002 {
		t.Errorf("expected env commission 0.002, got %v", cfg.Backtest.Commission)
	}
	if cfg.Batch.Parallelism != 8 {
		t.Errorf("expected env parallelism 8, got %d", cfg.Batch.Parallelism)
	}
	if cfg.Archive.S3.SecretKey != "s3cr3t" {
		t.Errorf("expected expanded secret, got %q", cfg.Archive.S3.SecretKey)
	}
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("failed to load defaults: %v", err)
	}
	if cfg.Backtest.InitialCapital != 10000 {
		t.Errorf("expected default capital, got %v", cfg.Backtest.InitialCapital)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Backtest.InitialCapital != 10000 {
		t.Errorf("expected default capital 10000, got %v", cfg.Backtest.InitialCapital)
	}
	if cfg.Backtest.RiskPerTrade != 0.02 {
		t.Errorf("expected default risk_per_trade 0.02, got %v", cfg.Backtest.RiskPerTrade)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"valid config", func(c *Config) {}, nil},
		{"zero capital", func(c *Config) { c.Backtest.InitialCapital = 0 }, core.ErrConfigInvalid},
		{"negative commission", func(c *Config) { c.Backtest.Commission = -0.1 }, core.ErrConfigInvalid},
		{"slippage of one", func(c *Config) { c.Backtest.Slippage = 1 }, core.ErrConfigInvalid},
		{"unknown sizing", func(c *Config) { c.Backtest.Sizing = "kelly" }, core.ErrConfigInvalid},
		{"fixed without quantity", func(c *Config) {
			c.Backtest.Sizing = SizingFixed
			c.Backtest.FixedQuantity = 0
		}, core.ErrConfigInvalid},
		{"risk above one", func(c *Config) { c.Backtest.RiskPerTrade = 1.5 }, core.ErrConfigInvalid},
		{"zero multiplier", func(c *Config) { c.Backtest.RiskMultiplier = 0 }, core.ErrConfigInvalid},
		{"cash fraction zero", func(c *Config) { c.Backtest.MaxCashFraction = 0 }, core.ErrConfigInvalid},
		{"zero periods", func(c *Config) { c.Metrics.PeriodsPerYear = 0 }, core.ErrConfigInvalid},
		{"zero parallelism", func(c *Config) { c.Batch.Parallelism = 0 }, core.ErrConfigInvalid},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, core.ErrConfigInvalid},
		{"localfs without path", func(c *Config) {
			c.Archive.Type = "localfs"
			c.Archive.Path = ""
		}, core.ErrConfigMissing},
		{"s3 without bucket", func(c *Config) { c.Archive.Type = "s3" }, core.ErrConfigMissing},
		{"unknown archive", func(c *Config) { c.Archive.Type = "ftp" }, core.ErrConfigInvalid},
		{"alert without expr", func(c *Config) {
			c.Alerts.Rules = []AlertRule{{Name: "empty"}}
		}, core.ErrConfigMissing},
		{"webhook without timeout", func(c *Config) {
			c.Alerts.Webhook = WebhookConfig{URL: "http://localhost/hook"}
		}, core.ErrConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}
