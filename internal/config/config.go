package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/newthinker/tradesim/internal/core"
)

// EnvPrefix prefixes environment overrides, e.g. TRADESIM_BACKTEST_COMMISSION
const EnvPrefix = "TRADESIM"

// Sizing policies
const (
	SizingRisk  = "risk"
	SizingFixed = "fixed"
)

type Config struct {
	Backtest   BacktestConfig            `mapstructure:"backtest"`
	Metrics    MetricsConfig             `mapstructure:"metrics"`
	Batch      BatchConfig               `mapstructure:"batch"`
	Log        LogConfig                 `mapstructure:"log"`
	Archive    ArchiveConfig             `mapstructure:"archive"`
	Strategies map[string]StrategyConfig `mapstructure:"strategies"`
	Prometheus PrometheusConfig          `mapstructure:"prometheus"`
	Alerts     AlertsConfig              `mapstructure:"alerts"`
}

// BacktestConfig holds capital, costs and position sizing.
type BacktestConfig struct {
	InitialCapital  float64 `mapstructure:"initial_capital"`
	Commission      float64 `mapstructure:"commission"`
	Slippage        float64 `mapstructure:"slippage"`
	Sizing          string  `mapstructure:"sizing"` // "risk" or "fixed"
	FixedQuantity   int64   `mapstructure:"fixed_quantity"`
	RiskPerTrade    float64 `mapstructure:"risk_per_trade"`
	RiskMultiplier  float64 `mapstructure:"risk_multiplier"`
	MaxCashFraction float64 `mapstructure:"max_cash_fraction"`
}

// MetricsConfig holds performance metric settings.
type MetricsConfig struct {
	PeriodsPerYear int     `mapstructure:"periods_per_year"`
	RiskFreeRate   float64 `mapstructure:"risk_free_rate"`
}

type BatchConfig struct {
	Parallelism int `mapstructure:"parallelism"`
}

type LogConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

type ArchiveConfig struct {
	Type string   `mapstructure:"type"` // "none", "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type StrategyConfig struct {
	Params map[string]any `mapstructure:"params"`
}

// PrometheusConfig holds metrics export settings.
type PrometheusConfig struct {
	Textfile string `mapstructure:"textfile"` // empty disables export
}

// AlertsConfig holds result alert rules and their delivery.
type AlertsConfig struct {
	Rules   []AlertRule   `mapstructure:"rules"`
	Webhook WebhookConfig `mapstructure:"webhook"`
}

// WebhookConfig posts triggered alerts as JSON; an empty URL disables it.
type WebhookConfig struct {
	URL     string            `mapstructure:"url"`
	Headers map[string]string `mapstructure:"headers"`
	Timeout time.Duration     `mapstructure:"timeout"`
}

// AlertRule flags a result whose metric crosses a threshold, e.g. "max_drawdown > 25".
type AlertRule struct {
	Name     string `mapstructure:"name"`
	Expr     string `mapstructure:"expr"`
	Severity string `mapstructure:"severity"`
	Message  string `mapstructure:"message"`
}

// Load reads configuration from file on top of Defaults. An empty path
// loads defaults and environment overrides only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Defaults())

	// Support environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("backtest.initial_capital", d.Backtest.InitialCapital)
	v.SetDefault("backtest.commission", d.Backtest.Commission)
	v.SetDefault("backtest.slippage", d.Backtest.Slippage)
	v.SetDefault("backtest.sizing", d.Backtest.Sizing)
	v.SetDefault("backtest.fixed_quantity", d.Backtest.FixedQuantity)
	v.SetDefault("backtest.risk_per_trade", d.Backtest.RiskPerTrade)
	v.SetDefault("backtest.risk_multiplier", d.Backtest.RiskMultiplier)
	v.SetDefault("backtest.max_cash_fraction", d.Backtest.MaxCashFraction)
	v.SetDefault("metrics.periods_per_year", d.Metrics.PeriodsPerYear)
	v.SetDefault("metrics.risk_free_rate", d.Metrics.RiskFreeRate)
	v.SetDefault("batch.parallelism", d.Batch.Parallelism)
	v.SetDefault("log.development", d.Log.Development)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("archive.type", d.Archive.Type)
	v.SetDefault("archive.path", d.Archive.Path)
	v.SetDefault("archive.s3.bucket", "")
	v.SetDefault("archive.s3.endpoint", "")
	v.SetDefault("archive.s3.region", d.Archive.S3.Region)
	v.SetDefault("archive.s3.access_key", "")
	v.SetDefault("archive.s3.secret_key", "")
	v.SetDefault("archive.s3.prefix", "")
	v.SetDefault("prometheus.textfile", d.Prometheus.Textfile)
	v.SetDefault("alerts.webhook.url", "")
	v.SetDefault("alerts.webhook.timeout", d.Alerts.Webhook.Timeout)
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Backtest: BacktestConfig{
			InitialCapital:  10000,
			Commission:      0.001,
			Slippage:        0.001,
			Sizing:          SizingRisk,
			FixedQuantity:   100,
			RiskPerTrade:    0.02,
			RiskMultiplier:  5,
			MaxCashFraction: 0.95,
		},
		Metrics: MetricsConfig{
			PeriodsPerYear: 252,
			RiskFreeRate:   0,
		},
		Batch: BatchConfig{
			Parallelism: 4,
		},
		Log: LogConfig{
			Level: "info",
		},
		Archive: ArchiveConfig{
			Type: "none",
			Path: "./results",
			S3: S3Config{
				Region: "us-east-1",
			},
		},
		Alerts: AlertsConfig{
			Webhook: WebhookConfig{Timeout: 30 * time.Second},
		},
	}
}

// Params returns the configured parameters for a strategy, nil if none
func (c *Config) Params(strategy string) map[string]any {
	if sc, ok := c.Strategies[strategy]; ok {
		return sc.Params
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	b := c.Backtest
	if b.InitialCapital <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("initial_capital must be positive, got %v", b.InitialCapital))
	}
	if b.Commission < 0 || b.Commission >= 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("commission must be in [0, 1), got %v", b.Commission))
	}
	if b.Slippage < 0 || b.Slippage >= 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("slippage must be in [0, 1), got %v", b.Slippage))
	}

	switch b.Sizing {
	case SizingFixed:
		if b.FixedQuantity <= 0 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("fixed_quantity must be positive, got %d", b.FixedQuantity))
		}
	case SizingRisk:
		if b.RiskPerTrade <= 0 || b.RiskPerTrade > 1 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("risk_per_trade must be in (0, 1], got %v", b.RiskPerTrade))
		}
		if b.RiskMultiplier <= 0 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("risk_multiplier must be positive, got %v", b.RiskMultiplier))
		}
		if b.MaxCashFraction <= 0 || b.MaxCashFraction > 1 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("max_cash_fraction must be in (0, 1], got %v", b.MaxCashFraction))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("sizing must be %q or %q, got %q", SizingRisk, SizingFixed, b.Sizing))
	}

	if c.Metrics.PeriodsPerYear <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("periods_per_year must be positive, got %d", c.Metrics.PeriodsPerYear))
	}
	if c.Batch.Parallelism < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("batch parallelism must be at least 1, got %d", c.Batch.Parallelism))
	}

	if c.Log.Level != "" {
		if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
			return core.WrapError(core.ErrConfigInvalid, err)
		}
	}

	for i, rule := range c.Alerts.Rules {
		if rule.Name == "" || rule.Expr == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("alert rule %d needs a name and an expr", i))
		}
	}

	if c.Alerts.Webhook.URL != "" && c.Alerts.Webhook.Timeout <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("alerts webhook timeout must be positive, got %s", c.Alerts.Webhook.Timeout))
	}

	// Archive validation - if a backend is selected, check its settings exist
	switch c.Archive.Type {
	case "", "none":
	case "localfs":
		if c.Archive.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("archive path required when type is localfs"))
		}
	case "s3":
		if c.Archive.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("archive s3 bucket required when type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("archive type must be none, localfs or s3, got %q", c.Archive.Type))
	}

	return nil
}
