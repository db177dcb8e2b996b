// Package app wires configuration, strategies, the backtester and its sinks together.
package app

import (
	"context"
	"fmt"
	"maps"

	"go.uber.org/zap"

	"github.com/newthinker/tradesim/internal/alert"
	"github.com/newthinker/tradesim/internal/backtest"
	"github.com/newthinker/tradesim/internal/broker"
	"github.com/newthinker/tradesim/internal/config"
	"github.com/newthinker/tradesim/internal/core"
	"github.com/newthinker/tradesim/internal/data"
	"github.com/newthinker/tradesim/internal/metrics"
	"github.com/newthinker/tradesim/internal/storage/archive"
	"github.com/newthinker/tradesim/internal/strategy"
	"github.com/newthinker/tradesim/internal/strategy/ma_crossover"
	"github.com/newthinker/tradesim/internal/strategy/oscillator"
)

// Request describes one backtest: a bar file, an optional symbol filter,
// a strategy name and parameter overrides on top of the configured ones.
type Request struct {
	DataPath string
	Symbol   string
	Strategy string
	Params   map[string]any
}

// Outcome is the result of one request
type Outcome struct {
	Request     Request
	Result      *backtest.Result
	ArchivePath string
	Alerts      []alert.Alert
	Err         error
}

// App is the main application orchestrator
type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	strategies *strategy.Registry
	loader     *data.Loader
	metrics    *metrics.Registry
	backtester *backtest.Backtester
	alerts     *alert.Evaluator
	webhook    *alert.Webhook       // nil when no webhook is configured
	results    *archive.ResultStore // nil when archiving is off
}

// New creates a new App instance from a validated config
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	strategies := strategy.NewRegistry(logger.Named("strategy"))
	ma_crossover.Register(strategies)
	oscillator.Register(strategies)

	reg := metrics.NewRegistry()

	bt := backtest.New(BacktestConfig(cfg),
		backtest.WithLogger(logger.Named("backtest")),
		backtest.WithSizer(Sizer(cfg)),
		backtest.WithRecorder(reg),
	)

	rules := make([]alert.Rule, len(cfg.Alerts.Rules))
	for i, r := range cfg.Alerts.Rules {
		rules[i] = alert.Rule{Name: r.Name, Expr: r.Expr, Severity: r.Severity, Message: r.Message}
	}
	alerts, err := alert.NewEvaluator(rules, logger.Named("alert"))
	if err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, err)
	}

	a := &App{
		cfg:        cfg,
		logger:     logger,
		strategies: strategies,
		loader:     data.NewLoader(logger.Named("data")),
		metrics:    reg,
		backtester: bt,
		alerts:     alerts,
	}

	if hook := cfg.Alerts.Webhook; hook.URL != "" {
		if a.webhook, err = alert.NewWebhook(hook.URL, hook.Headers, hook.Timeout); err != nil {
			return nil, core.WrapError(core.ErrConfigInvalid, err)
		}
	}

	storage, err := archive.NewStorage(archive.Config{
		Type: cfg.Archive.Type,
		Path: cfg.Archive.Path,
		S3: archive.S3Config{
			Bucket:    cfg.Archive.S3.Bucket,
			Endpoint:  cfg.Archive.S3.Endpoint,
			Region:    cfg.Archive.S3.Region,
			AccessKey: cfg.Archive.S3.AccessKey,
			SecretKey: cfg.Archive.S3.SecretKey,
			Prefix:    cfg.Archive.S3.Prefix,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating archive: %w", err)
	}
	if storage != nil {
		a.results = archive.NewResultStore(storage, logger.Named("archive"))
	}

	return a, nil
}

// BacktestConfig maps the configuration onto the backtester's settings
func BacktestConfig(cfg *config.Config) backtest.Config {
	return backtest.Config{
		InitialCapital: cfg.Backtest.InitialCapital,
		Commission:     cfg.Backtest.Commission,
		Slippage:       cfg.Backtest.Slippage,
		PeriodsPerYear: cfg.Metrics.PeriodsPerYear,
		RiskFreeRate:   cfg.Metrics.RiskFreeRate,
	}
}

// Sizer builds the configured position sizing policy
func Sizer(cfg *config.Config) broker.Sizer {
	if cfg.Backtest.Sizing == config.SizingFixed {
		return broker.NewFixedSizer(cfg.Backtest.FixedQuantity)
	}
	return broker.NewRiskSizer(broker.RiskConfig{
		RiskPerTrade:    cfg.Backtest.RiskPerTrade,
		RiskMultiplier:  cfg.Backtest.RiskMultiplier,
		MaxCashFraction: cfg.Backtest.MaxCashFraction,
	})
}

// Strategies lists the registered strategies
func (a *App) Strategies() []strategy.Info {
	return a.strategies.List()
}

// Metrics returns the Prometheus registry
func (a *App) Metrics() *metrics.Registry {
	return a.metrics
}

// Results returns the result store, nil when archiving is off
func (a *App) Results() *archive.ResultStore {
	return a.results
}

// params merges request overrides over the configured strategy parameters
func (a *App) params(req Request) map[string]any {
	merged := make(map[string]any)
	maps.Copy(merged, a.cfg.Params(req.Strategy))
	maps.Copy(merged, req.Params)
	return merged
}

// Run loads the bars, runs one backtest and archives the result
func (a *App) Run(ctx context.Context, req Request) (Outcome, error) {
	out := Outcome{Request: req}

	strat, err := a.strategies.Create(req.Strategy)
	if err != nil {
		return out, err
	}
	table, err := a.loader.Load(req.DataPath, req.Symbol)
	if err != nil {
		return out, err
	}

	result, err := a.backtester.Run(table, strat, a.params(req))
	if err != nil {
		return out, err
	}
	out.Result = result
	out.Alerts = a.check(req, result)
	a.notify(ctx, out.Alerts)

	if out.ArchivePath, err = a.archive(ctx, result); err != nil {
		return out, err
	}
	return out, nil
}

// RunBatch runs requests concurrently. Load and lookup failures are
// reported per request; the error is non-nil only on cancellation.
func (a *App) RunBatch(ctx context.Context, reqs []Request) ([]Outcome, error) {
	outcomes := make([]Outcome, len(reqs))
	jobs := make([]backtest.Job, 0, len(reqs))
	slots := make([]int, 0, len(reqs))

	for i, req := range reqs {
		outcomes[i].Request = req

		factory, err := a.strategies.Factory(req.Strategy)
		if err != nil {
			outcomes[i].Err = err
			continue
		}
		table, err := a.loader.Load(req.DataPath, req.Symbol)
		if err != nil {
			outcomes[i].Err = err
			continue
		}

		jobs = append(jobs, backtest.Job{
			Name:     fmt.Sprintf("%s:%s", req.Strategy, table.Symbol()),
			Table:    table,
			Strategy: factory,
			Params:   a.params(req),
		})
		slots = append(slots, i)
	}

	a.logger.Info("batch started",
		zap.Int("requests", len(reqs)),
		zap.Int("jobs", len(jobs)),
		zap.Int("parallelism", a.cfg.Batch.Parallelism),
	)

	results, batchErr := a.backtester.RunBatch(ctx, jobs, a.cfg.Batch.Parallelism)
	for j, r := range results {
		out := &outcomes[slots[j]]
		out.Result, out.Err = r.Result, r.Err
		if out.Err == nil {
			out.Alerts = a.check(out.Request, out.Result)
		}
		if out.Err == nil && ctx.Err() == nil {
			out.ArchivePath, out.Err = a.archive(ctx, out.Result)
		}
	}
	var alerts []alert.Alert
	for _, out := range outcomes {
		a.metrics.RecordBatchJob(out.Err)
		alerts = append(alerts, out.Alerts...)
	}
	a.notify(ctx, alerts)

	return outcomes, batchErr
}

// check evaluates the alert rules against a result's metrics
func (a *App) check(req Request, result *backtest.Result) []alert.Alert {
	return a.alerts.Check(fmt.Sprintf("%s:%s", req.Strategy, result.Symbol), result.Metrics.Values())
}

// notify delivers alerts to the webhook. Delivery failures are logged, not returned.
func (a *App) notify(ctx context.Context, alerts []alert.Alert) {
	if a.webhook == nil || len(alerts) == 0 {
		return
	}
	if err := a.webhook.Send(ctx, alerts); err != nil {
		a.logger.Warn("alert delivery failed", zap.Int("alerts", len(alerts)), zap.Error(err))
	}
}

func (a *App) archive(ctx context.Context, result *backtest.Result) (string, error) {
	if a.results == nil {
		return "", nil
	}
	return a.results.Save(ctx, result)
}

// Flush writes the metrics textfile when one is configured
func (a *App) Flush() error {
	if a.cfg.Prometheus.Textfile == "" {
		return nil
	}
	if err := a.metrics.WriteTextfile(a.cfg.Prometheus.Textfile); err != nil {
		return err
	}
	a.logger.Debug("metrics written", zap.String("path", a.cfg.Prometheus.Textfile))
	return nil
}
