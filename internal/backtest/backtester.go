package backtest

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/newthinker/tradesim/internal/broker"
	"github.com/newthinker/tradesim/internal/core"
	"github.com/newthinker/tradesim/internal/performance"
	"github.com/newthinker/tradesim/internal/portfolio"
	"github.com/newthinker/tradesim/internal/strategy"
)

// Option configures a Backtester
type Option func(*Backtester)

// WithLogger sets the logger for the run and the components it creates
func WithLogger(l *zap.Logger) Option {
	return func(b *Backtester) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithSizer sets the position sizing policy
func WithSizer(s broker.Sizer) Option {
	return func(b *Backtester) {
		if s != nil {
			b.sizer = s
		}
	}
}

// WithRecorder sets the sink for run and order counters
func WithRecorder(r Recorder) Option {
	return func(b *Backtester) {
		if r != nil {
			b.recorder = r
		}
	}
}

// WithClock sets the clock used to time runs
func WithClock(now func() time.Time) Option {
	return func(b *Backtester) {
		if now != nil {
			b.now = now
		}
	}
}

// Backtester runs a strategy over a bar table against a fresh portfolio.
// It is immutable after New; every Run builds its own Portfolio and
// OrderExecutor, so one Backtester may serve concurrent runs.
type Backtester struct {
	config   Config
	logger   *zap.Logger
	sizer    broker.Sizer
	recorder Recorder
	now      func() time.Time
}

// New creates a new Backtester
func New(cfg Config, opts ...Option) *Backtester {
	b := &Backtester{
		config:   cfg,
		logger:   zap.NewNop(),
		sizer:    broker.NewRiskSizer(broker.DefaultRiskConfig()),
		recorder: nopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Config returns the run configuration
func (b *Backtester) Config() Config {
	return b.config
}

// Run simulates strat over table. Invalid input and strategy failures abort
// the run with an error; refused orders are logged and the loop continues.
func (b *Backtester) Run(table *core.Table, strat strategy.Strategy, params map[string]any) (result *Result, err error) {
	started := b.now()
	name := "unknown"
	if strat != nil {
		name = strat.Name()
	}
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		b.recorder.RecordBacktest(name, status, b.now().Sub(started).Seconds())
	}()

	if strat == nil {
		return nil, core.WrapError(core.ErrStrategyFailed, errors.New("nil strategy"))
	}
	if table == nil {
		return nil, core.ErrNoData
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	if table.Len() == 0 {
		return nil, core.ErrNoData
	}

	symbol := table.Symbol()
	log := b.logger.With(zap.String("strategy", name), zap.String("symbol", symbol))
	log.Info("backtest started",
		zap.Int("bars", table.Len()),
		zap.Float64("initial_capital", b.config.InitialCapital),
	)

	signals, err := b.generateSignals(table, strat, params)
	if err != nil {
		log.Error("signal generation failed", zap.Int("bars", table.Len()), zap.Error(err))
		return nil, core.WrapError(core.ErrStrategyFailed, err)
	}
	if len(signals) != table.Len() {
		log.Warn("signal count differs from bar count, missing bars hold",
			zap.Int("signals", len(signals)),
			zap.Int("bars", table.Len()),
		)
	}

	result, err = b.simulate(table, name, symbol, signals, log)
	if err != nil {
		return nil, err
	}

	log.Info("backtest finished",
		zap.String("run_id", result.RunID),
		zap.Float64("final_value", result.FinalPortfolioValue),
		zap.Int("trades", result.TotalTrades),
		zap.Int("refused", result.Refused),
	)
	return result, nil
}

// generateSignals initializes the strategy and converts a panic into an error
func (b *Backtester) generateSignals(table *core.Table, strat strategy.Strategy, params map[string]any) (signals []core.Signal, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("strategy panicked: %v", r)
		}
	}()

	if err := strat.Init(strategy.Config{Params: params}); err != nil {
		return nil, err
	}
	return strat.GenerateSignals(table)
}

func (b *Backtester) simulate(table *core.Table, name, symbol string, signals []core.Signal, log *zap.Logger) (*Result, error) {
	n := table.Len()
	closes := table.Close()

	// the bootstrap snapshot lands on no bar, so bar 0 is backfilled from bar 1
	bootstrap := earliest(table.Index).Add(-time.Nanosecond)
	ledger := portfolio.New(b.config.InitialCapital,
		portfolio.WithLogger(b.logger.Named("portfolio")),
		portfolio.WithClock(func() time.Time { return bootstrap }),
	)
	executor := broker.NewOrderExecutor(broker.ExecutionConfig{
		CommissionRate: b.config.Commission,
		SlippageRate:   b.config.Slippage,
	}, b.logger.Named("executor"))

	var nonHold, refused int
	for _, s := range signals {
		if s != core.SignalHold {
			nonHold++
		}
	}

	step := max(n/10, 1)
	// bar 0 is warm-up and only valued by the bootstrap snapshot
	for i := 1; i < n; i++ {
		ts := table.Index[i]
		price := closes[i]

		signal := core.SignalHold
		if i < len(signals) {
			signal = signals[i]
		}

		if side, ok := broker.SideFromSignal(signal); ok {
			b.recorder.RecordSignal(name, signal.String())

			decision := b.sizer.Size(side, ledger, symbol, price)
			if !decision.Allowed {
				refused++
				b.recorder.RecordOrder(string(side), OrderSkipped)
				log.Debug("order skipped",
					zap.Time("timestamp", ts),
					zap.String("side", string(side)),
					zap.String("reason", decision.Reason),
				)
			} else {
				filled, err := executor.ExecuteSignal(ledger, symbol, signal, price, ts, decision.Quantity, name)
				if err != nil {
					return nil, err
				}
				if filled {
					b.recorder.RecordOrder(string(side), OrderFilled)
				} else {
					refused++
					b.recorder.RecordOrder(string(side), OrderRefused)
				}
			}
		}

		ledger.UpdatePortfolioValue(map[string]float64{symbol: price}, ts)

		if i%step == 0 {
			log.Debug("backtest progress",
				zap.Int("bar", i),
				zap.Int("bars", n),
				zap.Int("percent", i*100/n),
			)
		}
	}

	curves := ledger.EquityCurve(table.Index)
	trades := performance.RealizePnL(ledger.TradeHistory())
	metrics := performance.CalculateAll(curves.Total, trades, performance.Options{
		PeriodsPerYear: b.config.PeriodsPerYear,
		RiskFreeRate:   b.config.RiskFreeRate,
	})

	final, ok := curves.Total.Last()
	if !ok {
		final = b.config.InitialCapital
	}

	return &Result{
		RunID:               uuid.NewString(),
		Strategy:            name,
		Symbol:              symbol,
		InitialCapital:      b.config.InitialCapital,
		FinalPortfolioValue: final,
		TotalTrades:         len(trades),
		Signals:             nonHold,
		Refused:             refused,
		Period:              performance.PeriodOf(table.Index),
		Metrics:             metrics,
		EquityCurve:         curves.Total,
		EquityCurves:        curves,
		Trades:              trades,
		PortfolioHistory:    ledger.PortfolioHistory(),
	}, nil
}

func earliest(index []time.Time) time.Time {
	first := index[0]
	for _, ts := range index[1:] {
		if ts.Before(first) {
			first = ts
		}
	}
	return first
}
