package backtest

import (
	"github.com/newthinker/tradesim/internal/core"
	"github.com/newthinker/tradesim/internal/performance"
	"github.com/newthinker/tradesim/internal/portfolio"
)

// Config holds the capital, cost model and metric settings of a run
type Config struct {
	InitialCapital float64
	Commission     float64 // fraction of notional
	Slippage       float64 // fraction of price
	PeriodsPerYear int
	RiskFreeRate   float64
}

// DefaultConfig returns 10,000 capital with 0.1% commission and slippage on daily bars
func DefaultConfig() Config {
	return Config{
		InitialCapital: 10000,
		Commission:     0.001,
		Slippage:       0.001,
		PeriodsPerYear: performance.TradingDaysPerYear,
		RiskFreeRate:   0,
	}
}

// Period is the calendar span of a run
type Period = performance.Period

// Result holds the complete backtest output
type Result struct {
	RunID               string                 `json:"run_id"`
	Strategy            string                 `json:"strategy"`
	Symbol              string                 `json:"symbol"`
	InitialCapital      float64                `json:"initial_capital"`
	FinalPortfolioValue float64                `json:"final_portfolio_value"`
	TotalTrades         int                    `json:"total_trades"`
	Signals             int                    `json:"signals"` // non-hold signals
	Refused             int                    `json:"refused"` // orders skipped or refused
	Period              Period                 `json:"backtest_period"`
	Metrics             performance.Metrics    `json:"metrics"`
	EquityCurve         core.Series            `json:"equity_curve"`
	EquityCurves        portfolio.EquityCurves `json:"equity_curves"`
	Trades              []core.TradeRecord     `json:"trades"`
	PortfolioHistory    []core.Snapshot        `json:"portfolio_history"`
}

// Recorder receives run and order counters
type Recorder interface {
	RecordBacktest(strategy, status string, duration float64)
	RecordSignal(strategy, action string)
	RecordOrder(side, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordBacktest(string, string, float64) {}
func (nopRecorder) RecordSignal(string, string)            {}
func (nopRecorder) RecordOrder(string, string)             {}

// Order outcomes reported to the Recorder
const (
	OrderFilled  = "filled"
	OrderRefused = "refused"
	OrderSkipped = "skipped"
)
