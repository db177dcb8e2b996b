package performance

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/newthinker/tradesim/internal/core"
)

// Options tunes the annualization and risk-free rate of CalculateAll
type Options struct {
	PeriodsPerYear int
	RiskFreeRate   float64
}

// DefaultOptions returns daily bars with a zero risk-free rate
func DefaultOptions() Options {
	return Options{PeriodsPerYear: TradingDaysPerYear}
}

// Metrics is the full performance record of one run.
// Returns, volatility and drawdown are fractions except MaxDrawdown, which is a percentage.
type Metrics struct {
	TotalReturn      float64
	AnnualizedReturn float64
	Volatility       float64
	SharpeRatio      float64
	MaxDrawdown      float64
	CalmarRatio      float64
	WinningTrades    int
	LosingTrades     int
	WinRate          float64
	ProfitFactor     float64
	TotalTrades      int
}

// CalculateAll computes every metric from the equity curve and trade log.
// Fewer than 2 equity points yields a zero record that still counts the trades.
func CalculateAll(equity core.Series, trades []core.TradeRecord, opts Options) Metrics {
	if opts.PeriodsPerYear <= 0 {
		opts.PeriodsPerYear = TradingDaysPerYear
	}
	if equity.Len() < 2 {
		return Metrics{TotalTrades: len(trades)}
	}

	values := equity.Values
	returns := PctChange(values)
	wl := WinRate(trades)

	return Metrics{
		TotalReturn:      TotalReturn(values),
		AnnualizedReturn: AnnualizedReturn(values, opts.PeriodsPerYear),
		Volatility:       Volatility(returns, true),
		SharpeRatio:      SharpeRatio(returns, opts.RiskFreeRate, true),
		MaxDrawdown:      MaxDrawdown(values),
		CalmarRatio:      CalmarRatio(values, opts.PeriodsPerYear),
		WinningTrades:    wl.Winning,
		LosingTrades:     wl.Losing,
		WinRate:          wl.Rate,
		ProfitFactor:     ProfitFactor(trades),
		TotalTrades:      len(trades),
	}
}

// ratio is a float that survives JSON when it is infinite or NaN
type ratio float64

func (r ratio) MarshalJSON() ([]byte, error) {
	f := float64(r)
	switch {
	case math.IsInf(f, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Inf"`), nil
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	}
	return json.Marshal(f)
}

func (r *ratio) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*r = ratio(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*r = ratio(f)
	return nil
}

type metricsJSON struct {
	TotalReturn      ratio `json:"total_return"`
	AnnualizedReturn ratio `json:"annualized_return"`
	Volatility       ratio `json:"volatility"`
	SharpeRatio      ratio `json:"sharpe_ratio"`
	MaxDrawdown      ratio `json:"max_drawdown"`
	CalmarRatio      ratio `json:"calmar_ratio"`
	WinningTrades    int   `json:"winning_trades"`
	LosingTrades     int   `json:"losing_trades"`
	WinRate          ratio `json:"win_rate"`
	ProfitFactor     ratio `json:"profit_factor"`
	TotalTrades      int   `json:"total_trades"`
}

func (m Metrics) MarshalJSON() ([]byte, error) {
	return json.Marshal(metricsJSON{
		TotalReturn:      ratio(m.TotalReturn),
		AnnualizedReturn: ratio(m.AnnualizedReturn),
		Volatility:       ratio(m.Volatility),
		SharpeRatio:      ratio(m.SharpeRatio),
		MaxDrawdown:      ratio(m.MaxDrawdown),
		CalmarRatio:      ratio(m.CalmarRatio),
		WinningTrades:    m.WinningTrades,
		LosingTrades:     m.LosingTrades,
		WinRate:          ratio(m.WinRate),
		ProfitFactor:     ratio(m.ProfitFactor),
		TotalTrades:      m.TotalTrades,
	})
}

func (m *Metrics) UnmarshalJSON(data []byte) error {
	var j metricsJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*m = Metrics{
		TotalReturn:      float64(j.TotalReturn),
		AnnualizedReturn: float64(j.AnnualizedReturn),
		Volatility:       float64(j.Volatility),
		SharpeRatio:      float64(j.SharpeRatio),
		MaxDrawdown:      float64(j.MaxDrawdown),
		CalmarRatio:      float64(j.CalmarRatio),
		WinningTrades:    j.WinningTrades,
		LosingTrades:     j.LosingTrades,
		WinRate:          float64(j.WinRate),
		ProfitFactor:     float64(j.ProfitFactor),
		TotalTrades:      j.TotalTrades,
	}
	return nil
}

// Values flattens the record into a map keyed by the JSON field names.
func (m Metrics) Values() map[string]float64 {
	return map[string]float64{
		"total_return":      m.TotalReturn,
		"annualized_return": m.AnnualizedReturn,
		"volatility":        m.Volatility,
		"sharpe_ratio":      m.SharpeRatio,
		"max_drawdown":      m.MaxDrawdown,
		"calmar_ratio":      m.CalmarRatio,
		"winning_trades":    float64(m.WinningTrades),
		"losing_trades":     float64(m.LosingTrades),
		"win_rate":          m.WinRate,
		"profit_factor":     m.ProfitFactor,
		"total_trades":      float64(m.TotalTrades),
	}
}
