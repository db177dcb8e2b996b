// Package performance reduces an equity curve and a trade log to performance ratios.
// Every function is total: degenerate input yields a documented fallback, never a panic.
package performance

import (
	"math"
	"time"

	"github.com/newthinker/tradesim/internal/core"
)

// TradingDaysPerYear scales daily volatility and Sharpe ratio to a year
const TradingDaysPerYear = 252

// TotalReturn returns last/first - 1, or 0 with fewer than 2 points or a zero start
func TotalReturn(equity []float64) float64 {
	if len(equity) < 2 || equity[0] == 0 {
		return 0
	}
	return equity[len(equity)-1]/equity[0] - 1
}

// AnnualizedReturn compounds the total return over (n-1) periods to periodsPerYear
func AnnualizedReturn(equity []float64, periodsPerYear int) float64 {
	n := len(equity)
	if n < 2 || periodsPerYear <= 0 {
		return 0
	}
	total := TotalReturn(equity)
	return math.Pow(1+total, float64(periodsPerYear)/float64(n-1)) - 1
}

// Volatility returns the sample standard deviation of returns, annualized on request
func Volatility(returns []float64, annualize bool) float64 {
	if len(returns) < 2 {
		return 0
	}
	vol := sampleStd(returns)
	if annualize {
		vol *= math.Sqrt(TradingDaysPerYear)
	}
	return vol
}

// SharpeRatio returns mean/std of returns in excess of the per-period risk-free rate.
// It is 0 with fewer than 2 points or when the excess returns have no variance.
func SharpeRatio(returns []float64, riskFreeRate float64, annualize bool) float64 {
	if len(returns) < 2 {
		return 0
	}

	perPeriod := riskFreeRate / TradingDaysPerYear
	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - perPeriod
	}

	std := sampleStd(excess)
	if std == 0 {
		return 0
	}

	sharpe := mean(excess) / std
	if annualize {
		sharpe *= math.Sqrt(TradingDaysPerYear)
	}
	return sharpe
}

// MaxDrawdown returns the deepest peak-to-trough decline as a positive percentage
func MaxDrawdown(equity []float64) float64 {
	if len(equity) == 0 {
		return 0
	}

	worst := 0.0
	peak := math.Inf(-1)
	for _, v := range equity {
		if v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		dd := (v - peak) / peak * 100
		if dd < worst {
			worst = dd
		}
	}
	return math.Abs(worst)
}

// CalmarRatio returns annualized return over max drawdown, 0 without drawdown
func CalmarRatio(equity []float64, periodsPerYear int) float64 {
	mdd := MaxDrawdown(equity)
	if mdd == 0 {
		return 0
	}
	return AnnualizedReturn(equity, periodsPerYear) / math.Abs(mdd/100)
}

// PctChange returns bar-to-bar fractional changes. The first point has no
// predecessor and a change from 0 is undefined, so both are dropped.
func PctChange(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if prev == 0 {
			continue
		}
		out = append(out, values[i]/prev-1)
	}
	return out
}

// BetaAlpha holds the regression of portfolio returns on benchmark returns
type BetaAlpha struct {
	Beta  float64 `json:"beta"`
	Alpha float64 `json:"alpha"`
}

// CalculateBetaAlpha aligns both return series on shared timestamps and regresses
// portfolio on benchmark. It returns zeros with fewer than 2 aligned points.
func CalculateBetaAlpha(portfolio, benchmark core.Series) BetaAlpha {
	byTime := make(map[int64]float64, benchmark.Len())
	for i, ts := range benchmark.Index {
		byTime[ts.UnixNano()] = benchmark.Values[i]
	}

	var p, b []float64
	for i, ts := range portfolio.Index {
		bv, ok := byTime[ts.UnixNano()]
		if !ok {
			continue
		}
		p = append(p, portfolio.Values[i])
		b = append(b, bv)
	}

	if len(p) < 2 {
		return BetaAlpha{}
	}

	var beta float64
	if v := sampleVariance(b); v != 0 {
		beta = sampleCovariance(p, b) / v
	}
	return BetaAlpha{
		Beta:  beta,
		Alpha: mean(p) - beta*mean(b),
	}
}

// Period reports the calendar span of an index
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Days  int       `json:"days"`
}

// PeriodOf returns the first and last timestamps and the whole days between them
func PeriodOf(index []time.Time) Period {
	if len(index) == 0 {
		return Period{}
	}
	start, end := index[0], index[len(index)-1]
	return Period{
		Start: start,
		End:   end,
		Days:  int(end.Sub(start).Hours() / 24),
	}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func allEqual(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}

func sampleVariance(xs []float64) float64 {
	if len(xs) < 2 || allEqual(xs) {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		ss += (x - m) * (x - m)
	}
	return ss / float64(len(xs)-1)
}

func sampleStd(xs []float64) float64 {
	return math.Sqrt(sampleVariance(xs))
}

func sampleCovariance(xs, ys []float64) float64 {
	mx, my := mean(xs), mean(ys)
	var s float64
	for i := range xs {
		s += (xs[i] - mx) * (ys[i] - my)
	}
	return s / float64(len(xs)-1)
}
