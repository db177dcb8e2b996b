package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEquityCurve_EmptyHistoryIsConstant(t *testing.T) {
	p := New(5000)
	p.history = nil

	curves := p.EquityCurve(days(3))
	assert.Equal(t, []float64{5000, 5000, 5000}, curves.Total.Values)
	assert.Equal(t, []float64{5000, 5000, 5000}, curves.Cash.Values)
	assert.Equal(t, []float64{0, 0, 0}, curves.Stocks.Values)
}

func TestEquityCurve_ForwardAndBackwardFill(t *testing.T) {
	idx := days(5)
	p := New(10000, WithClock(fixedClock))

	// bootstrap lands on idx[0]; buy on idx[2]; nothing on the rest
	require.True(t, p.Buy("AAPL", 10, 100, idx[2], 0, ""))
	p.UpdatePortfolioValue(map[string]float64{"AAPL": 110}, idx[3])

	curves := p.EquityCurve(idx)
	assert.Equal(t, []float64{10000, 10000, 10000, 10100, 10100}, curves.Total.Values)
	assert.Equal(t, []float64{10000, 10000, 9000, 9000, 9000}, curves.Cash.Values)
	assert.Equal(t, []float64{0, 0, 1000, 1100, 1100}, curves.Stocks.Values)
	require.Len(t, curves.Total.Index, 5)
	assert.True(t, curves.Total.Index[4].Equal(idx[4]))
}

func TestEquityCurve_BackwardFillBeforeFirstSnapshot(t *testing.T) {
	idx := days(4)
	// bootstrap timestamp outside the index
	p := New(10000, WithClock(func() time.Time { return idx[0].AddDate(-1, 0, 0) }))
	require.True(t, p.Buy("AAPL", 10, 100, idx[2], 0, ""))

	curves := p.EquityCurve(idx)
	assert.Equal(t, []float64{10000, 10000, 10000, 10000}, curves.Total.Values)
	assert.Equal(t, []float64{9000, 9000, 9000, 9000}, curves.Cash.Values)
}

func TestEquityCurve_LastSnapshotWinsOnSameBar(t *testing.T) {
	idx := days(2)
	p := New(10000, WithClock(fixedClock))
	require.True(t, p.Buy("AAPL", 10, 100, idx[1], 0, ""))
	p.UpdatePortfolioValue(map[string]float64{"AAPL": 90}, idx[1])

	curves := p.EquityCurve(idx)
	assert.Equal(t, []float64{10000, 9900}, curves.Total.Values)
}

// Periodic valuation after every bar reproduces the portfolio value on each bar.
func TestEquityCurve_RoundTrip(t *testing.T) {
	idx := days(6)
	closes := []float64{100, 102, 98, 105, 110, 107}
	p := New(10000, WithClock(fixedClock))

	want := make([]float64, len(idx))
	want[0] = 10000
	for i := 1; i < len(idx); i++ {
		if i == 2 {
			require.True(t, p.Buy("AAPL", 20, closes[i], idx[i], 0, ""))
		}
		if i == 4 {
			require.True(t, p.Sell("AAPL", 5, closes[i], idx[i], 0, ""))
		}
		prices := map[string]float64{"AAPL": closes[i]}
		want[i] = p.UpdatePortfolioValue(prices, idx[i])
	}

	curves := p.EquityCurve(idx)
	assert.Equal(t, want, curves.Total.Values)
	for i := range idx {
		assert.InDelta(t, curves.Cash.Values[i]+curves.Stocks.Values[i], curves.Total.Values[i], 1e-9)
	}
}
