package oscillator

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newthinker/tradesim/internal/core"
	"github.com/newthinker/tradesim/internal/strategy"
)

func tableOf(prices []float64) *core.Table {
	bars := make([]core.OHLCV, len(prices))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range prices {
		bars[i] = core.OHLCV{Symbol: "TEST", Open: p, High: p, Low: p, Close: p, Time: base.AddDate(0, 0, i)}
	}
	return core.NewTableFromBars(bars)
}

// vShape falls for down bars then rises for up bars
func vShape(down, up int) []float64 {
	prices := make([]float64, 0, down+up)
	p := 100.0
	for i := 0; i < down; i++ {
		prices = append(prices, p)
		p--
	}
	for i := 0; i < up; i++ {
		prices = append(prices, p)
		p++
	}
	return prices
}

func indexOf(signals []core.Signal, want core.Signal, from int) int {
	for i := from; i < len(signals); i++ {
		if signals[i] == want {
			return i
		}
	}
	return -1
}

func TestStrategies_ImplementInterface(t *testing.T) {
	var _ strategy.Strategy = (*RSI)(nil)
	var _ strategy.Strategy = (*RSITrend)(nil)
	var _ strategy.Strategy = (*MACD)(nil)
	var _ strategy.Strategy = (*MACDZeroCross)(nil)
	var _ strategy.Strategy = (*RSIMACD)(nil)
}

func TestRSI_ZoneExits(t *testing.T) {
	s := NewRSI()
	require.NoError(t, s.Init(strategy.Config{Params: map[string]any{"rsi_window": 2}}))

	// RSI(2): [NaN NaN 0 50 100 50]
	signals, err := s.GenerateSignals(tableOf([]float64{10, 9, 8, 9, 10, 9}))
	require.NoError(t, err)
	assert.Equal(t, []core.Signal{0, 0, 0, 1, 0, -1}, signals)
}

func TestRSITrend_OversoldAndRising(t *testing.T) {
	s := NewRSITrend()
	require.NoError(t, s.Init(strategy.Config{Params: map[string]any{"rsi_window": 2}}))

	// RSI(2): [NaN NaN 0 0 16.7]
	signals, err := s.GenerateSignals(tableOf([]float64{10, 8, 6, 5.5, 5.6}))
	require.NoError(t, err)
	assert.Equal(t, []core.Signal{0, 0, 0, 0, 1}, signals)
}

func TestRSI_InvalidLevels(t *testing.T) {
	tests := []map[string]any{
		{"overbought": 30, "oversold": 70},
		{"oversold": 0},
		{"overbought": 100},
		{"rsi_window": 0},
		{"overbought": "high"},
	}
	for _, params := range tests {
		err := NewRSI().Init(strategy.Config{Params: params})
		assert.True(t, errors.Is(err, core.ErrInvalidParam), "params %v: %v", params, err)
	}
}

func TestMACD_Crosses(t *testing.T) {
	s := NewMACD()
	signals, err := s.GenerateSignals(tableOf(vShape(20, 30)))
	require.NoError(t, err)
	require.Len(t, signals, 50)

	// the decline starts the line below its signal straight away
	assert.Equal(t, core.SignalSell, signals[1])
	assert.Greater(t, indexOf(signals, core.SignalBuy, 0), 20, "first buy must follow the turn")
	assert.Equal(t, -1, indexOf(signals, core.SignalSell, 2), "no further sells in a clean V")
}

func TestMACDZeroCross(t *testing.T) {
	s := NewMACDZeroCross()
	signals, err := s.GenerateSignals(tableOf(vShape(20, 30)))
	require.NoError(t, err)

	assert.Equal(t, core.SignalSell, signals[1])
	assert.Greater(t, indexOf(signals, core.SignalBuy, 0), 20)
	assert.Equal(t, -1, indexOf(signals, core.SignalSell, 2))
}

func TestMACD_InitParams(t *testing.T) {
	s := NewMACD()
	require.NoError(t, s.Init(strategy.Config{Params: map[string]any{"fast_window": 5, "slow_window": "10", "signal_window": 3.0}}))
	assert.Equal(t, macdParams{fast: 5, slow: 10, signal: 3}, s.params)

	err := NewMACDZeroCross().Init(strategy.Config{Params: map[string]any{"signal_window": -1}})
	assert.True(t, errors.Is(err, core.ErrInvalidParam))
}

func TestRSIMACD(t *testing.T) {
	s := NewRSIMACD()
	require.NoError(t, s.Init(strategy.Config{Params: map[string]any{"macd_fast": 3, "macd_slow": 6, "macd_signal": 2, "rsi_window": 3}}))
	assert.Equal(t, "rsi_macd", s.Name())

	signals, err := s.GenerateSignals(tableOf(vShape(15, 15)))
	require.NoError(t, err)
	assert.Len(t, signals, 30)
	for i, sig := range signals {
		assert.Contains(t, []core.Signal{-1, 0, 1}, sig, "signal %d", i)
	}
}

func TestRegister(t *testing.T) {
	r := strategy.NewRegistry()
	Register(r)
	assert.Equal(t, []string{"macd", "macd_zero_cross", "rsi", "rsi_macd", "rsi_trend"}, r.Names())
}
