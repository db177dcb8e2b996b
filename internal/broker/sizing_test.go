package broker

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultRiskConfig(t *testing.T) {
	cfg := DefaultRiskConfig()

	assert.Equal(t, 0.02, cfg.RiskPerTrade, "RiskPerTrade should be 0.02")
	assert.Equal(t, 5.0, cfg.RiskMultiplier, "RiskMultiplier should be 5")
	assert.Equal(t, 0.95, cfg.MaxCashFraction, "MaxCashFraction should be 0.95")
}

func TestFixedSizer(t *testing.T) {
	assert.Equal(t, DefaultFixedQuantity, NewFixedSizer(0).Quantity)

	s := NewFixedSizer(25)
	ledger := &recordingLedger{}
	for _, side := range []OrderSide{OrderSideBuy, OrderSideSell} {
		d := s.Size(side, ledger, "AAPL", 100)
		assert.True(t, d.Allowed)
		assert.Equal(t, int64(25), d.Quantity)
	}

	assert.False(t, FixedSizer{}.Size(OrderSideBuy, ledger, "AAPL", 100).Allowed)
}

func TestRiskSizer_Buy(t *testing.T) {
	s := NewRiskSizer(DefaultRiskConfig())

	tests := []struct {
		name    string
		cash    float64
		price   float64
		allowed bool
		want    int64
	}{
		// 10000 * 0.02 * 5 = 1000 budget
		{"budget bound", 10000, 100, true, 10},
		{"fractional units floored", 10000, 300, true, 3},
		{"budget below one unit", 10000, 1500, false, 0},
		{"no cash", 0, 100, false, 0},
		{"negative cash", -5, 100, false, 0},
		{"zero price", 10000, 0, false, 0},
		{"NaN price", 10000, math.NaN(), false, 0},
		{"infinite price", 10000, math.Inf(1), false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := s.Size(OrderSideBuy, &recordingLedger{cash: tt.cash}, "AAPL", tt.price)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.want, d.Quantity)
			if !tt.allowed {
				assert.NotEmpty(t, d.Reason)
			}
		})
	}
}

func TestRiskSizer_BuyCappedByCashFraction(t *testing.T) {
	// risk budget 0.5 * 10 * 1000 = 5000 exceeds the 0.9 cash cap of 900
	s := NewRiskSizer(RiskConfig{RiskPerTrade: 0.5, RiskMultiplier: 10, MaxCashFraction: 0.9})

	d := s.Size(OrderSideBuy, &recordingLedger{cash: 1000}, "AAPL", 100)
	assert.True(t, d.Allowed)
	assert.Equal(t, int64(9), d.Quantity)
}

func TestRiskSizer_BuyNeverExceedsCash(t *testing.T) {
	// cash fraction 1.5 allows a 1500 budget against 1000 of cash
	s := NewRiskSizer(RiskConfig{RiskPerTrade: 1, RiskMultiplier: 5, MaxCashFraction: 1.5})

	tests := []struct {
		name    string
		cash    float64
		price   float64
		allowed bool
		want    int64
	}{
		{"capped at cash", 1000, 10, true, 100},
		{"floored at cash", 1000, 30, true, 33},
		{"one unit fits budget not cash", 1000, 1200, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := s.Size(OrderSideBuy, &recordingLedger{cash: tt.cash}, "AAPL", tt.price)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.want, d.Quantity)
			assert.LessOrEqual(t, float64(d.Quantity)*tt.price, tt.cash)
		})
	}
}

func TestRiskSizer_Sell(t *testing.T) {
	s := NewRiskSizer(DefaultRiskConfig())

	d := s.Size(OrderSideSell, &recordingLedger{position: 42}, "AAPL", 100)
	assert.True(t, d.Allowed)
	assert.Equal(t, int64(42), d.Quantity)

	d = s.Size(OrderSideSell, &recordingLedger{}, "AAPL", 100)
	assert.False(t, d.Allowed)
	assert.Contains(t, d.Reason, "AAPL")
}

func TestSideFromSignal(t *testing.T) {
	side, ok := SideFromSignal(1)
	assert.True(t, ok)
	assert.Equal(t, OrderSideBuy, side)

	side, ok = SideFromSignal(-1)
	assert.True(t, ok)
	assert.Equal(t, OrderSideSell, side)

	_, ok = SideFromSignal(0)
	assert.False(t, ok)
}
