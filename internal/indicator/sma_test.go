package indicator

import (
	"math"
	"testing"
)

func assertSeries(t *testing.T, name string, got, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: expected %d values, got %d", name, len(want), len(got))
	}
	for i := range want {
		if math.IsNaN(want[i]) {
			if !math.IsNaN(got[i]) {
				t.Errorf("%s[%d] = %f, want NaN", name, i, got[i])
			}
			continue
		}
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("%s[%d] = %f, want %f", name, i, got[i], want[i])
		}
	}
}

func TestSMA_Calculate(t *testing.T) {
	prices := []float64{10, 11, 12, 13, 14, 15}

	sma := SMA(prices, 3)

	// SMA(3) for [10,11,12,13,14,15]:
	// [2] = (10+11+12)/3 = 11
	// [3] = (11+12+13)/3 = 12
	// [4] = (12+13+14)/3 = 13
	// [5] = (13+14+15)/3 = 14
	nan := math.NaN()
	assertSeries(t, "sma", sma, []float64{nan, nan, 11, 12, 13, 14})
}

func TestSMA_NotEnoughData(t *testing.T) {
	prices := []float64{10, 11}
	sma := SMA(prices, 5)

	if len(sma) != 2 {
		t.Fatalf("expected 2 values, got %d", len(sma))
	}
	for i, v := range sma {
		if !math.IsNaN(v) {
			t.Errorf("sma[%d] = %f, want NaN", i, v)
		}
	}
}

func TestSMA_InvalidPeriod(t *testing.T) {
	for _, period := range []int{0, -3} {
		for i, v := range SMA([]float64{1, 2, 3}, period) {
			if !math.IsNaN(v) {
				t.Errorf("SMA(period=%d)[%d] = %f, want NaN", period, i, v)
			}
		}
	}
}

func TestEMA_Calculate(t *testing.T) {
	prices := []float64{10, 11, 12}
	ema := EMA(prices, 3)

	// alpha = 0.5, seeded with the first price
	assertSeries(t, "ema", ema, []float64{10, 10.5, 11.25})
}

func TestEMA_Increasing(t *testing.T) {
	prices := []float64{10, 11, 12, 13, 14, 15}
	ema := EMA(prices, 3)

	if len(ema) != len(prices) {
		t.Fatalf("expected %d values, got %d", len(prices), len(ema))
	}
	for i := 1; i < len(ema); i++ {
		if ema[i] <= ema[i-1] {
			t.Errorf("EMA should be increasing, ema[%d]=%f <= ema[%d]=%f", i, ema[i], i-1, ema[i-1])
		}
	}
}

func TestEMA_Constant(t *testing.T) {
	prices := []float64{7, 7, 7, 7}
	assertSeries(t, "ema", EMA(prices, 10), prices)
}

func TestEMA_LeadingNaN(t *testing.T) {
	nan := math.NaN()
	ema := EMA([]float64{nan, 4, 8}, 3)
	assertSeries(t, "ema", ema, []float64{nan, 4, 6})
}
