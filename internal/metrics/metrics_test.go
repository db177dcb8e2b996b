package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/newthinker/tradesim/internal/backtest"
)

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()
	if reg == nil {
		t.Fatal("expected non-nil registry")
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	// Should have go runtime metrics at minimum
	if len(mfs) == 0 {
		t.Error("expected some metrics to be registered")
	}
}

func TestRegistry_ImplementsRecorder(t *testing.T) {
	var _ backtest.Recorder = NewRegistry()
}

func TestRegistry_RecordBacktest(t *testing.T) {
	reg := NewRegistry()

	reg.RecordBacktest("sma_crossover", "success", 0.02)
	reg.RecordBacktest("sma_crossover", "success", 0.03)
	reg.RecordBacktest("rsi", "error", 0.001)

	if got := testutil.ToFloat64(reg.backtestsTotal.WithLabelValues("sma_crossover", "success")); got != 2 {
		t.Errorf("expected 2 successful runs, got %v", got)
	}
	if got := testutil.ToFloat64(reg.backtestsTotal.WithLabelValues("rsi", "error")); got != 1 {
		t.Errorf("expected 1 failed run, got %v", got)
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	found := false
	for _, mf := range mfs {
		if mf.GetName() != "tradesim_backtest_duration_seconds" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "strategy" && label.GetValue() == "sma_crossover" {
					found = true
					hist := m.GetHistogram()
					if hist.GetSampleCount() != 2 {
						t.Errorf("expected sample count 2, got %d", hist.GetSampleCount())
					}
					if hist.GetSampleSum() < 0.049 || hist.GetSampleSum() > 0.051 {
						t.Errorf("expected sample sum ~0.05, got %v", hist.GetSampleSum())
					}
				}
			}
		}
	}
	if !found {
		t.Error("expected tradesim_backtest_duration_seconds for sma_crossover")
	}
}

func TestRegistry_SignalsAndOrders(t *testing.T) {
	reg := NewRegistry()

	reg.RecordSignal("rsi", "buy")
	reg.RecordSignal("rsi", "sell")
	reg.RecordOrder("BUY", backtest.OrderFilled)
	reg.RecordOrder("SELL", backtest.OrderRefused)
	reg.RecordOrder("SELL", backtest.OrderRefused)

	tests := []struct {
		collector prometheus.Collector
		want      float64
	}{
		{reg.signalsGenerated.WithLabelValues("rsi", "buy"), 1},
		{reg.ordersTotal.WithLabelValues("BUY", "filled"), 1},
		{reg.ordersTotal.WithLabelValues("SELL", "refused"), 2},
		{reg.ordersTotal.WithLabelValues("SELL", "skipped"), 0},
	}
	for i, tt := range tests {
		if got := testutil.ToFloat64(tt.collector); got != tt.want {
			t.Errorf("case %d: got %v, want %v", i, got, tt.want)
		}
	}

	if n := testutil.CollectAndCount(reg.ordersTotal); n != 3 {
		t.Errorf("expected 3 order series, got %d", n)
	}
}

func TestRegistry_RecordBatchJob(t *testing.T) {
	reg := NewRegistry()
	reg.RecordBatchJob(nil)
	reg.RecordBatchJob(errors.New("boom"))
	reg.RecordBatchJob(nil)

	if got := testutil.ToFloat64(reg.batchJobs.WithLabelValues("success")); got != 2 {
		t.Errorf("expected 2 successes, got %v", got)
	}
	if got := testutil.ToFloat64(reg.batchJobs.WithLabelValues("error")); got != 1 {
		t.Errorf("expected 1 error, got %v", got)
	}
}

func TestRegistry_WriteTextfile(t *testing.T) {
	reg := NewRegistry()
	reg.RecordBacktest("macd", "success", 0.1)

	path := filepath.Join(t.TempDir(), "tradesim.prom")
	if err := reg.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `tradesim_backtests_total{status="success",strategy="macd"} 1`) {
		t.Errorf("textfile missing backtest counter:\n%s", data)
	}

	if err := reg.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom")); err == nil {
		t.Error("expected error for missing directory")
	}
}

// Ensure the registry implements prometheus.Gatherer interface
func TestRegistry_ImplementsGatherer(t *testing.T) {
	reg := NewRegistry()
	var _ prometheus.Gatherer = reg
}
