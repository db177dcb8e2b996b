// Package metrics exposes backtest run and order counters through a Prometheus registry.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	backtestsTotal   *prometheus.CounterVec
	backtestDuration *prometheus.HistogramVec
	signalsGenerated *prometheus.CounterVec
	ordersTotal      *prometheus.CounterVec
	batchJobs        *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		backtestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradesim_backtests_total",
				Help: "Total number of backtest runs",
			},
			[]string{"strategy", "status"},
		),
		backtestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tradesim_backtest_duration_seconds",
				Help:    "Backtest run duration in seconds",
				Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			},
			[]string{"strategy"},
		),
		signalsGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradesim_signals_total",
				Help: "Total number of non-hold signals acted on",
			},
			[]string{"strategy", "action"},
		),
		ordersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradesim_orders_total",
				Help: "Total number of orders by side and outcome",
			},
			[]string{"side", "outcome"},
		),
		batchJobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradesim_batch_jobs_total",
				Help: "Total number of batch jobs by outcome",
			},
			[]string{"outcome"},
		),
	}

	reg.MustRegister(r.backtestsTotal)
	reg.MustRegister(r.backtestDuration)
	reg.MustRegister(r.signalsGenerated)
	reg.MustRegister(r.ordersTotal)
	reg.MustRegister(r.batchJobs)

	return r
}

// RecordBacktest records a backtest completion.
func (r *Registry) RecordBacktest(strategy, status string, duration float64) {
	r.backtestsTotal.WithLabelValues(strategy, status).Inc()
	r.backtestDuration.WithLabelValues(strategy).Observe(duration)
}

// RecordSignal records a signal the backtester acted on.
func (r *Registry) RecordSignal(strategy, action string) {
	r.signalsGenerated.WithLabelValues(strategy, action).Inc()
}

// RecordOrder records an order outcome (filled, refused or skipped).
func (r *Registry) RecordOrder(side, outcome string) {
	r.ordersTotal.WithLabelValues(side, outcome).Inc()
}

// RecordBatchJob records a finished batch job.
func (r *Registry) RecordBatchJob(err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	r.batchJobs.WithLabelValues(outcome).Inc()
}

// WriteTextfile writes the registry in the text exposition format for the
// node_exporter textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.Registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
