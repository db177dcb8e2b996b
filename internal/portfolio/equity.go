package portfolio

import (
	"math"
	"time"

	"github.com/newthinker/tradesim/internal/core"
)

// EquityCurves holds the per-bar total, cash and stocks value series
type EquityCurves struct {
	Total  core.Series `json:"total"`
	Cash   core.Series `json:"cash"`
	Stocks core.Series `json:"stocks"`
}

// EquityCurve reconstructs continuous value series over index from the sparse
// snapshot log. Snapshots land on bars with an equal timestamp (the last one
// wins), gaps are filled forward then backward, and any bar still unknown gets
// the initial cash for total and cash or 0 for stocks.
func (p *Portfolio) EquityCurve(index []time.Time) EquityCurves {
	initial := p.InitialCash()
	if len(p.history) == 0 {
		return EquityCurves{
			Total:  core.NewSeries(index, initial),
			Cash:   core.NewSeries(index, initial),
			Stocks: core.NewSeries(index, 0),
		}
	}

	positions := make(map[int64][]int, len(index))
	for i, ts := range index {
		key := ts.UnixNano()
		positions[key] = append(positions[key], i)
	}

	total := nanSlice(len(index))
	cash := nanSlice(len(index))
	stocks := nanSlice(len(index))
	for _, snap := range p.history {
		for _, i := range positions[snap.Timestamp.UnixNano()] {
			total[i] = snap.TotalValue
			cash[i] = snap.Cash
			stocks[i] = snap.StocksValue
		}
	}

	return EquityCurves{
		Total:  filledSeries(index, total, initial),
		Cash:   filledSeries(index, cash, initial),
		Stocks: filledSeries(index, stocks, 0),
	}
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func filledSeries(index []time.Time, values []float64, fallback float64) core.Series {
	last := math.NaN()
	for i, v := range values {
		if math.IsNaN(v) {
			values[i] = last
		} else {
			last = v
		}
	}

	next := math.NaN()
	for i := len(values) - 1; i >= 0; i-- {
		if math.IsNaN(values[i]) {
			values[i] = next
		} else {
			next = values[i]
		}
	}

	for i, v := range values {
		if math.IsNaN(v) {
			values[i] = fallback
		}
	}

	return core.Series{
		Index:  append([]time.Time(nil), index...),
		Values: values,
	}
}
