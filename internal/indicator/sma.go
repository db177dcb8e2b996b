// Package indicator computes technical indicators over price series.
// Every indicator returns a slice as long as its input; bars inside the
// warm-up window hold NaN.
package indicator

import "math"

func nans(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// SMA calculates Simple Moving Average
// result[i] is the mean of prices[i-period+1..i]; the first period-1 values are NaN
func SMA(prices []float64, period int) []float64 {
	result := nans(len(prices))
	if period <= 0 || len(prices) < period {
		return result
	}

	// Calculate first SMA
	var sum float64
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	result[period-1] = sum / float64(period)

	// Rolling calculation
	for i := period; i < len(prices); i++ {
		sum = sum - prices[i-period] + prices[i]
		result[i] = sum / float64(period)
	}

	return result
}

// EMA calculates Exponential Moving Average with smoothing 2/(period+1).
// The recursion is seeded with the first non-NaN price, so there is no
// warm-up window beyond leading NaN input.
func EMA(prices []float64, period int) []float64 {
	result := nans(len(prices))
	if period <= 0 {
		return result
	}

	alpha := 2.0 / float64(period+1)
	ema := math.NaN()
	for i, p := range prices {
		switch {
		case math.IsNaN(p):
			// carry the last value across gaps
		case math.IsNaN(ema):
			ema = p
		default:
			ema = alpha*p + (1-alpha)*ema
		}
		result[i] = ema
	}

	return result
}
