package indicator

import "math"

// RSI calculates the Relative Strength Index from rolling means of gains and
// losses over period bar-to-bar changes. The first period values are NaN.
// A window without losses reads 100; a window without any change is NaN.
func RSI(prices []float64, period int) []float64 {
	result := nans(len(prices))
	if period <= 0 || len(prices) <= period {
		return result
	}

	gains := make([]float64, len(prices))
	losses := make([]float64, len(prices))
	for i := 1; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	var gainSum, lossSum float64
	for i := 1; i <= period; i++ {
		gainSum += gains[i]
		lossSum += losses[i]
	}

	for i := period; i < len(prices); i++ {
		if i > period {
			gainSum += gains[i] - gains[i-period]
			lossSum += losses[i] - losses[i-period]
		}
		result[i] = rsiValue(gainSum/float64(period), lossSum/float64(period))
	}

	return result
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss <= 0 {
		if avgGain <= 0 {
			return math.NaN()
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
