package indicator

// MACDResult holds the three MACD components, each as long as the input
type MACDResult struct {
	Line      []float64
	Signal    []float64
	Histogram []float64
}

// MACD calculates the difference of a fast and a slow EMA, its signal EMA and the histogram
func MACD(prices []float64, fastPeriod, slowPeriod, signalPeriod int) MACDResult {
	fast := EMA(prices, fastPeriod)
	slow := EMA(prices, slowPeriod)

	line := make([]float64, len(prices))
	for i := range line {
		line[i] = fast[i] - slow[i]
	}

	signal := EMA(line, signalPeriod)
	hist := make([]float64, len(prices))
	for i := range hist {
		hist[i] = line[i] - signal[i]
	}

	return MACDResult{Line: line, Signal: signal, Histogram: hist}
}
