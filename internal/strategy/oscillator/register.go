package oscillator

import "github.com/newthinker/tradesim/internal/strategy"

// Register adds every oscillator strategy to r
func Register(r *strategy.Registry) {
	r.Register(func() strategy.Strategy { return NewRSI() })
	r.Register(func() strategy.Strategy { return NewRSITrend() })
	r.Register(func() strategy.Strategy { return NewMACD() })
	r.Register(func() strategy.Strategy { return NewMACDZeroCross() })
	r.Register(func() strategy.Strategy { return NewRSIMACD() })
}
