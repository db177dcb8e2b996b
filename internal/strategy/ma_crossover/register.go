package ma_crossover

import "github.com/newthinker/tradesim/internal/strategy"

// Register adds the SMA and EMA crossovers to r
func Register(r *strategy.Registry) {
	r.Register(func() strategy.Strategy { return NewSMA() })
	r.Register(func() strategy.Strategy { return NewEMA() })
}
