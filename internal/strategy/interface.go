package strategy

import (
	"github.com/newthinker/tradesim/internal/core"
)

// Config holds strategy configuration
type Config struct {
	Params map[string]any
}

// Strategy turns a bar table into one signal per bar.
// GenerateSignals returns a slice aligned with the table index holding only
// SignalBuy, SignalSell or SignalHold.
type Strategy interface {
	Name() string
	Description() string
	Init(cfg Config) error
	GenerateSignals(table *core.Table) ([]core.Signal, error)
}
