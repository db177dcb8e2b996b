package ma_crossover

import (
	"fmt"

	"github.com/newthinker/tradesim/internal/core"
	"github.com/newthinker/tradesim/internal/indicator"
	"github.com/newthinker/tradesim/internal/strategy"
)

// Kind selects the moving average used by a crossover
type Kind string

const (
	KindSMA Kind = "sma"
	KindEMA Kind = "ema"
)

// MACrossover implements a moving average crossover strategy.
// It emits a regime signal: buy on every bar where the short average is above
// the long one, sell where it is below, hold otherwise or during warm-up.
type MACrossover struct {
	kind        Kind
	shortWindow int
	longWindow  int
}

// NewSMA creates an SMA crossover with the classic 20/50 windows
func NewSMA() *MACrossover {
	return &MACrossover{kind: KindSMA, shortWindow: 20, longWindow: 50}
}

// NewEMA creates an EMA crossover with the classic 12/26 windows
func NewEMA() *MACrossover {
	return &MACrossover{kind: KindEMA, shortWindow: 12, longWindow: 26}
}

// New creates a crossover of the given kind and windows
func New(kind Kind, shortWindow, longWindow int) *MACrossover {
	return &MACrossover{kind: kind, shortWindow: shortWindow, longWindow: longWindow}
}

func (m *MACrossover) Name() string {
	return string(m.kind) + "_crossover"
}

func (m *MACrossover) Description() string {
	return fmt.Sprintf("%s crossover (%d/%d)", m.kindLabel(), m.shortWindow, m.longWindow)
}

func (m *MACrossover) kindLabel() string {
	if m.kind == KindEMA {
		return "EMA"
	}
	return "SMA"
}

func (m *MACrossover) Init(cfg strategy.Config) error {
	short, err := strategy.PositiveInt(cfg.Params, "short_window", m.shortWindow)
	if err != nil {
		return err
	}
	long, err := strategy.PositiveInt(cfg.Params, "long_window", m.longWindow)
	if err != nil {
		return err
	}
	m.shortWindow = short
	m.longWindow = long
	return nil
}

func (m *MACrossover) GenerateSignals(table *core.Table) ([]core.Signal, error) {
	closes, err := strategy.Closes(table)
	if err != nil {
		return nil, err
	}

	average := indicator.SMA
	if m.kind == KindEMA {
		average = indicator.EMA
	}
	short := average(closes, m.shortWindow)
	long := average(closes, m.longWindow)

	// NaN compares false both ways, leaving warm-up bars on hold
	signals := make([]core.Signal, len(closes))
	for i := range signals {
		switch {
		case short[i] > long[i]:
			signals[i] = core.SignalBuy
		case short[i] < long[i]:
			signals[i] = core.SignalSell
		}
	}
	return signals, nil
}
