package oscillator

import (
	"fmt"

	"github.com/newthinker/tradesim/internal/core"
	"github.com/newthinker/tradesim/internal/indicator"
	"github.com/newthinker/tradesim/internal/strategy"
)

type macdParams struct {
	fast   int
	slow   int
	signal int
}

func defaultMACDParams() macdParams {
	return macdParams{fast: 12, slow: 26, signal: 9}
}

func (p *macdParams) load(params map[string]any, fastKey, slowKey, signalKey string) error {
	fast, err := strategy.PositiveInt(params, fastKey, p.fast)
	if err != nil {
		return err
	}
	slow, err := strategy.PositiveInt(params, slowKey, p.slow)
	if err != nil {
		return err
	}
	signal, err := strategy.PositiveInt(params, signalKey, p.signal)
	if err != nil {
		return err
	}
	p.fast, p.slow, p.signal = fast, slow, signal
	return nil
}

func (p macdParams) String() string {
	return fmt.Sprintf("%d/%d/%d", p.fast, p.slow, p.signal)
}

// MACD buys when the MACD line crosses above its signal line and sells on the cross below.
type MACD struct {
	params macdParams
}

// NewMACD creates a MACD strategy with 12/26/9 windows
func NewMACD() *MACD {
	return &MACD{params: defaultMACDParams()}
}

func (m *MACD) Name() string { return "macd" }

func (m *MACD) Description() string {
	return fmt.Sprintf("MACD signal line cross (%s)", m.params)
}

func (m *MACD) Init(cfg strategy.Config) error {
	return m.params.load(cfg.Params, "fast_window", "slow_window", "signal_window")
}

func (m *MACD) GenerateSignals(table *core.Table) ([]core.Signal, error) {
	closes, err := strategy.Closes(table)
	if err != nil {
		return nil, err
	}
	macd := indicator.MACD(closes, m.params.fast, m.params.slow, m.params.signal)
	line, sig := macd.Line, macd.Signal

	signals := make([]core.Signal, len(closes))
	for i := 1; i < len(closes); i++ {
		switch {
		case line[i] > sig[i] && line[i-1] <= sig[i-1]:
			signals[i] = core.SignalBuy
		case line[i] < sig[i] && line[i-1] >= sig[i-1]:
			signals[i] = core.SignalSell
		}
	}
	return signals, nil
}

// MACDZeroCross buys when the MACD line crosses above zero and sells on the cross below.
type MACDZeroCross struct {
	params macdParams
}

// NewMACDZeroCross creates a zero-cross strategy with 12/26/9 windows
func NewMACDZeroCross() *MACDZeroCross {
	return &MACDZeroCross{params: defaultMACDParams()}
}

func (m *MACDZeroCross) Name() string { return "macd_zero_cross" }

func (m *MACDZeroCross) Description() string {
	return fmt.Sprintf("MACD zero line cross (%s)", m.params)
}

func (m *MACDZeroCross) Init(cfg strategy.Config) error {
	return m.params.load(cfg.Params, "fast_window", "slow_window", "signal_window")
}

func (m *MACDZeroCross) GenerateSignals(table *core.Table) ([]core.Signal, error) {
	closes, err := strategy.Closes(table)
	if err != nil {
		return nil, err
	}
	line := indicator.MACD(closes, m.params.fast, m.params.slow, m.params.signal).Line

	signals := make([]core.Signal, len(closes))
	for i := 1; i < len(closes); i++ {
		switch {
		case line[i] > 0 && line[i-1] <= 0:
			signals[i] = core.SignalBuy
		case line[i] < 0 && line[i-1] >= 0:
			signals[i] = core.SignalSell
		}
	}
	return signals, nil
}

// RSIMACD requires both indicators to agree: RSI oversold with MACD above
// its signal line buys, RSI overbought with MACD below it sells.
type RSIMACD struct {
	rsi  rsiParams
	macd macdParams
}

// NewRSIMACD creates the combined strategy with the RSI and MACD defaults
func NewRSIMACD() *RSIMACD {
	return &RSIMACD{rsi: defaultRSIParams(), macd: defaultMACDParams()}
}

func (c *RSIMACD) Name() string { return "rsi_macd" }

func (c *RSIMACD) Description() string {
	return fmt.Sprintf("RSI (%d, %.0f/%.0f) confirmed by MACD (%s)",
		c.rsi.window, c.rsi.overbought, c.rsi.oversold, c.macd)
}

func (c *RSIMACD) Init(cfg strategy.Config) error {
	if err := c.rsi.load(cfg.Params); err != nil {
		return err
	}
	return c.macd.load(cfg.Params, "macd_fast", "macd_slow", "macd_signal")
}

func (c *RSIMACD) GenerateSignals(table *core.Table) ([]core.Signal, error) {
	closes, err := strategy.Closes(table)
	if err != nil {
		return nil, err
	}
	rsi := indicator.RSI(closes, c.rsi.window)
	macd := indicator.MACD(closes, c.macd.fast, c.macd.slow, c.macd.signal)

	signals := make([]core.Signal, len(closes))
	for i := range signals {
		switch {
		case rsi[i] < c.rsi.oversold && macd.Line[i] > macd.Signal[i]:
			signals[i] = core.SignalBuy
		case rsi[i] > c.rsi.overbought && macd.Line[i] < macd.Signal[i]:
			signals[i] = core.SignalSell
		}
	}
	return signals, nil
}
