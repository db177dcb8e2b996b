// Package oscillator implements RSI and MACD based strategies.
package oscillator

import (
	"fmt"

	"github.com/newthinker/tradesim/internal/core"
	"github.com/newthinker/tradesim/internal/indicator"
	"github.com/newthinker/tradesim/internal/strategy"
)

type rsiParams struct {
	window     int
	overbought float64
	oversold   float64
}

func defaultRSIParams() rsiParams {
	return rsiParams{window: 14, overbought: 70, oversold: 30}
}

func (p *rsiParams) load(params map[string]any) error {
	window, err := strategy.PositiveInt(params, "rsi_window", p.window)
	if err != nil {
		return err
	}
	overbought, err := strategy.Float(params, "overbought", p.overbought)
	if err != nil {
		return err
	}
	oversold, err := strategy.Float(params, "oversold", p.oversold)
	if err != nil {
		return err
	}
	if oversold <= 0 || overbought >= 100 || oversold >= overbought {
		return core.WrapError(core.ErrInvalidParam,
			fmt.Errorf("need 0 < oversold < overbought < 100, got %.1f/%.1f", oversold, overbought))
	}

	p.window, p.overbought, p.oversold = window, overbought, oversold
	return nil
}

// RSI buys when RSI climbs out of the oversold zone and sells when it
// falls out of the overbought zone.
type RSI struct {
	params rsiParams
}

// NewRSI creates an RSI strategy with 14 bars and 70/30 levels
func NewRSI() *RSI {
	return &RSI{params: defaultRSIParams()}
}

func (r *RSI) Name() string { return "rsi" }

func (r *RSI) Description() string {
	return fmt.Sprintf("RSI zone exit (%d, %.0f/%.0f)", r.params.window, r.params.overbought, r.params.oversold)
}

func (r *RSI) Init(cfg strategy.Config) error {
	return r.params.load(cfg.Params)
}

func (r *RSI) GenerateSignals(table *core.Table) ([]core.Signal, error) {
	closes, err := strategy.Closes(table)
	if err != nil {
		return nil, err
	}
	rsi := indicator.RSI(closes, r.params.window)

	signals := make([]core.Signal, len(closes))
	for i := 1; i < len(rsi); i++ {
		prev, curr := rsi[i-1], rsi[i]
		switch {
		case curr > r.params.oversold && prev <= r.params.oversold:
			signals[i] = core.SignalBuy
		case curr < r.params.overbought && prev >= r.params.overbought:
			signals[i] = core.SignalSell
		}
	}
	return signals, nil
}

// RSITrend buys while RSI is oversold and rising and sells while it is
// overbought and falling.
type RSITrend struct {
	params rsiParams
}

// NewRSITrend creates an RSI trend strategy with 14 bars and 70/30 levels
func NewRSITrend() *RSITrend {
	return &RSITrend{params: defaultRSIParams()}
}

func (r *RSITrend) Name() string { return "rsi_trend" }

func (r *RSITrend) Description() string {
	return fmt.Sprintf("RSI with momentum filter (%d, %.0f/%.0f)", r.params.window, r.params.overbought, r.params.oversold)
}

func (r *RSITrend) Init(cfg strategy.Config) error {
	return r.params.load(cfg.Params)
}

func (r *RSITrend) GenerateSignals(table *core.Table) ([]core.Signal, error) {
	closes, err := strategy.Closes(table)
	if err != nil {
		return nil, err
	}
	rsi := indicator.RSI(closes, r.params.window)

	signals := make([]core.Signal, len(closes))
	for i := 1; i < len(rsi); i++ {
		prev, curr := rsi[i-1], rsi[i]
		switch {
		case curr < r.params.oversold && curr > prev:
			signals[i] = core.SignalBuy
		case curr > r.params.overbought && curr < prev:
			signals[i] = core.SignalSell
		}
	}
	return signals, nil
}
