package broker

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/tradesim/internal/core"
)

// ExecutionConfig holds the cost model applied to every fill.
type ExecutionConfig struct {
	// CommissionRate is charged on the filled notional.
	CommissionRate float64
	// SlippageRate moves the fill price against the order.
	SlippageRate float64
}

// DefaultExecutionConfig returns 0.1% commission and 0.1% slippage.
func DefaultExecutionConfig() ExecutionConfig {
	return ExecutionConfig{
		CommissionRate: 0.001,
		SlippageRate:   0.001,
	}
}

// OrderExecutor derives realistic fill prices and commissions and applies
// them to a ledger. It holds no mutable state.
type OrderExecutor struct {
	config ExecutionConfig
	logger *zap.Logger
}

// NewOrderExecutor creates an executor with the given cost model.
func NewOrderExecutor(config ExecutionConfig, logger ...*zap.Logger) *OrderExecutor {
	var l *zap.Logger
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	} else {
		l = zap.NewNop()
	}
	return &OrderExecutor{
		config: config,
		logger: l,
	}
}

// Config returns the executor's cost model.
func (e *OrderExecutor) Config() ExecutionConfig {
	return e.config
}

// ExecutionPrice applies slippage against the order: buys fill higher, sells lower.
func (e *OrderExecutor) ExecutionPrice(intended float64, side OrderSide) float64 {
	switch side {
	case OrderSideBuy:
		return intended + intended*e.config.SlippageRate
	case OrderSideSell:
		return intended - intended*e.config.SlippageRate
	default:
		return intended
	}
}

// CommissionCost returns the commission on quantity units filled at price.
func (e *OrderExecutor) CommissionCost(quantity int64, price float64) float64 {
	return float64(quantity) * price * e.config.CommissionRate
}

// ExecuteMarketOrder fills quantity units at the slipped price plus commission.
// A refused order returns false with a nil error; an unknown side is an error.
func (e *OrderExecutor) ExecuteMarketOrder(ledger Ledger, symbol string, quantity int64, price float64, side OrderSide, ts time.Time, reason string) (bool, error) {
	if side != OrderSideBuy && side != OrderSideSell {
		return false, core.WrapError(core.ErrUnsupportedAction, fmt.Errorf("side %q", side))
	}

	fill := e.ExecutionPrice(price, side)
	commission := e.CommissionCost(quantity, fill)

	var ok bool
	if side == OrderSideBuy {
		ok = ledger.Buy(symbol, quantity, fill, ts, commission, reason)
	} else {
		ok = ledger.Sell(symbol, quantity, fill, ts, commission, reason)
	}

	if !ok {
		e.logger.Warn("market order refused",
			zap.String("side", string(side)),
			zap.String("symbol", symbol),
			zap.Int64("quantity", quantity),
			zap.Float64("fill_price", fill),
		)
		return false, nil
	}

	e.logger.Debug("market order filled",
		zap.String("side", string(side)),
		zap.String("symbol", symbol),
		zap.Int64("quantity", quantity),
		zap.Float64("intended_price", price),
		zap.Float64("fill_price", fill),
		zap.Float64("commission", commission),
	)
	return true, nil
}

// ExecuteSignal executes a market order in the direction of signal.
// A hold signal returns false without touching the ledger.
func (e *OrderExecutor) ExecuteSignal(ledger Ledger, symbol string, signal core.Signal, price float64, ts time.Time, quantity int64, reason string) (bool, error) {
	side, ok := SideFromSignal(signal)
	if !ok {
		return false, nil
	}
	return e.ExecuteMarketOrder(ledger, symbol, quantity, price, side, ts, fmt.Sprintf("%s - %s signal", reason, side))
}
