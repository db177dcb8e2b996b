package broker

import (
	"fmt"
	"math"
)

// DefaultFixedQuantity is the lot used when no fixed quantity is configured
const DefaultFixedQuantity int64 = 100

// SizeDecision represents the outcome of position sizing.
type SizeDecision struct {
	// Quantity is the number of units to order.
	Quantity int64
	// Allowed indicates whether an order should be placed at all.
	Allowed bool
	// Reason explains a skipped order.
	Reason string
}

func skip(format string, args ...any) SizeDecision {
	return SizeDecision{Allowed: false, Reason: fmt.Sprintf(format, args...)}
}

// Sizer decides how many units to trade for an order on symbol at price.
type Sizer interface {
	Size(side OrderSide, ledger Ledger, symbol string, price float64) SizeDecision
}

// FixedSizer orders a constant lot for both sides.
type FixedSizer struct {
	Quantity int64
}

// NewFixedSizer returns a sizer ordering quantity units, DefaultFixedQuantity if not positive.
func NewFixedSizer(quantity int64) FixedSizer {
	if quantity <= 0 {
		quantity = DefaultFixedQuantity
	}
	return FixedSizer{Quantity: quantity}
}

// Size implements Sizer.
func (f FixedSizer) Size(side OrderSide, ledger Ledger, symbol string, price float64) SizeDecision {
	if f.Quantity <= 0 {
		return skip("fixed quantity not positive: %d", f.Quantity)
	}
	return SizeDecision{Quantity: f.Quantity, Allowed: true}
}

// RiskConfig defines the cash-based sizing parameters.
type RiskConfig struct {
	// RiskPerTrade is the fraction of cash put at risk per buy.
	RiskPerTrade float64
	// RiskMultiplier scales the risk capital into the order budget.
	RiskMultiplier float64
	// MaxCashFraction caps a single buy as a fraction of available cash.
	MaxCashFraction float64
}

// DefaultRiskConfig returns 2% risk per trade, a 5x budget and a 95% cash cap.
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		RiskPerTrade:    0.02,
		RiskMultiplier:  5,
		MaxCashFraction: 0.95,
	}
}

// RiskSizer sizes buys from available cash and sells the whole position.
type RiskSizer struct {
	config RiskConfig
}

// NewRiskSizer creates a RiskSizer with the given configuration.
func NewRiskSizer(config RiskConfig) *RiskSizer {
	return &RiskSizer{config: config}
}

// Config returns the sizing parameters.
func (r *RiskSizer) Config() RiskConfig {
	return r.config
}

// Size implements Sizer.
func (r *RiskSizer) Size(side OrderSide, ledger Ledger, symbol string, price float64) SizeDecision {
	switch side {
	case OrderSideSell:
		held := ledger.Position(symbol)
		if held <= 0 {
			return skip("no %s position to sell", symbol)
		}
		return SizeDecision{Quantity: held, Allowed: true}
	case OrderSideBuy:
		return r.sizeBuy(ledger.Cash(), price)
	default:
		return skip("unsupported side %q", side)
	}
}

func (r *RiskSizer) sizeBuy(cash, price float64) SizeDecision {
	if cash <= 0 {
		return skip("no cash available: %.2f", cash)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return skip("price not finite: %v", price)
	}
	if price <= 0 {
		return skip("price not positive: %.4f", price)
	}

	riskCapital := cash * r.config.RiskPerTrade
	maxAmount := math.Min(riskCapital*r.config.RiskMultiplier, cash*r.config.MaxCashFraction)
	qty := int64(math.Floor(maxAmount / price))
	if qty < 1 {
		return skip("budget %.2f below one unit at %.4f", maxAmount, price)
	}

	// a cash fraction above 1 must not buy on margin
	if float64(qty)*price > cash {
		qty = int64(math.Floor(cash / price))
		if qty < 1 {
			return skip("cash %.2f below one unit at %.4f", cash, price)
		}
	}
	return SizeDecision{Quantity: qty, Allowed: true}
}
