// Package broker turns trading intents into simulated fills against a ledger.
package broker

import (
	"time"

	"github.com/newthinker/tradesim/internal/core"
)

// OrderSide represents the direction of an order.
type OrderSide string

const (
	// OrderSideBuy represents a buy order.
	OrderSideBuy OrderSide = "BUY"
	// OrderSideSell represents a sell order.
	OrderSideSell OrderSide = "SELL"
)

// SideFromSignal maps a strategy signal to an order side.
// It returns false for a hold signal.
func SideFromSignal(signal core.Signal) (OrderSide, bool) {
	switch {
	case signal > 0:
		return OrderSideBuy, true
	case signal < 0:
		return OrderSideSell, true
	default:
		return "", false
	}
}

// Ledger is the account an executor fills orders against.
// Buy and Sell return false when the order is refused.
type Ledger interface {
	Buy(symbol string, quantity int64, price float64, ts time.Time, commission float64, reason string) bool
	Sell(symbol string, quantity int64, price float64, ts time.Time, commission float64, reason string) bool
	Position(symbol string) int64
	Cash() float64
}
