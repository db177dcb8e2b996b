package core

import "time"

// DefaultSymbol is used when the bar table carries no symbol column
const DefaultSymbol = "UNKNOWN"

// OHLCV represents a candlestick/bar
type OHLCV struct {
	Symbol   string
	Interval string // "1m", "5m", "1d"
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   int64
	Time     time.Time
}

// Action is the side of an executed trade
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// Signal is a per-bar strategy intent: -1 sell, 0 hold, 1 buy
type Signal int

const (
	SignalSell Signal = -1
	SignalHold Signal = 0
	SignalBuy  Signal = 1
)

// String returns the signal name
func (s Signal) String() string {
	switch {
	case s > 0:
		return "buy"
	case s < 0:
		return "sell"
	default:
		return "hold"
	}
}

// TradeRecord is one executed fill. Records are values and are never
// mutated after they are appended to a trade log.
type TradeRecord struct {
	Timestamp  time.Time `json:"timestamp"`
	Symbol     string    `json:"symbol"`
	Action     Action    `json:"action"`
	Quantity   int64     `json:"quantity"`
	Price      float64   `json:"price"`
	Total      float64   `json:"total"` // Quantity * Price, commission excluded
	Commission float64   `json:"commission"`
	Reason     string    `json:"reason"`

	// Realized PnL, filled by the FIFO post-pass. Zero for BUY legs.
	PnL        float64 `json:"pnl"`
	PnLPercent float64 `json:"pnl_percent"`
	HasPnL     bool    `json:"has_pnl"`
}

// WithPnL returns a copy of the record carrying realized PnL
func (t TradeRecord) WithPnL(pnl, pnlPercent float64) TradeRecord {
	t.PnL = pnl
	t.PnLPercent = pnlPercent
	t.HasPnL = true
	return t
}

// Snapshot is the portfolio state at one instant
type Snapshot struct {
	Timestamp   time.Time        `json:"timestamp"`
	Cash        float64          `json:"cash"`
	Positions   map[string]int64 `json:"positions"`
	StocksValue float64          `json:"stocks_value"`
	TotalValue  float64          `json:"total_value"`
	Note        string           `json:"note"`
}
