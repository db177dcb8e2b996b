// Package portfolio implements the cash and position ledger driven by a backtest run.
package portfolio

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/newthinker/tradesim/internal/core"
)

// Option configures a Portfolio
type Option func(*Portfolio)

// WithLogger sets the logger used for trade and refusal events
func WithLogger(l *zap.Logger) Option {
	return func(p *Portfolio) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock sets the clock used to timestamp the bootstrap snapshot
func WithClock(now func() time.Time) Option {
	return func(p *Portfolio) {
		if now != nil {
			p.now = now
		}
	}
}

// Portfolio tracks cash, positions and the append-only trade and snapshot logs.
// Cash is kept as a decimal so repeated fills do not accumulate float error.
// A Portfolio has a single owner and is not safe for concurrent use.
type Portfolio struct {
	initialCash decimal.Decimal
	cash        decimal.Decimal
	positions   map[string]int64
	trades      []core.TradeRecord
	history     []core.Snapshot
	logger      *zap.Logger
	now         func() time.Time
}

// New creates a portfolio holding initialCash and records the bootstrap snapshot
func New(initialCash float64, opts ...Option) *Portfolio {
	p := &Portfolio{
		initialCash: decimal.NewFromFloat(initialCash),
		cash:        decimal.NewFromFloat(initialCash),
		positions:   make(map[string]int64),
		logger:      zap.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.recordSnapshot(p.now(), "initial state", nil)
	p.logger.Info("portfolio initialized", zap.Float64("initial_cash", initialCash))
	return p
}

// Buy purchases quantity units at price, paying commission on top.
// It returns false and leaves the portfolio unchanged when cash is insufficient.
func (p *Portfolio) Buy(symbol string, quantity int64, price float64, ts time.Time, commission float64, reason string) bool {
	if !p.acceptable(core.ActionBuy, symbol, quantity, price, commission) {
		return false
	}

	gross := decimal.NewFromInt(quantity).Mul(decimal.NewFromFloat(price))
	totalCost := gross.Add(decimal.NewFromFloat(commission))
	if totalCost.GreaterThan(p.cash) {
		p.logger.Warn("insufficient cash for buy",
			zap.String("symbol", symbol),
			zap.Int64("quantity", quantity),
			zap.Float64("required", totalCost.InexactFloat64()),
			zap.Float64("available", p.cash.InexactFloat64()),
		)
		return false
	}

	p.cash = p.cash.Sub(totalCost)
	p.positions[symbol] += quantity

	p.trades = append(p.trades, core.TradeRecord{
		Timestamp:  ts,
		Symbol:     symbol,
		Action:     core.ActionBuy,
		Quantity:   quantity,
		Price:      price,
		Total:      gross.InexactFloat64(),
		Commission: commission,
		Reason:     reason,
	})

	p.logger.Info("buy executed",
		zap.String("symbol", symbol),
		zap.Int64("quantity", quantity),
		zap.Float64("price", price),
		zap.Float64("commission", commission),
		zap.String("reason", reason),
	)

	p.recordSnapshot(ts, fmt.Sprintf("buy %d %s", quantity, symbol), map[string]float64{symbol: price})
	return true
}

// Sell disposes of quantity units at price, paying commission out of the proceeds.
// It returns false and leaves the portfolio unchanged when the position is too small.
func (p *Portfolio) Sell(symbol string, quantity int64, price float64, ts time.Time, commission float64, reason string) bool {
	if !p.acceptable(core.ActionSell, symbol, quantity, price, commission) {
		return false
	}

	held := p.positions[symbol]
	if held < quantity {
		p.logger.Warn("insufficient position for sell",
			zap.String("symbol", symbol),
			zap.Int64("quantity", quantity),
			zap.Int64("held", held),
		)
		return false
	}

	gross := decimal.NewFromInt(quantity).Mul(decimal.NewFromFloat(price))
	proceeds := gross.Sub(decimal.NewFromFloat(commission))
	if p.cash.Add(proceeds).IsNegative() {
		// commission larger than cash plus gross proceeds
		p.logger.Warn("sell proceeds do not cover commission",
			zap.String("symbol", symbol),
			zap.Float64("commission", commission),
		)
		return false
	}

	p.cash = p.cash.Add(proceeds)
	if held == quantity {
		delete(p.positions, symbol)
		p.logger.Info("position closed", zap.String("symbol", symbol))
	} else {
		p.positions[symbol] = held - quantity
	}

	p.trades = append(p.trades, core.TradeRecord{
		Timestamp:  ts,
		Symbol:     symbol,
		Action:     core.ActionSell,
		Quantity:   quantity,
		Price:      price,
		Total:      gross.InexactFloat64(),
		Commission: commission,
		Reason:     reason,
	})

	p.logger.Info("sell executed",
		zap.String("symbol", symbol),
		zap.Int64("quantity", quantity),
		zap.Float64("price", price),
		zap.Float64("commission", commission),
		zap.String("reason", reason),
	)

	p.recordSnapshot(ts, fmt.Sprintf("sell %d %s", quantity, symbol), map[string]float64{symbol: price})
	return true
}

func (p *Portfolio) acceptable(action core.Action, symbol string, quantity int64, price, commission float64) bool {
	var problem string
	switch {
	case symbol == "":
		problem = "empty symbol"
	case quantity <= 0:
		problem = "quantity must be positive"
	case !finite(price):
		problem = "price is not finite"
	case price < 0:
		problem = "price cannot be negative"
	case !finite(commission):
		problem = "commission is not finite"
	case commission < 0:
		problem = "commission cannot be negative"
	default:
		return true
	}
	p.logger.Warn("order refused",
		zap.String("action", string(action)),
		zap.String("symbol", symbol),
		zap.Int64("quantity", quantity),
		zap.Float64("price", price),
		zap.String("problem", problem),
	)
	return false
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Position returns the held quantity for symbol, 0 if none
func (p *Portfolio) Position(symbol string) int64 {
	return p.positions[symbol]
}

// Positions returns a copy of all open positions
func (p *Portfolio) Positions() map[string]int64 {
	out := make(map[string]int64, len(p.positions))
	for s, q := range p.positions {
		out[s] = q
	}
	return out
}

// Cash returns the available cash
func (p *Portfolio) Cash() float64 {
	return p.cash.InexactFloat64()
}

// InitialCash returns the starting capital
func (p *Portfolio) InitialCash() float64 {
	return p.initialCash.InexactFloat64()
}

// Value returns cash plus positions marked at prices. Symbols without a
// finite price count as 0.
func (p *Portfolio) Value(prices map[string]float64) float64 {
	cash := p.cash.InexactFloat64()
	stocks := p.stocksValue(prices).InexactFloat64()
	value := cash + stocks

	p.logger.Debug("portfolio valued",
		zap.Float64("cash", cash),
		zap.Float64("stocks", stocks),
		zap.Float64("total", value),
	)
	return value
}

// UpdatePortfolioValue values the portfolio at prices and records a periodic snapshot
func (p *Portfolio) UpdatePortfolioValue(prices map[string]float64, ts time.Time) float64 {
	value := p.Value(prices)
	p.recordSnapshot(ts, "periodic update", prices)
	p.logger.Debug("portfolio value updated", zap.Time("timestamp", ts), zap.Float64("value", value))
	return value
}

func (p *Portfolio) stocksValue(prices map[string]float64) decimal.Decimal {
	total := decimal.Zero
	for symbol, qty := range p.positions {
		price, ok := prices[symbol]
		if !ok || !finite(price) {
			continue
		}
		total = total.Add(decimal.NewFromInt(qty).Mul(decimal.NewFromFloat(price)))
	}
	return total
}

func (p *Portfolio) recordSnapshot(ts time.Time, note string, prices map[string]float64) {
	if len(prices) == 0 && len(p.positions) > 0 {
		p.logger.Warn("no prices for snapshot, stocks valued at 0", zap.Time("timestamp", ts))
	}

	cash := p.cash.InexactFloat64()
	stocks := p.stocksValue(prices).InexactFloat64()

	p.history = append(p.history, core.Snapshot{
		Timestamp:   ts,
		Cash:        cash,
		Positions:   p.Positions(),
		StocksValue: stocks,
		TotalValue:  cash + stocks,
		Note:        note,
	})
}

// TradeHistory returns a copy of the trade log
func (p *Portfolio) TradeHistory() []core.TradeRecord {
	return append([]core.TradeRecord(nil), p.trades...)
}

// PortfolioHistory returns a copy of the snapshot log
func (p *Portfolio) PortfolioHistory() []core.Snapshot {
	out := make([]core.Snapshot, len(p.history))
	for i, s := range p.history {
		s.Positions = copyPositions(s.Positions)
		out[i] = s
	}
	return out
}

// Summary is a point-in-time overview of the ledger
type Summary struct {
	InitialCash   float64 `json:"initial_cash"`
	Cash          float64 `json:"cash"`
	TotalTrades   int     `json:"total_trades"`
	OpenPositions int     `json:"open_positions"`
}

// Summary returns the current ledger overview
func (p *Portfolio) Summary() Summary {
	return Summary{
		InitialCash:   p.InitialCash(),
		Cash:          p.Cash(),
		TotalTrades:   len(p.trades),
		OpenPositions: len(p.positions),
	}
}

func (p *Portfolio) String() string {
	return fmt.Sprintf("Portfolio(cash=%s, positions=%d, trades=%d)",
		p.cash.StringFixed(2), len(p.positions), len(p.trades))
}

func copyPositions(in map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(in))
	for s, q := range in {
		out[s] = q
	}
	return out
}
