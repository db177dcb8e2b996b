package performance

import (
	"math"
	"sort"
	"time"

	"github.com/newthinker/tradesim/internal/core"
)

// CompletedTrade is one matched buy/sell pair, or part of one when a lot was split
type CompletedTrade struct {
	Symbol     string    `json:"symbol"`
	Quantity   int64     `json:"quantity"`
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  float64   `json:"exit_price"`
	EntryTime  time.Time `json:"entry_time"`
	ExitTime   time.Time `json:"exit_time"`
	PnL        float64   `json:"pnl"`
	PnLPercent float64   `json:"pnl_percent"`
}

// IsWin reports whether the matched pair made money
func (c CompletedTrade) IsWin() bool {
	return c.PnL > 0
}

// Lot is an open quantity waiting to be matched. Side is BUY for a bought
// lot and SELL for the uncovered remainder of a sell.
type Lot struct {
	Symbol   string
	Side     core.Action
	Quantity int64
	Price    float64
	Time     time.Time
}

// fifoBook keeps one queue of open lots per symbol. Buys append a lot; a sell
// consumes lots from the head whatever their side, and any remainder it could
// not cover is appended as a SELL lot that later sells consume first.
type fifoBook struct {
	queues map[string][]Lot
}

func newFIFOBook() *fifoBook {
	return &fifoBook{queues: make(map[string][]Lot)}
}

func (b *fifoBook) apply(tr core.TradeRecord) []CompletedTrade {
	switch tr.Action {
	case core.ActionBuy:
		b.push(tr, tr.Quantity)
		return nil
	case core.ActionSell:
		return b.sell(tr)
	}
	return nil
}

func (b *fifoBook) push(tr core.TradeRecord, quantity int64) {
	b.queues[tr.Symbol] = append(b.queues[tr.Symbol], Lot{
		Symbol:   tr.Symbol,
		Side:     tr.Action,
		Quantity: quantity,
		Price:    tr.Price,
		Time:     tr.Timestamp,
	})
}

func (b *fifoBook) sell(tr core.TradeRecord) []CompletedTrade {
	var fills []CompletedTrade
	remaining := tr.Quantity
	queue := b.queues[tr.Symbol]

	for remaining > 0 && len(queue) > 0 {
		lot := &queue[0]
		matched := min(remaining, lot.Quantity)

		var pct float64
		if lot.Price > 0 {
			pct = (tr.Price - lot.Price) / lot.Price * 100
		}
		fills = append(fills, CompletedTrade{
			Symbol:     tr.Symbol,
			Quantity:   matched,
			EntryPrice: lot.Price,
			ExitPrice:  tr.Price,
			EntryTime:  lot.Time,
			ExitTime:   tr.Timestamp,
			PnL:        (tr.Price - lot.Price) * float64(matched),
			PnLPercent: pct,
		})

		remaining -= matched
		lot.Quantity -= matched
		if lot.Quantity == 0 {
			queue = queue[1:]
		}
	}
	b.queues[tr.Symbol] = queue

	if remaining > 0 {
		b.push(tr, remaining)
	}
	return fills
}

// chronological returns trade indices ordered by timestamp, ties kept in log order
func chronological(trades []core.TradeRecord) []int {
	order := make([]int, len(trades))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return trades[order[a]].Timestamp.Before(trades[order[b]].Timestamp)
	})
	return order
}

// Matching is the outcome of FIFO matching over a trade log.
// OpenLots and UnmatchedSells split the lots left in the queues by side.
type Matching struct {
	Completed      []CompletedTrade
	OpenLots       []Lot
	UnmatchedSells []Lot
}

// MatchFIFO matches the trade log chronologically and reports what stayed open
func MatchFIFO(trades []core.TradeRecord) Matching {
	book := newFIFOBook()
	var m Matching
	for _, i := range chronological(trades) {
		m.Completed = append(m.Completed, book.apply(trades[i])...)
	}

	for _, lots := range book.queues {
		for _, lot := range lots {
			if lot.Side == core.ActionSell {
				m.UnmatchedSells = append(m.UnmatchedSells, lot)
			} else {
				m.OpenLots = append(m.OpenLots, lot)
			}
		}
	}
	sortLots(m.OpenLots)
	sortLots(m.UnmatchedSells)
	return m
}

func sortLots(lots []Lot) {
	sort.SliceStable(lots, func(a, b int) bool {
		if !lots[a].Time.Equal(lots[b].Time) {
			return lots[a].Time.Before(lots[b].Time)
		}
		return lots[a].Symbol < lots[b].Symbol
	})
}

// MatchTrades returns the completed round trips of the trade log in FIFO order
func MatchTrades(trades []core.TradeRecord) []CompletedTrade {
	return MatchFIFO(trades).Completed
}

// WinLoss counts completed trades by outcome. Rate is a fraction in [0, 1].
type WinLoss struct {
	Winning int     `json:"winning"`
	Losing  int     `json:"losing"`
	Rate    float64 `json:"rate"`
}

// WinRate classifies FIFO-matched round trips; all zero without completed trades
func WinRate(trades []core.TradeRecord) WinLoss {
	completed := MatchTrades(trades)
	if len(completed) == 0 {
		return WinLoss{}
	}

	var wl WinLoss
	for _, c := range completed {
		if c.IsWin() {
			wl.Winning++
		} else {
			wl.Losing++
		}
	}
	wl.Rate = float64(wl.Winning) / float64(len(completed))
	return wl
}

// RealizePnL returns a copy of the trade log annotated with FIFO realized PnL.
// Sell legs carry the PnL of the lots they closed and a quantity-weighted
// percent; buy legs and unmatched sells carry 0.
func RealizePnL(trades []core.TradeRecord) []core.TradeRecord {
	out := make([]core.TradeRecord, len(trades))
	book := newFIFOBook()

	for _, i := range chronological(trades) {
		tr := trades[i]
		fills := book.apply(tr)

		var pnl, weighted float64
		var qty int64
		for _, f := range fills {
			pnl += f.PnL
			weighted += f.PnLPercent * float64(f.Quantity)
			qty += f.Quantity
		}

		var pct float64
		if qty > 0 {
			pct = weighted / float64(qty)
		}
		out[i] = tr.WithPnL(pnl, pct)
	}
	return out
}

// ProfitFactor returns gross profit over gross loss. Trades with realized PnL
// contribute their PnL; others count SELL totals as profit and BUY totals as loss.
// It is +Inf with profit and no loss, and 0 when both are zero.
func ProfitFactor(trades []core.TradeRecord) float64 {
	var profit, loss float64
	for _, tr := range trades {
		if tr.HasPnL {
			if tr.PnL > 0 {
				profit += tr.PnL
			} else {
				loss += math.Abs(tr.PnL)
			}
			continue
		}
		switch tr.Action {
		case core.ActionSell:
			profit += tr.Total
		case core.ActionBuy:
			loss += tr.Total
		}
	}

	if loss == 0 {
		if profit > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return profit / loss
}
