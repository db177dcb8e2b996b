package data

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/newthinker/tradesim/internal/core"
)

// BarRecord is the Parquet schema for bar data
type BarRecord struct {
	Symbol     string  `parquet:"symbol"`
	Timestamp  int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open       float64 `parquet:"open"`
	High       float64 `parquet:"high"`
	Low        float64 `parquet:"low"`
	Close      float64 `parquet:"close"`
	Volume     int64   `parquet:"volume"`
	TradeCount int64   `parquet:"trade_count"`
	VWAP       float64 `parquet:"vwap"`
}

// Extra columns carried from Parquet files alongside the required ones
const (
	ColTradeCount = "trade_count"
	ColVWAP       = "vwap"
)

var parquetColumns = append(append([]string(nil), core.RequiredColumns...), ColTradeCount, ColVWAP)

// LoadParquet reads a file of BarRecord rows
func (l *Loader) LoadParquet(path, symbol string) (*core.Table, error) {
	records, err := parquet.ReadFile[BarRecord](path)
	if err != nil {
		return nil, core.WrapError(core.ErrDataLoad, fmt.Errorf("reading %s: %w", path, err))
	}

	rows := make([]row, len(records))
	for i, r := range records {
		rows[i] = row{
			time:   time.UnixMilli(r.Timestamp).UTC(),
			symbol: r.Symbol,
			values: map[string]float64{
				core.ColOpen:   r.Open,
				core.ColHigh:   r.High,
				core.ColLow:    r.Low,
				core.ColClose:  r.Close,
				core.ColVolume: float64(r.Volume),
				ColTradeCount:  float64(r.TradeCount),
				ColVWAP:        r.VWAP,
			},
		}
	}
	return l.buildTable(path, rows, parquetColumns, symbol)
}

// WriteParquet stores a validated table as BarRecord rows
func WriteParquet(path string, table *core.Table) error {
	if table == nil {
		return core.ErrNoData
	}
	if err := table.Validate(); err != nil {
		return err
	}

	records := make([]BarRecord, table.Len())
	trades, _ := table.Column(ColTradeCount)
	vwap, _ := table.Column(ColVWAP)
	for i, ts := range table.Index {
		rec := BarRecord{
			Symbol:    table.Symbol(),
			Timestamp: ts.UnixMilli(),
			Open:      table.Columns[core.ColOpen][i],
			High:      table.Columns[core.ColHigh][i],
			Low:       table.Columns[core.ColLow][i],
			Close:     table.Columns[core.ColClose][i],
			Volume:    int64(table.Columns[core.ColVolume][i]),
		}
		if len(table.Symbols) > 0 && table.Symbols[i] != "" {
			rec.Symbol = table.Symbols[i]
		}
		if len(trades) == table.Len() {
			rec.TradeCount = int64(trades[i])
		}
		if len(vwap) == table.Len() {
			rec.VWAP = vwap[i]
		}
		records[i] = rec
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return core.WrapError(core.ErrDataLoad, err)
	}
	if err := parquet.WriteFile(path, records); err != nil {
		return core.WrapError(core.ErrDataLoad, fmt.Errorf("writing %s: %w", path, err))
	}
	return nil
}
