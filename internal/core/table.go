package core

import (
	"fmt"
	"time"
)

// Required bar columns
const (
	ColOpen   = "open"
	ColHigh   = "high"
	ColLow    = "low"
	ColClose  = "close"
	ColVolume = "volume"
)

// RequiredColumns lists the columns every bar table must carry
var RequiredColumns = []string{ColOpen, ColHigh, ColLow, ColClose, ColVolume}

// Table is a time-indexed set of numeric bar columns for a single symbol.
// Symbols is the optional symbol column; it is either empty or as long as Index.
type Table struct {
	Index   []time.Time
	Columns map[string][]float64
	Symbols []string
}

// NewTableFromBars builds a table from bars in the order given
func NewTableFromBars(bars []OHLCV) *Table {
	t := &Table{
		Index:   make([]time.Time, len(bars)),
		Columns: make(map[string][]float64, len(RequiredColumns)),
		Symbols: make([]string, len(bars)),
	}
	for _, c := range RequiredColumns {
		t.Columns[c] = make([]float64, len(bars))
	}

	hasSymbol := false
	for i, b := range bars {
		t.Index[i] = b.Time
		t.Columns[ColOpen][i] = b.Open
		t.Columns[ColHigh][i] = b.High
		t.Columns[ColLow][i] = b.Low
		t.Columns[ColClose][i] = b.Close
		t.Columns[ColVolume][i] = float64(b.Volume)
		t.Symbols[i] = b.Symbol
		if b.Symbol != "" {
			hasSymbol = true
		}
	}
	if !hasSymbol {
		t.Symbols = nil
	}
	return t
}

// Len returns the number of bars
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Index)
}

// Column returns the named column and whether it exists
func (t *Table) Column(name string) ([]float64, bool) {
	if t == nil || t.Columns == nil {
		return nil, false
	}
	c, ok := t.Columns[name]
	return c, ok
}

// Close returns the close column (nil if absent)
func (t *Table) Close() []float64 {
	c, _ := t.Column(ColClose)
	return c
}

// Symbol returns the first value of the symbol column, or DefaultSymbol
func (t *Table) Symbol() string {
	if t == nil || len(t.Symbols) == 0 || t.Symbols[0] == "" {
		return DefaultSymbol
	}
	return t.Symbols[0]
}

// MissingColumns returns the required columns absent from the table
func (t *Table) MissingColumns() []string {
	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := t.Column(c); !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

// Validate checks required columns and that every column matches the index length
func (t *Table) Validate() error {
	if missing := t.MissingColumns(); len(missing) > 0 {
		return WrapError(ErrMissingColumns,
			fmt.Errorf("required %v, missing %v", RequiredColumns, missing))
	}
	for name, col := range t.Columns {
		if len(col) != len(t.Index) {
			return WrapError(ErrMissingColumns,
				fmt.Errorf("column %q has %d values, index has %d", name, len(col), len(t.Index)))
		}
	}
	if len(t.Symbols) != 0 && len(t.Symbols) != len(t.Index) {
		return WrapError(ErrMissingColumns,
			fmt.Errorf("symbol column has %d values, index has %d", len(t.Symbols), len(t.Index)))
	}
	return nil
}
