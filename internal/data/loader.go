// Package data loads historical bar tables from CSV and Parquet files.
package data

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/tradesim/internal/core"
)

// Loader reads bar files into tables
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a loader
func NewLoader(logger ...*zap.Logger) *Loader {
	var log *zap.Logger
	if len(logger) > 0 && logger[0] != nil {
		log = logger[0]
	} else {
		log = zap.NewNop()
	}
	return &Loader{logger: log}
}

// Load dispatches on the file extension (.csv or .parquet). A non-empty
// symbol keeps only that symbol's rows; files with several symbols require one.
func (l *Loader) Load(path, symbol string) (*core.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return l.LoadCSV(path, symbol)
	case ".parquet", ".pq":
		return l.LoadParquet(path, symbol)
	default:
		return nil, core.WrapError(core.ErrDataLoad, fmt.Errorf("unsupported file type %q", path))
	}
}

// row is one parsed bar before it becomes a table column entry
type row struct {
	time   time.Time
	symbol string
	values map[string]float64
}

// buildTable filters rows by symbol, orders them by time and lays them out as columns
func (l *Loader) buildTable(path string, rows []row, columns []string, symbol string) (*core.Table, error) {
	if symbol != "" {
		kept := rows[:0]
		for _, r := range rows {
			if r.symbol == "" || r.symbol == symbol {
				kept = append(kept, r)
			}
		}
		rows = kept
	} else if symbols := distinctSymbols(rows); len(symbols) > 1 {
		return nil, core.WrapError(core.ErrDataLoad,
			fmt.Errorf("%s holds %d symbols %v, select one", path, len(symbols), symbols))
	}
	if len(rows) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no bars in %s", path))
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].time.Before(rows[j].time) })
	if err := checkRequired(path, rows, columns); err != nil {
		return nil, err
	}

	t := &core.Table{
		Index:   make([]time.Time, len(rows)),
		Columns: make(map[string][]float64, len(columns)),
	}
	for _, c := range columns {
		t.Columns[c] = make([]float64, len(rows))
	}

	hasSymbol := false
	symbols := make([]string, len(rows))
	for i, r := range rows {
		t.Index[i] = r.time
		for _, c := range columns {
			t.Columns[c][i] = r.values[c]
		}
		symbols[i] = r.symbol
		if r.symbol != "" {
			hasSymbol = true
		}
	}
	switch {
	case hasSymbol:
		t.Symbols = symbols
	case symbol != "":
		// no symbol column: the requested symbol names every bar
		for i := range symbols {
			symbols[i] = symbol
		}
		t.Symbols = symbols
	}

	l.logger.Info("bars loaded",
		zap.String("path", path),
		zap.String("symbol", t.Symbol()),
		zap.Int("bars", t.Len()),
		zap.Time("start", t.Index[0]),
		zap.Time("end", t.Index[len(t.Index)-1]),
	)
	return t, nil
}

// checkRequired rejects bars whose present required columns hold a blank or
// non-finite value. Absent required columns are left to table validation.
func checkRequired(path string, rows []row, columns []string) error {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}
	for _, r := range rows {
		for _, c := range core.RequiredColumns {
			if !present[c] {
				continue
			}
			v, ok := r.values[c]
			if !ok {
				return core.WrapError(core.ErrDataLoad,
					fmt.Errorf("%s: bar at %s has no %s", path, r.time.Format(time.RFC3339), c))
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return core.WrapError(core.ErrDataLoad,
					fmt.Errorf("%s: bar at %s has non-finite %s %v", path, r.time.Format(time.RFC3339), c, v))
			}
		}
	}
	return nil
}

func distinctSymbols(rows []row) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		if r.symbol != "" && !seen[r.symbol] {
			seen[r.symbol] = true
			out = append(out, r.symbol)
		}
	}
	sort.Strings(out)
	return out
}
