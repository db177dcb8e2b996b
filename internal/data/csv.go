package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/tradesim/internal/core"
)

// Header names accepted for the time index column
var indexHeaders = []string{"date", "timestamp", "time", "datetime"}

// Layouts tried in order when parsing the index column
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
}

const symbolHeader = "symbol"

// LoadCSV reads a headered CSV file. Headers are matched case-insensitively;
// every column other than the index and symbol is parsed as a number.
// Required bar columns are checked later by table validation.
func (l *Loader) LoadCSV(path, symbol string) (*core.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapError(core.ErrDataLoad, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, core.WrapError(core.ErrNoData, fmt.Errorf("%s is empty", path))
		}
		return nil, core.WrapError(core.ErrDataLoad, err)
	}

	indexCol, symbolCol := -1, -1
	var columns []string
	colAt := make(map[int]string)
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		switch {
		case indexCol < 0 && isIndexHeader(name):
			indexCol = i
		case name == symbolHeader:
			symbolCol = i
		case name != "":
			colAt[i] = name
			columns = append(columns, name)
		}
	}
	if indexCol < 0 {
		return nil, core.WrapError(core.ErrDataLoad,
			fmt.Errorf("%s has no time column, want one of %v", path, indexHeaders))
	}

	var rows []row
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, core.WrapError(core.ErrDataLoad, err)
		}

		ts, err := parseTime(rec[indexCol])
		if err != nil {
			return nil, core.WrapError(core.ErrDataLoad, fmt.Errorf("%s line %d: %w", path, line, err))
		}

		rw := row{time: ts, values: make(map[string]float64, len(colAt))}
		if symbolCol >= 0 {
			rw.symbol = strings.TrimSpace(rec[symbolCol])
		}
		for i, name := range colAt {
			field := strings.TrimSpace(rec[i])
			if field == "" {
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, core.WrapError(core.ErrDataLoad,
					fmt.Errorf("%s line %d column %q: %w", path, line, name, err))
			}
			rw.values[name] = v
		}
		rows = append(rows, rw)
	}

	return l.buildTable(path, rows, columns, symbol)
}

func isIndexHeader(name string) bool {
	for _, h := range indexHeaders {
		if name == h {
			return true
		}
	}
	return false
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	// unix seconds or milliseconds
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n > 1e11 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}
