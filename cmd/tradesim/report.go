package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/newthinker/tradesim/internal/alert"
	"github.com/newthinker/tradesim/internal/backtest"
	"github.com/newthinker/tradesim/internal/performance"
)

// printSummary writes the headline figures of one run
func printSummary(w io.Writer, r *backtest.Result) {
	m := r.Metrics
	fmt.Fprintln(w, "=== tradesim backtest ===")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Run:\t%s\n", r.RunID)
	fmt.Fprintf(tw, "Strategy:\t%s\n", r.Strategy)
	fmt.Fprintf(tw, "Symbol:\t%s\n", r.Symbol)
	fmt.Fprintf(tw, "Period:\t%s to %s (%d days)\n",
		r.Period.Start.Format("2006-01-02"), r.Period.End.Format("2006-01-02"), r.Period.Days)
	fmt.Fprintf(tw, "Initial capital:\t%.2f\n", r.InitialCapital)
	fmt.Fprintf(tw, "Final value:\t%.2f\n", r.FinalPortfolioValue)
	fmt.Fprintf(tw, "Total return:\t%.2f%%\n", m.TotalReturn*100)
	fmt.Fprintf(tw, "Annualized return:\t%.2f%%\n", m.AnnualizedReturn*100)
	fmt.Fprintf(tw, "Volatility:\t%.2f%%\n", m.Volatility*100)
	fmt.Fprintf(tw, "Sharpe ratio:\t%.3f\n", m.SharpeRatio)
	fmt.Fprintf(tw, "Max drawdown:\t%.2f%%\n", m.MaxDrawdown)
	fmt.Fprintf(tw, "Calmar ratio:\t%.3f\n", m.CalmarRatio)
	fmt.Fprintf(tw, "Trades:\t%d (%d won, %d lost, win rate %.1f%%)\n",
		m.TotalTrades, m.WinningTrades, m.LosingTrades, m.WinRate*100)
	fmt.Fprintf(tw, "Profit factor:\t%.3f\n", m.ProfitFactor)
	fmt.Fprintf(tw, "Signals:\t%d (%d orders not filled)\n", r.Signals, r.Refused)
	tw.Flush()
}

// printAlerts lists triggered alert rules, nothing when none fired
func printAlerts(w io.Writer, alerts []alert.Alert) {
	for _, a := range alerts {
		fmt.Fprintf(w, "ALERT %s %s\n", a.Subject, a.Message)
	}
}

// batchRow is one line of the batch table
type batchRow struct {
	Strategy string
	Symbol   string
	Metrics  performance.Metrics
	Final    float64
	Err      error
}

func printBatch(w io.Writer, rows []batchRow) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STRATEGY\tSYMBOL\tRETURN\tSHARPE\tMAX DD\tTRADES\tFINAL\tERROR")
	for _, r := range rows {
		if r.Err != nil {
			fmt.Fprintf(tw, "%s\t%s\t-\t-\t-\t-\t-\t%v\n", r.Strategy, r.Symbol, r.Err)
			continue
		}
		m := r.Metrics
		fmt.Fprintf(tw, "%s\t%s\t%.2f%%\t%.3f\t%.2f%%\t%d\t%.2f\t\n",
			r.Strategy, r.Symbol, m.TotalReturn*100, m.SharpeRatio, m.MaxDrawdown, m.TotalTrades, r.Final)
	}
	tw.Flush()
}

// writeJSON writes v to path, or to w when path is "-"
func writeJSON(w io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "-" {
		_, err = w.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// parseParams turns --param key=value flags into strategy parameters
func parseParams(flags map[string]string) map[string]any {
	params := make(map[string]any, len(flags))
	for k, v := range flags {
		params[k] = v
	}
	return params
}
