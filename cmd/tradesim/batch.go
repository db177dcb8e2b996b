package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/tradesim/internal/app"
)

var (
	batchStrategies []string
	batchSymbol     string
	batchJSON       string
)

var batchCmd = &cobra.Command{
	Use:   "batch [data files...]",
	Short: "Run every strategy against every data file",
	Long: `Run the cross product of strategies and bar files in parallel, using the
configured strategy parameters and batch.parallelism.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringSliceVarP(&batchStrategies, "strategy", "s", nil, "Strategies to run (default all)")
	batchCmd.Flags().StringVar(&batchSymbol, "symbol", "", "Symbol to select from multi-symbol files")
	batchCmd.Flags().StringVar(&batchJSON, "json", "", "Write all results as JSON to a file, - for stdout")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	a, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	names := batchStrategies
	if len(names) == 0 {
		for _, info := range a.Strategies() {
			names = append(names, info.Name)
		}
	}

	var reqs []app.Request
	for _, path := range args {
		for _, name := range names {
			reqs = append(reqs, app.Request{DataPath: path, Symbol: batchSymbol, Strategy: name})
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcomes, batchErr := a.RunBatch(ctx, reqs)

	rows := make([]batchRow, len(outcomes))
	failed := 0
	for i, out := range outcomes {
		rows[i] = batchRow{
			Strategy: out.Request.Strategy,
			Symbol:   strings.TrimSuffix(filepath.Base(out.Request.DataPath), filepath.Ext(out.Request.DataPath)),
			Err:      out.Err,
		}
		if out.Result != nil {
			rows[i].Symbol = out.Result.Symbol
			rows[i].Metrics = out.Result.Metrics
			rows[i].Final = out.Result.FinalPortfolioValue
		}
		if out.Err != nil {
			failed++
			log.Warn("batch request failed",
				zap.String("strategy", out.Request.Strategy),
				zap.String("data", out.Request.DataPath),
				zap.Error(out.Err),
			)
		}
	}

	if batchJSON != "" {
		var results []any
		for _, out := range outcomes {
			if out.Result != nil {
				results = append(results, out.Result)
			}
		}
		if err := writeJSON(cmd.OutOrStdout(), batchJSON, results); err != nil {
			return err
		}
	}
	if batchJSON != "-" {
		printBatch(cmd.OutOrStdout(), rows)
		for _, out := range outcomes {
			printAlerts(cmd.OutOrStdout(), out.Alerts)
		}
	}

	if err := a.Flush(); err != nil {
		return err
	}
	if batchErr != nil {
		return fmt.Errorf("batch interrupted: %w", batchErr)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d backtests failed", failed, len(outcomes))
	}
	return nil
}
