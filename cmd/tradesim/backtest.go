package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/tradesim/internal/app"
)

var (
	backtestData   string
	backtestSymbol string
	backtestParams map[string]string
	backtestJSON   string
)

var backtestCmd = &cobra.Command{
	Use:   "backtest [strategy]",
	Short: "Run backtest on a strategy",
	Long:  "Run a strategy against a CSV or Parquet bar file and show performance statistics",
	Args:  cobra.ExactArgs(1),
	RunE:  runBacktest,
}

func init() {
	backtestCmd.Flags().StringVar(&backtestData, "data", "", "CSV or Parquet bar file (required)")
	backtestCmd.Flags().StringVar(&backtestSymbol, "symbol", "", "Symbol to select from a multi-symbol file")
	backtestCmd.Flags().StringToStringVarP(&backtestParams, "param", "p", nil, "Strategy parameter override key=value")
	backtestCmd.Flags().StringVar(&backtestJSON, "json", "", "Write the full result as JSON to a file, - for stdout")

	backtestCmd.MarkFlagRequired("data")

	rootCmd.AddCommand(backtestCmd)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	a, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	out, err := a.Run(context.Background(), app.Request{
		DataPath: backtestData,
		Symbol:   backtestSymbol,
		Strategy: args[0],
		Params:   parseParams(backtestParams),
	})
	if err != nil {
		log.Error("backtest failed", zap.String("strategy", args[0]), zap.Error(err))
		return err
	}

	if backtestJSON != "" {
		if err := writeJSON(cmd.OutOrStdout(), backtestJSON, out.Result); err != nil {
			return err
		}
	}
	if backtestJSON != "-" {
		printSummary(cmd.OutOrStdout(), out.Result)
		printAlerts(cmd.OutOrStdout(), out.Alerts)
		if out.ArchivePath != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Archived: %s\n", out.ArchivePath)
		}
	}

	return a.Flush()
}
