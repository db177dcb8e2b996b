package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newthinker/tradesim/internal/data"
)

var convertSymbol string

var convertCmd = &cobra.Command{
	Use:   "convert [input] [output.parquet]",
	Short: "Convert a bar file to Parquet",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		table, err := data.NewLoader(log.Named("data")).Load(args[0], convertSymbol)
		if err != nil {
			return err
		}
		if err := data.WriteParquet(args[1], table); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d bars of %s to %s\n", table.Len(), table.Symbol(), args[1])
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertSymbol, "symbol", "", "Symbol to select from a multi-symbol file")
	rootCmd.AddCommand(convertCmd)
}
