package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the available strategies",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tDESCRIPTION")
		for _, info := range a.Strategies() {
			fmt.Fprintf(tw, "%s\t%s\n", info.Name, info.Description)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}
