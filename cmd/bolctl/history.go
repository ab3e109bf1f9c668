package main

import (
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent extraction runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()
		runs, err := a.Runs.ListRecent(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), runs)
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to list")
}
