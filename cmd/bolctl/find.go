package main

import (
	"github.com/spf13/cobra"
)

var findCmd = &cobra.Command{
	Use:   "find <order-number>",
	Short: "List record-store jobs for a client order number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.Close()
		store, err := a.RecordStore()
		if err != nil {
			return err
		}
		recs, err := store.FindByOrderNumber(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), recs)
	},
}
