package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/bol-intake/internal/server"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check the record store and the history database",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := buildApp(ctx, false)
		if err != nil {
			return err
		}
		defer a.Close()

		var errs []error
		if err := server.PingDB(ctx, a.DB, a.Logger, 5*time.Second); err != nil {
			errs = append(errs, fmt.Errorf("history: %w", err))
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "history: ok")
		}

		store, err := a.RecordStore()
		if err == nil {
			err = store.Ping(ctx)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("record store: %w", err))
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "record store: ok")
		}
		return errors.Join(errs...)
	},
}
