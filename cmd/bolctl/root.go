package main

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/bol-intake/internal/app"
	"github.com/joseph-ayodele/bol-intake/internal/common"
)

var (
	cfg      *common.Config
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "bolctl",
	Short: "Extract bill-of-lading documents and submit them as jobs",
	Long: `bolctl reads bill-of-lading PDFs (local paths or s3:// URIs), extracts the shipment
fields, and creates jobs in the FileMaker record store after review.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = common.LoadConfig()
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		return cfg.Validate()
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		log.Fatal(err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(historyCmd)
}

// buildApp wires the components; logs go to stderr so stdout stays machine-readable.
func buildApp(ctx context.Context, noHistory bool) (*app.App, error) {
	logger := common.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	return app.Build(ctx, cfg, logger, app.Options{NoHistory: noHistory})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
