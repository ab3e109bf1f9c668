package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/bol-intake/internal/export"
	"github.com/joseph-ayodele/bol-intake/internal/ocr"
	"github.com/joseph-ayodele/bol-intake/internal/source"
)

var (
	exportOut       string
	exportMode      string
	exportNoHistory bool
)

var exportCmd = &cobra.Command{
	Use:   "export <document-or-dir>...",
	Short: "Extract documents and write one spreadsheet row per job",
	Long: `Export extracts every document given (directories are walked for supported documents,
skipping hidden entries) and writes the mapped jobs, one row per serial number, to an XLSX
workbook.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "jobs.xlsx", "workbook to write")
	exportCmd.Flags().StringVarP(&exportMode, "mode", "m", "auto", "text source: text, ocr or auto")
	exportCmd.Flags().BoolVar(&exportNoHistory, "no-history", false, "do not record extraction runs")
}

func expandInputs(args []string) ([]string, error) {
	var docs []string
	for _, arg := range args {
		if strings.HasPrefix(arg, "s3://") {
			docs = append(docs, arg)
			continue
		}
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			docs = append(docs, arg)
			continue
		}
		found, err := source.WalkDir(arg, true)
		if err != nil {
			return nil, err
		}
		docs = append(docs, found...)
	}
	return docs, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	mode, err := ocr.ParseMode(exportMode)
	if err != nil {
		return err
	}
	inputs, err := expandInputs(args)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no documents found")
	}

	a, err := buildApp(ctx, exportNoHistory)
	if err != nil {
		return err
	}
	defer a.Close()

	docs := make([]export.Document, 0, len(inputs))
	for _, in := range inputs {
		out, err := a.Processor.ProcessDocument(ctx, in, mode, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: skipped: %v\n", in, err)
			continue
		}
		docs = append(docs, export.Document{SourcePath: in, Raw: out.Raw})
	}

	data, err := a.Export.ExportJobsXLSX(ctx, docs)
	if err != nil {
		return err
	}
	if err := os.WriteFile(exportOut, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", exportOut, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d document(s) to %s\n", len(docs), exportOut)
	return nil
}
