package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/bol-intake/internal/extract"
	"github.com/joseph-ayodele/bol-intake/internal/mapping"
	"github.com/joseph-ayodele/bol-intake/internal/ocr"
	"github.com/joseph-ayodele/bol-intake/internal/pipeline"
	"github.com/joseph-ayodele/bol-intake/internal/server"
)

var (
	extractMode      string
	extractServer    string
	extractNoHistory bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <document>...",
	Short: "Extract job fields from bill-of-lading documents",
	Long: `Extract runs each document through text extraction (text layer, OCR or auto) and the
field extractor, and prints the raw fields and the mapped jobs as JSON. With --server the
work is done by a running bold daemon instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractMode, "mode", "m", "auto", "text source: text, ocr or auto")
	extractCmd.Flags().StringVar(&extractServer, "server", "", "gRPC address of a bold daemon")
	extractCmd.Flags().BoolVar(&extractNoHistory, "no-history", false, "do not record extraction runs")
}

type jobView struct {
	Fields     map[string]string `json:"fields"`
	Valid      bool              `json:"valid"`
	Violations []string          `json:"violations,omitempty"`
}

type extractView struct {
	Source         string            `json:"source"`
	RunID          *uuid.UUID        `json:"run_id,omitempty"`
	PreviousRunID  *uuid.UUID        `json:"previous_run_id,omitempty"`
	Method         string            `json:"method"`
	Pages          int               `json:"pages"`
	TextConfidence float64           `json:"text_confidence"`
	Confidence     int               `json:"confidence"`
	Raw            extract.RawRecord `json:"raw"`
	Jobs           []jobView         `json:"jobs"`
}

func newExtractView(out *pipeline.Outcome) extractView {
	v := extractView{
		Source:         out.Source,
		PreviousRunID:  out.PreviousRun,
		Method:         string(out.Text.Method),
		Pages:          out.Text.PageCount,
		TextConfidence: out.Text.Confidence,
		Confidence:     out.Raw.Confidence,
		Raw:            out.Raw,
	}
	if out.RunID != uuid.Nil {
		id := out.RunID
		v.RunID = &id
	}
	for _, job := range out.Jobs {
		res := mapping.Validate(job)
		v.Jobs = append(v.Jobs, jobView{Fields: job.FieldData(), Valid: res.Valid, Violations: res.Messages()})
	}
	return v
}

func runExtract(cmd *cobra.Command, args []string) error {
	mode, err := ocr.ParseMode(extractMode)
	if err != nil {
		return err
	}
	if extractServer != "" {
		return extractRemote(cmd.Context(), args, mode)
	}

	a, err := buildApp(cmd.Context(), extractNoHistory)
	if err != nil {
		return err
	}
	defer a.Close()

	var failed int
	for _, doc := range args {
		out, err := a.Processor.ProcessDocument(cmd.Context(), doc, mode, progressPrinter(doc))
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s: %v\n", doc, err)
			continue
		}
		if err := printJSON(cmd.OutOrStdout(), newExtractView(out)); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(args))
	}
	return nil
}

func progressPrinter(doc string) ocr.ProgressFunc {
	return func(fraction float64) {
		fmt.Fprintf(os.Stderr, "%s: ocr %3.0f%%\n", doc, fraction*100)
	}
}

func extractRemote(ctx context.Context, docs []string, mode ocr.Mode) error {
	conn, err := grpc.NewClient(extractServer, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("dial %s: %w", extractServer, err)
	}
	defer conn.Close()
	client := server.NewIntakeClient(conn)

	marshal := protojson.MarshalOptions{Multiline: true, Indent: "  "}
	for _, doc := range docs {
		req, err := structpb.NewStruct(map[string]any{"source": doc, "mode": string(mode)})
		if err != nil {
			return err
		}
		callCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		resp, err := client.Extract(callCtx, req)
		cancel()
		if err != nil {
			return fmt.Errorf("%s: %w", doc, err)
		}
		b, err := marshal.Marshal(resp)
		if err != nil {
			return err
		}
		fmt.Println(string(b))
	}
	return nil
}
