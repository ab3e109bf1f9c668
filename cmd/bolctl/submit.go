package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/bol-intake/internal/mapping"
	"github.com/joseph-ayodele/bol-intake/internal/ocr"
	"github.com/joseph-ayodele/bol-intake/internal/review"
)

var (
	submitMode           string
	submitSerial         string
	submitDueDate        string
	submitSet            []string
	submitDryRun         bool
	submitAllowDuplicate bool
)

var submitCmd = &cobra.Command{
	Use:   "submit <document>",
	Short: "Extract a document and create its jobs in the record store",
	Long: `Submit extracts the document, applies --set edits and the requested due date to each
job, validates, and creates one record-store job per serial number. Submission stops when
the order number already exists in the record store unless --allow-duplicate is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVarP(&submitMode, "mode", "m", "auto", "text source: text, ocr or auto")
	submitCmd.Flags().StringVar(&submitSerial, "serial", "", "only submit the job for this serial number")
	submitCmd.Flags().StringVar(&submitDueDate, "due-date", "", "requested due date (M/D) added to the schedule notes")
	submitCmd.Flags().StringArrayVar(&submitSet, "set", nil, "override a job field, as field=value (repeatable)")
	submitCmd.Flags().BoolVar(&submitDryRun, "dry-run", false, "validate and print the payload without submitting")
	submitCmd.Flags().BoolVar(&submitAllowDuplicate, "allow-duplicate", false, "submit even when the order number already exists")
}

type submitView struct {
	SerialNumber          string            `json:"serial_number,omitempty"`
	State                 string            `json:"state"`
	RecordID              string            `json:"record_id,omitempty"`
	JobNumber             string            `json:"job_number,omitempty"`
	ConfirmationAvailable bool              `json:"confirmation_available"`
	Payload               map[string]string `json:"payload,omitempty"`
	Violations            []string          `json:"violations,omitempty"`
	Error                 string            `json:"error,omitempty"`
}

func parseEdits(pairs []string) ([][2]string, error) {
	edits := make([][2]string, 0, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid --set %q: want field=value", p)
		}
		edits = append(edits, [2]string{strings.TrimSpace(name), value})
	}
	return edits, nil
}

func selectJobs(jobs []*mapping.JobRecord, serial string) []*mapping.JobRecord {
	if serial == "" {
		return jobs
	}
	var out []*mapping.JobRecord
	for _, j := range jobs {
		if j.ProductSerialNumber == serial {
			out = append(out, j)
		}
	}
	return out
}

func runSubmit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	mode, err := ocr.ParseMode(submitMode)
	if err != nil {
		return err
	}
	edits, err := parseEdits(submitSet)
	if err != nil {
		return err
	}

	a, err := buildApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.Processor.ProcessDocument(ctx, args[0], mode, progressPrinter(args[0]))
	if err != nil {
		return err
	}
	jobs := selectJobs(out.Jobs, submitSerial)
	if len(jobs) == 0 {
		return fmt.Errorf("no job with serial number %q in %s", submitSerial, args[0])
	}

	store, err := a.RecordStore()
	if err != nil && !submitDryRun {
		return err
	}
	if store != nil && !submitDryRun && !submitAllowDuplicate && out.Raw.OrderNumber != "" {
		existing, err := store.FindByOrderNumber(ctx, out.Raw.OrderNumber)
		if err != nil {
			return fmt.Errorf("duplicate check: %w", err)
		}
		if len(existing) > 0 {
			return fmt.Errorf("order %s already has %d job(s) in the record store; use --allow-duplicate to submit anyway",
				out.Raw.OrderNumber, len(existing))
		}
	}

	var failed int
	for _, job := range jobs {
		opts := []review.Option{review.WithLogger(a.Logger)}
		if out.RunID != uuid.Nil {
			opts = append(opts, review.WithRunID(out.RunID))
		}
		if a.Submissions != nil {
			opts = append(opts, review.WithRecorder(a.Submissions))
		}
		rv := review.New(job, opts...)
		for _, e := range edits {
			if err := rv.Edit(e[0], e[1]); err != nil {
				return fmt.Errorf("--set %s: %w", e[0], err)
			}
		}
		if submitDueDate != "" {
			if err := rv.SetRequestedDueDate(submitDueDate); err != nil {
				return err
			}
		}

		view := submitView{SerialNumber: job.ProductSerialNumber}
		if submitDryRun {
			res, verr := rv.Validate()
			payload := mapping.Normalize(rv.Record()).FieldData()
			view.State = string(rv.State())
			view.Payload = payload
			view.Violations = res.Messages()
			if verr == nil {
				if err := mapping.CheckPayload(payload); err != nil {
					view.Error = err.Error()
				}
			}
		} else {
			created, err := rv.Submit(ctx, store)
			view.State = string(rv.State())
			view.Violations = rv.Validation().Messages()
			if err != nil {
				view.Error = err.Error()
			} else {
				view.RecordID = created.RecordID
				view.JobNumber = created.JobNumber
				view.ConfirmationAvailable = created.ConfirmationAvailable
			}
		}
		if view.Error != "" || len(view.Violations) > 0 {
			failed++
		}
		if err := printJSON(cmd.OutOrStdout(), view); err != nil {
			return err
		}
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d jobs not accepted\n", failed, len(jobs))
		return errors.New("submission incomplete")
	}
	return nil
}
