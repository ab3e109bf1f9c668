package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/bol-intake/constants"
	"github.com/joseph-ayodele/bol-intake/internal/common"
	"github.com/joseph-ayodele/bol-intake/internal/extract"
	"github.com/joseph-ayodele/bol-intake/internal/mapping"
	"github.com/joseph-ayodele/bol-intake/internal/metrics"
	"github.com/joseph-ayodele/bol-intake/internal/ocr"
	"github.com/joseph-ayodele/bol-intake/internal/repository"
)

// Outcome is everything one document produced. Jobs are Draft records ready for review.
type Outcome struct {
	RunID       uuid.UUID // uuid.Nil when no history store is configured
	Source      string
	ContentHash string
	Text        ocr.Result
	Raw         extract.RawRecord
	Jobs        []*mapping.JobRecord
	// PreviousRun is the latest earlier run over the same content, if any.
	PreviousRun *uuid.UUID
}

// Processor coordinates text extraction then field extraction and mapping, recording each
// document as an extraction run.
type Processor struct {
	Logger *slog.Logger
	Text   *TextStage
	Fields *FieldStage
	Runs   repository.ExtractRunRepository // optional
}

func NewProcessor(logger *slog.Logger, text *TextStage, fields *FieldStage, runs repository.ExtractRunRepository) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Text: text, Fields: fields, Runs: runs}
}

// ProcessDocument runs one document through the pipeline. An extraction failure yields no
// partial record.
func (p *Processor) ProcessDocument(ctx context.Context, uri string, mode ocr.Mode, progress ocr.ProgressFunc) (*Outcome, error) {
	timer := metrics.NewTimer()

	doc, err := p.Text.Open(ctx, uri)
	if err != nil {
		p.Logger.Error("processor.open.failed", "source", uri, "err", err)
		return nil, err
	}
	defer doc.Close()

	out := &Outcome{Source: uri, ContentHash: doc.HashHex}
	if p.Runs != nil {
		if prev, err := p.Runs.FindLatestByHash(ctx, doc.HashHex); err == nil {
			out.PreviousRun = &prev.ID
			p.Logger.Warn("processor.duplicate_document", "source", uri, "previous_run", prev.ID, "previous_status", prev.Status)
		} else if !errors.Is(err, common.ErrNotFound) {
			p.Logger.Warn("processor.history_lookup_failed", "source", uri, "err", err)
		}
		run, err := p.Runs.Start(ctx, uri, doc.HashHex)
		if err != nil {
			return nil, err
		}
		out.RunID = run.ID
		ctx = common.WithRunID(ctx, run.ID.String())
	}

	// 1) text layer or OCR
	text, err := p.Text.Run(ctx, doc, mode, progress)
	if err != nil {
		p.fail(ctx, out.RunID, string(text.Method), err)
		p.Logger.Error("processor.text.failed", "source", uri, "run_id", out.RunID, "err", err)
		return nil, err
	}
	out.Text = text
	p.Logger.Info("processor.text.ok",
		"source", uri,
		"run_id", out.RunID,
		"method", text.Method,
		"pages", text.PageCount,
		"words", text.WordCount,
		"confidence", text.Confidence,
	)

	// 2) fields and mapping
	raw, jobs, err := p.Fields.Run(text.FullText)
	if err != nil {
		p.fail(ctx, out.RunID, string(text.Method), err)
		p.Logger.Error("processor.fields.failed", "source", uri, "run_id", out.RunID, "err", err)
		return nil, err
	}
	out.Raw, out.Jobs = raw, jobs

	if out.RunID != uuid.Nil {
		err := p.Runs.FinishSuccess(ctx, out.RunID, repository.RunResult{
			Method:          string(text.Method),
			PageCount:       text.PageCount,
			WordCount:       text.WordCount,
			TextConfidence:  text.Confidence,
			FieldConfidence: raw.Confidence,
			OrderNumber:     raw.OrderNumber,
			SerialCount:     len(raw.AllSerialNumbers),
			Extracted:       raw,
		})
		if err != nil {
			return nil, err
		}
	}
	metrics.RecordExtraction(string(text.Method), metrics.StatusOK, text.PageCount, raw.Confidence, timer.Duration())
	p.Logger.Info("processor.fields.ok",
		"source", uri,
		"run_id", out.RunID,
		"order_number", raw.OrderNumber,
		"client", raw.ClientType,
		"jobs", len(jobs),
		"confidence", raw.Confidence,
	)
	return out, nil
}

func (p *Processor) fail(ctx context.Context, runID uuid.UUID, method string, cause error) {
	if method == "" {
		method = string(constants.MethodText)
	}
	metrics.RecordExtraction(method, metrics.StatusFailed, 0, 0, 0)
	if runID == uuid.Nil {
		return
	}
	if err := p.Runs.FinishFailure(ctx, runID, cause.Error()); err != nil {
		p.Logger.Warn("processor.history_finish_failed", "run_id", runID, "err", err)
	}
}
