package pipeline

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/bol-intake/internal/common"
	"github.com/joseph-ayodele/bol-intake/internal/ocr"
	"github.com/joseph-ayodele/bol-intake/internal/source"
)

// TextExtractor turns a local document into text.
type TextExtractor interface {
	Extract(ctx context.Context, path string, mode ocr.Mode, progress ocr.ProgressFunc) (ocr.Result, error)
}

// DocumentOpener resolves a local path or object URI to a local document.
type DocumentOpener interface {
	Open(ctx context.Context, uri string) (*source.Document, error)
}

type TextStage struct {
	Source        DocumentOpener
	TextExtractor TextExtractor
	Logger        *slog.Logger
}

func NewTextStage(src DocumentOpener, tx TextExtractor, logger *slog.Logger) *TextStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextStage{Source: src, TextExtractor: tx, Logger: logger}
}

// Open fetches and size-checks the document. The caller must Close it.
func (s *TextStage) Open(ctx context.Context, uri string) (*source.Document, error) {
	doc, err := s.Source.Open(ctx, uri)
	if err != nil {
		return nil, common.WrapError(err, "open document")
	}
	return doc, nil
}

// Run extracts text from an opened document.
func (s *TextStage) Run(ctx context.Context, doc *source.Document, mode ocr.Mode, progress ocr.ProgressFunc) (ocr.Result, error) {
	res, err := s.TextExtractor.Extract(ctx, doc.Path, mode, progress)
	if err != nil {
		return res, err
	}
	for _, w := range res.Warnings {
		s.Logger.Warn("pipeline.text.warning", "document", doc.Name, "run_id", common.RunIDFromContext(ctx), "warning", w)
	}
	return res, nil
}
