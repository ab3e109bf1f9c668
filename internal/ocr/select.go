package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/bol-intake/constants"
	"github.com/joseph-ayodele/bol-intake/internal/common"
)

// NeedsOCR reports whether a text layer is too sparse to be the real document content.
func NeedsOCR(wordCount, minWords int) bool {
	return wordCount < minWords
}

// Extract obtains a document's text. In auto mode a PDF's text layer is tried first and,
// when it holds fewer than MinTextWords words, OCR replaces it entirely; the two are never
// combined. Images always go through OCR and .txt files are read as-is.
func (e *Extractor) Extract(ctx context.Context, path string, mode Mode, progress ProgressFunc) (Result, error) {
	start := time.Now()
	if progress == nil {
		progress = func(float64) {}
	}
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("starting text extraction", "path", path, "mode", mode, "ext", ext)

	var (
		res Result
		err error
	)
	switch constants.MapExtToFormat(ext) {
	case constants.TXT:
		res, err = e.extractPlain(path)
	case constants.IMAGE:
		if mode == ModeText {
			return Result{}, common.NewExtractionError("images have no text layer", ErrUnsupportedFormat)
		}
		res, err = e.extractImage(ctx, path, progress)
	case constants.PDF:
		res, err = e.extractPDF(ctx, path, mode, progress)
	default:
		e.logger.Error("unsupported document extension", "extension", ext)
		return Result{}, common.NewExtractionError(fmt.Sprintf("unsupported extension %q", ext), ErrUnsupportedFormat)
	}
	if err != nil {
		return res, err
	}
	res.Duration = time.Since(start)
	progress(1)
	e.logger.Info("text extracted",
		"path", path,
		"method", res.Method,
		"pages", res.PageCount,
		"words", res.WordCount,
		"confidence", res.Confidence,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (e *Extractor) extractPDF(ctx context.Context, path string, mode Mode, progress ProgressFunc) (Result, error) {
	if mode == ModeOCR {
		return e.ocrPDF(ctx, path, progress)
	}

	text, pages, err := e.text.ExtractText(path)
	if err != nil {
		if mode == ModeText || !e.cfg.EnableOCR {
			return Result{}, common.NewExtractionError("could not read pdf text layer", err)
		}
		e.logger.Warn("text layer unreadable, falling back to ocr", "path", path, "error", err)
		return e.ocrPDF(ctx, path, progress)
	}
	text = Normalize(text)
	res := Result{
		FullText:   text,
		Method:     constants.MethodText,
		Confidence: TextLayerConfidence,
		PageCount:  pages,
		WordCount:  countWords(text),
	}
	if mode == ModeText || !NeedsOCR(res.WordCount, e.cfg.MinTextWords) {
		return res, nil
	}
	if !e.cfg.EnableOCR {
		res.Warnings = append(res.Warnings, fmt.Sprintf("text layer has %d words and ocr is disabled", res.WordCount))
		return res, nil
	}
	e.logger.Info("text layer too sparse, using ocr", "path", path, "words", res.WordCount, "min_words", e.cfg.MinTextWords)
	return e.ocrPDF(ctx, path, progress)
}

func (e *Extractor) extractPlain(path string) (Result, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Result{}, common.NewExtractionError("could not read text document", err)
	}
	text := Normalize(string(b))
	return Result{
		FullText:   text,
		Method:     constants.MethodText,
		Confidence: TextLayerConfidence,
		PageCount:  1,
		WordCount:  countWords(text),
	}, nil
}
