package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/bol-intake/constants"
	"github.com/joseph-ayodele/bol-intake/internal/common"
)

// ocrPDF rasterizes every page and runs tesseract on each, reporting progress per page.
func (e *Extractor) ocrPDF(ctx context.Context, path string, progress ProgressFunc) (Result, error) {
	if !e.cfg.EnableOCR {
		return Result{}, common.NewExtractionError("document needs ocr", ErrOCRDisabled)
	}
	tmpDir, err := os.MkdirTemp("", "bol-pp-*")
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			e.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", err)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return Result{Warnings: []string{string(errb)}}, common.NewExtractionError("could not rasterize pdf", err)
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return Result{Warnings: []string{"pdftoppm produced no images"}}, common.NewExtractionError("no pages rendered", nil)
	}

	var (
		b     strings.Builder
		warns []string
		confs []float64
	)
	for i, img := range matches {
		txt, conf, w, err := e.ocrImage(ctx, img)
		warns = append(warns, w...)
		if err != nil {
			warns = append(warns, fmt.Sprintf("page %d: %v", i+1, err))
		} else {
			if b.Len() > 0 {
				b.WriteString("\n\f\n")
			}
			b.WriteString(txt)
			confs = append(confs, conf)
		}
		progress(float64(i+1) / float64(len(matches)))
	}
	if len(confs) == 0 {
		return Result{Warnings: warns}, common.NewExtractionError("ocr failed on every page", nil)
	}

	text := Normalize(b.String())
	return Result{
		FullText:   text,
		Method:     constants.MethodOCR,
		Confidence: mean(confs),
		PageCount:  len(matches),
		WordCount:  countWords(text),
		Warnings:   warns,
	}, nil
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
