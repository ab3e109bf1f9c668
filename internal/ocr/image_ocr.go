package ocr

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/bol-intake/constants"
	"github.com/joseph-ayodele/bol-intake/internal/common"
)

func (e *Extractor) extractImage(ctx context.Context, path string, progress ProgressFunc) (Result, error) {
	if !e.cfg.EnableOCR {
		return Result{}, common.NewExtractionError("image documents need ocr", ErrOCRDisabled)
	}
	txt, conf, warn, err := e.ocrImage(ctx, path)
	if err != nil {
		return Result{Warnings: warn}, common.NewExtractionError("could not ocr image", err)
	}
	progress(1)
	txt = Normalize(txt)
	return Result{
		FullText:   txt,
		Method:     constants.MethodOCR,
		Confidence: conf,
		PageCount:  1,
		WordCount:  countWords(txt),
		Warnings:   warn,
	}, nil
}

// ocrImage returns the page text and a 0..100 confidence: tesseract's mean word confidence
// when TSV scoring is enabled and usable, the text heuristic otherwise.
func (e *Extractor) ocrImage(ctx context.Context, path string) (string, float64, []string, error) {
	txt, warn, err := e.tesseractOCR(ctx, path)
	if err != nil {
		return "", 0, warn, err
	}
	if e.cfg.EnableTSVConfidence {
		c, err := e.tesseractTSVConfidence(ctx, path)
		if err == nil && c > 0 {
			return txt, c, warn, nil
		}
		if err != nil {
			warn = append(warn, err.Error())
		}
	}
	return txt, heuristicConfidence(txt), warn, nil
}

func (e *Extractor) tesseractArgs(path string) []string {
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	return args
}

func (e *Extractor) tesseractOCR(ctx context.Context, path string) (string, []string, error) {
	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, e.tesseractArgs(path)...)
	if err != nil {
		return "", []string{string(errb)}, fmt.Errorf("tesseract: %w", err)
	}
	return reBoxNoise.ReplaceAllString(string(out), ""), nil, nil
}

// tesseractTSVConfidence runs tesseract in TSV mode and returns the mean word confidence (0..100).
func (e *Extractor) tesseractTSVConfidence(ctx context.Context, path string) (float64, error) {
	args := append(e.tesseractArgs(path), "tsv")
	out, _, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return 0, fmt.Errorf("tesseract TSV: %w", err)
	}
	return meanTSVConfidence(string(out)), nil
}

// meanTSVConfidence averages the conf column, skipping the header and non-word rows (-1).
func meanTSVConfidence(tsv string) float64 {
	var sum, n float64
	for i, ln := range strings.Split(tsv, "\n") {
		if i == 0 || len(ln) == 0 {
			continue
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		confStr := strings.TrimSpace(cols[10])
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil && v >= 0 {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / n
}
