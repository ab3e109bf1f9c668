package ocr

import (
	"errors"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/bol-intake/constants"
	"github.com/joseph-ayodele/bol-intake/internal/common"
)

// TextLayerConfidence is reported for text decoded from a PDF's embedded text layer.
const TextLayerConfidence = 95.0

var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrOCRDisabled       = errors.New("ocr is disabled")
)

type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for scanned PDFs, default 300
	MaxPages      int    // 0 = no limit

	TessdataDir         string
	EnableTSVConfidence bool

	// MinTextWords is the text-layer word count below which auto mode switches to OCR.
	MinTextWords int
	EnableOCR    bool
}

// ConfigFrom builds the extractor config from application settings.
func ConfigFrom(cfg common.OCRConfig, enableOCR bool) Config {
	return Config{
		Pdftoppm:            cfg.Pdftoppm,
		Tesseract:           cfg.Tesseract,
		TesseractLang:       cfg.TesseractLang,
		DPI:                 cfg.DPI,
		MaxPages:            cfg.MaxPages,
		TessdataDir:         cfg.TessdataDir,
		EnableTSVConfidence: cfg.EnableTSVConfidence,
		MinTextWords:        cfg.MinTextWords,
		EnableOCR:           enableOCR,
	}
}

// Mode selects how text is obtained from a document.
type Mode string

const (
	ModeText Mode = "text"
	ModeOCR  Mode = "ocr"
	ModeAuto Mode = "auto"
)

// ParseMode accepts "text", "ocr" or "auto"; empty means auto.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeText, ModeOCR:
		return Mode(s), nil
	default:
		return "", common.InvalidArgumentErrorf("unknown extraction mode %q", s)
	}
}

// ProgressFunc receives the completed fraction (0..1) of a long extraction.
type ProgressFunc func(fraction float64)

type Result struct {
	FullText   string
	Method     constants.ExtractionMethod
	Confidence float64 // 0..100
	PageCount  int
	WordCount  int
	Duration   time.Duration
	Warnings   []string
}

type Extractor struct {
	cfg    Config
	runner Runner
	text   TextLayer
	logger *slog.Logger
}

type Option func(*Extractor)

// WithRunner replaces the exec runner, mainly for tests.
func WithRunner(r Runner) Option {
	return func(e *Extractor) { e.runner = r }
}

func WithTextLayer(t TextLayer) Option {
	return func(e *Extractor) { e.text = t }
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.MinTextWords <= 0 {
		cfg.MinTextWords = 50
	}
	e := &Extractor{cfg: cfg, runner: execRunner{logger: logger}, text: pdfTextLayer{}, logger: logger}
	for _, o := range opts {
		o(e)
	}
	return e
}
