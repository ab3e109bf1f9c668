package extract

import (
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joseph-ayodele/bol-intake/internal/common"
	"github.com/joseph-ayodele/bol-intake/internal/patterns"
)

// ErrNotText is returned for input that cannot be document text (invalid UTF-8, NUL bytes).
var ErrNotText = errors.New("input is not text")

// Extractor turns raw document text into a RawRecord. It is stateless apart from its clock
// and safe for concurrent use.
type Extractor struct {
	lib    *patterns.Library
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Extractor)

// WithClock replaces time.Now for the job-type date comparison.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

func WithLibrary(lib *patterns.Library) Option {
	return func(e *Extractor) { e.lib = lib }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) { e.logger = logger }
}

func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, o := range opts {
		o(e)
	}
	if e.lib == nil {
		e.lib = patterns.Default()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Extract never fails on missing fields; any text, including empty, yields a record with
// whatever was found. Only non-text input is an error.
func (e *Extractor) Extract(text string) (RawRecord, error) {
	if !utf8.ValidString(text) || strings.ContainsRune(text, '\x00') {
		return RawRecord{}, common.NewExtractionError("document text is not readable", ErrNotText)
	}
	lib := e.lib

	var r RawRecord
	if o, ok := e.parseOrigin(text); ok {
		r.CustomerName = o.Company
		r.Address = o.Address
		r.Suite = o.Suite
		r.City = o.City
		r.State = o.State
		r.ZipCode = o.Zip
	}

	r.OrderNumber, _ = lib.ExtractField(text, lib.OrderNumber, false)
	r.TrackingNumber, _ = lib.ExtractField(text, lib.TrackingNumber, false)

	r.AllSerialNumbers = filterSerials(lib.ExtractAllMatches(text, lib.SerialNumber, false))
	if len(r.AllSerialNumbers) > 0 {
		r.SerialNumber = r.AllSerialNumbers[0]
	}

	r.Phone, _ = lib.ExtractField(text, lib.Phone, false)
	r.Email, _ = lib.ExtractField(text, lib.Email, false)
	r.ContactName, _ = lib.ExtractField(text, lib.ContactName, false)
	r.DueDate, _ = lib.ExtractField(text, lib.DueDate, false)
	r.ProductDescription = extractProduct(text)
	r.Quantity, _ = lib.ExtractField(text, lib.Quantity, false)
	r.Weight, _ = lib.ExtractField(text, lib.Weight, false)
	r.CallAhead, _ = lib.ExtractField(text, lib.CallAhead, true)
	r.SpecialInstructions = strings.Join(lib.ExtractAllMatches(text, lib.SpecialInstructions, true), "; ")

	r.JobType = inferJobType(text, e.now())
	r.ClientType = e.detectClient(text)
	r.Confidence = Score(r)

	e.logger.Debug("fields extracted",
		"order_number", r.OrderNumber,
		"serials", len(r.AllSerialNumbers),
		"client_type", r.ClientType,
		"job_type", r.JobType,
		"confidence", r.Confidence,
	)
	return r, nil
}

// filterSerials drops header words and short fragments the serial patterns can pick up.
func filterSerials(candidates []string) []string {
	out := make([]string, 0, len(candidates))
	for _, sn := range candidates {
		if strings.Contains(strings.ToLower(sn), "number") || len(sn) <= 3 {
			continue
		}
		out = append(out, sn)
	}
	return out
}
