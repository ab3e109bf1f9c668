package pipeline

import (
	"log/slog"

	"github.com/joseph-ayodele/bol-intake/internal/extract"
	"github.com/joseph-ayodele/bol-intake/internal/mapping"
)

// FieldStage turns document text into mapped job records, one per serial number.
type FieldStage struct {
	Extractor extract.FieldExtractor
	Mapper    *mapping.Mapper
	Logger    *slog.Logger
}

func NewFieldStage(fe extract.FieldExtractor, mapper *mapping.Mapper, logger *slog.Logger) *FieldStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &FieldStage{Extractor: fe, Mapper: mapper, Logger: logger}
}

func (s *FieldStage) Run(text string) (extract.RawRecord, []*mapping.JobRecord, error) {
	raw, err := s.Extractor.Extract(text)
	if err != nil {
		return extract.RawRecord{}, nil, err
	}
	split := extract.SplitBySerial(raw)
	jobs := make([]*mapping.JobRecord, 0, len(split))
	for _, r := range split {
		jobs = append(jobs, s.Mapper.Map(r))
	}
	if raw.Confidence < 50 {
		s.Logger.Warn("pipeline.fields.low_confidence", "order_number", raw.OrderNumber, "confidence", raw.Confidence)
	}
	return raw, jobs, nil
}
