package extract

// FieldExtractor is stage 2: document text -> RawRecord.
type FieldExtractor interface {
	Extract(text string) (RawRecord, error)
}

var _ FieldExtractor = (*Extractor)(nil)
