package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExtractRun is one document's pass through text extraction and field extraction.
type ExtractRun struct {
	ID              uuid.UUID       `json:"id"`
	SourcePath      string          `json:"source_path"`
	ContentHash     string          `json:"content_hash"`
	Status          string          `json:"status"`
	Method          string          `json:"method,omitempty"`
	StartedAt       time.Time       `json:"started_at"`
	FinishedAt      *time.Time      `json:"finished_at,omitempty"`
	PageCount       int             `json:"page_count"`
	WordCount       int             `json:"word_count"`
	TextConfidence  float64         `json:"text_confidence"`
	FieldConfidence int             `json:"field_confidence"`
	OrderNumber     string          `json:"order_number,omitempty"`
	SerialCount     int             `json:"serial_count"`
	ErrorMessage    *string         `json:"error_message,omitempty"`
	ExtractedJSON   json.RawMessage `json:"extracted_json,omitempty"`
}
