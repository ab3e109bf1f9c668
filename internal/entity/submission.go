package entity

import (
	"time"

	"github.com/google/uuid"
)

// Submission is one attempt to create a job in the record store.
type Submission struct {
	ID           uuid.UUID  `json:"id"`
	RunID        *uuid.UUID `json:"run_id,omitempty"`
	OrderNumber  string     `json:"order_number"`
	SerialNumber string     `json:"serial_number"`
	Status       string     `json:"status"`
	RecordID     string     `json:"record_id,omitempty"`
	JobNumber    string     `json:"job_number,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	SubmittedAt  time.Time  `json:"submitted_at"`
}
