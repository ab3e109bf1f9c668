package constants

// ReviewState is the lifecycle state of a mapped job record between extraction and submission.
type ReviewState string

const (
	ReviewDraft     ReviewState = "DRAFT"     // post-mapping, editable
	ReviewValidated ReviewState = "VALIDATED" // required/shape checks passed
	ReviewSubmitted ReviewState = "SUBMITTED" // terminal: record created remotely
	ReviewRejected  ReviewState = "REJECTED"  // validation failed, returns to draft
	ReviewFailed    ReviewState = "FAILED"    // remote call failed, returns to draft
)

// ExtractionMethod is how the document text was obtained.
type ExtractionMethod string

const (
	MethodText ExtractionMethod = "text"
	MethodOCR  ExtractionMethod = "ocr"
)

// Extraction run lifecycle in the history store.
const (
	RunStatusRunning = "RUNNING"
	RunStatusOK      = "OK"
	RunStatusFailed  = "FAILED"
)
