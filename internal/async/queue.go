package async

import (
	"context"
	"time"
)

// Job is one document waiting to be processed.
type Job struct {
	Source      string // local path or s3:// URI
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
