package async

import (
	"context"
	"time"
)

// Job is the smallest useful unit: one document found by the watcher.
type Job struct {
	Path        string
	ContentHash string
	Force       bool // enqueue even if the content was already processed
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
