package async

import (
	"context"
	"time"
)

// Job is one receipt scan waiting to run: the uploaded image plus the
// session its bill should land in.
type Job struct {
	SessionID   string
	Image       []byte
	Ext         string
	SubmittedAt time.Time
	TraceID     string

	seq uint64 // assigned at enqueue; stale jobs are dropped
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
