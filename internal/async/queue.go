// Package async runs submitted batches in the background and tracks their state.
package async

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/paper-summarizer/constants"
	"github.com/joseph-ayodele/paper-summarizer/internal/entity"
	"github.com/joseph-ayodele/paper-summarizer/internal/pipeline"
)

var ErrQueueClosed = errors.New("batch queue is shutting down")

// Job is one submitted batch.
type Job struct {
	BatchID     uuid.UUID
	Documents   []entity.Document
	Model       string
	PageLimit   int
	SubmittedAt time.Time
	RequestID   string
}

// BatchRunner is satisfied by *pipeline.Runner.
type BatchRunner interface {
	RunBatch(ctx context.Context, docs []entity.Document, opts pipeline.Options) (*pipeline.BatchResult, error)
}

// State is a point-in-time view of a submitted batch.
type State struct {
	BatchID     uuid.UUID
	Status      constants.BatchStatus
	Documents   int
	Done        int
	Records     int
	Outcomes    []pipeline.Outcome
	Error       string
	SubmittedAt time.Time
	StartedAt   time.Time
	FinishedAt  time.Time
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) (uuid.UUID, error)
	Get(batchID uuid.UUID) (State, bool)
	Shutdown(ctx context.Context)
}
