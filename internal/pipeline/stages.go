// Package pipeline drives documents through text acquisition, structured
// extraction and persistence, and runs whole batches over a worker pool.
package pipeline

import (
	"context"
	"time"

	"github.com/joseph-ayodele/paper-summarizer/internal/export"
	"github.com/joseph-ayodele/paper-summarizer/internal/ocr"
)

// TextAcquirer returns the text of a PDF on disk. *ocr.Extractor implements it.
type TextAcquirer interface {
	Extract(ctx context.Context, path string, pageLimit int) (ocr.Result, error)
}

// Exporter renders the accumulated rows of a batch. *export.Builder implements it.
type Exporter interface {
	Build(ctx context.Context, rows []export.Row) ([]byte, error)
}

// Pinger checks the persistence layer before a batch starts. *repository.DB implements it.
type Pinger interface {
	Ping(ctx context.Context, timeout time.Duration) error
}
