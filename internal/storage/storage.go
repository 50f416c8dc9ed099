// Package storage keeps the raw bytes of uploaded documents outside the database.
package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/paper-summarizer/constants"
)

// Store persists an uploaded document and returns where it was written.
type Store interface {
	Save(ctx context.Context, id uuid.UUID, filename string, data []byte) (string, error)
}

// ObjectName is the storage key for a document: "<id>_<name with spaces replaced>".
func ObjectName(id uuid.UUID, filename string) string {
	return id.String() + "_" + constants.SafeFileName(filename)
}
