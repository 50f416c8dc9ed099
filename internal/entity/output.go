package entity

import (
	"time"

	"github.com/google/uuid"
)

// OutputArtifact is the XLSX export for one batch.
type OutputArtifact struct {
	BatchID     uuid.UUID `json:"batch_id"`
	Blob        []byte    `json:"-"`
	GeneratedAt time.Time `json:"generated_at"`
}
