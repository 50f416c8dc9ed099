package entity

import (
	"time"

	"github.com/google/uuid"
)

// MetadataRecord is the structured result for one successfully processed document.
// ID equals the upload ID.
type MetadataRecord struct {
	ID          uuid.UUID `json:"id"`
	BatchID     uuid.UUID `json:"batch_id"`
	DOIISSN     string    `json:"doi_issn"`
	Title       string    `json:"title"`
	Authors     string    `json:"authors"`
	Summary     string    `json:"summary"`
	Model       string    `json:"model"`
	ProcessedAt time.Time `json:"processed_at"`
}
