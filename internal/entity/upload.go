package entity

import (
	"time"

	"github.com/google/uuid"
)

// Upload represents a stored document for data transfer between layers.
type Upload struct {
	ID         uuid.UUID `json:"id"`
	Filename   string    `json:"filename"`
	Blob       []byte    `json:"-"`
	UploadedAt time.Time `json:"uploaded_at"`
	Model      string    `json:"model"`
}

// UploadSummary is an Upload without its blob, used for history listings.
type UploadSummary struct {
	ID         uuid.UUID `json:"id"`
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"uploaded_at"`
	Model      string    `json:"model"`
	Size       int64     `json:"size"`
}
