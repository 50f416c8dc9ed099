package entity

import (
	"github.com/google/uuid"
)

// Document is one uploaded paper as it enters a batch. It is never persisted as-is.
type Document struct {
	ID       uuid.UUID `json:"id"`
	Filename string    `json:"filename"`
	Content  []byte    `json:"-"`
	Model    string    `json:"model"`
}

// PageText is the text of a single page, 1-based.
type PageText struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}
