//go:build gosseract

// Package gosseract recognizes page images in-process through the tesseract C API.
// Build with -tags gosseract and libtesseract installed.
package gosseract

import (
	"context"
	"fmt"
	"os"

	"github.com/otiai10/gosseract/v2"

	"github.com/joseph-ayodele/paper-summarizer/internal/ocr"
)

// Available reports whether this binary was built with the cgo binding.
const Available = true

type recognizer struct {
	lang        string
	psm         gosseract.PageSegMode
	tessdataDir string
}

// New returns an ocr.Recognizer backed by gosseract.
func New(lang string, psm int, tessdataDir string) (ocr.Recognizer, error) {
	if psm <= 0 {
		psm = int(gosseract.PSM_AUTO)
	}
	return &recognizer{lang: lang, psm: gosseract.PageSegMode(psm), tessdataDir: tessdataDir}, nil
}

func (r *recognizer) Recognize(ctx context.Context, imagePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("read page image: %w", err)
	}

	// clients are not safe for concurrent use
	client := gosseract.NewClient()
	defer client.Close()
	if r.tessdataDir != "" {
		if err := client.SetTessdataPrefix(r.tessdataDir); err != nil {
			return "", fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(r.lang); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	if err := client.SetPageSegMode(r.psm); err != nil {
		return "", fmt.Errorf("set page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("gosseract: %w", err)
	}
	return text, nil
}
