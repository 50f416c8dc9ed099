//go:build !gosseract

package gosseract

import (
	"errors"

	"github.com/joseph-ayodele/paper-summarizer/internal/ocr"
)

// Available reports whether this binary was built with the cgo binding.
const Available = false

// ErrUnavailable is returned by New when the binary was built without -tags gosseract.
var ErrUnavailable = errors.New("gosseract OCR engine not compiled in; rebuild with -tags gosseract")

func New(lang string, psm int, tessdataDir string) (ocr.Recognizer, error) {
	return nil, ErrUnavailable
}
