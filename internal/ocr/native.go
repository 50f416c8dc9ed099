package ocr

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/paper-summarizer/internal/entity"
)

// NativeReader returns the embedded text of every page.
type NativeReader interface {
	PageTexts(path string) ([]entity.PageText, error)
}

// LedongthucReader reads the PDF text layer with github.com/ledongthuc/pdf.
type LedongthucReader struct{}

func (LedongthucReader) PageTexts(path string) (pages []entity.PageText, err error) {
	// the parser panics on some malformed content streams
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("pdf text layer: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	n := r.NumPage()
	pages = make([]entity.PageText, 0, n)
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		txt, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		if txt = strings.TrimSpace(txt); txt != "" {
			pages = append(pages, entity.PageText{Page: i, Text: txt})
		}
	}
	return pages, nil
}
