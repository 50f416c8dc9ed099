package ocr

import (
	"context"
	"fmt"
	"os"

	"github.com/joseph-ayodele/paper-summarizer/constants"
	"github.com/joseph-ayodele/paper-summarizer/internal/common"
	"github.com/joseph-ayodele/paper-summarizer/internal/entity"
)

func (e *Extractor) pdfToOCR(ctx context.Context, path string, pageLimit int) (Result, error) {
	log := e.logger.With(common.LogAttrs(ctx)...)

	total, err := e.counter.CountPages(path)
	if err != nil {
		log.Error("ocr.pagecount.failed", "path", path, "error", err)
		return Result{}, common.TextExtraction("cannot open document for OCR", err)
	}
	n := total
	if pageLimit > 0 && pageLimit < n {
		n = pageLimit
	}

	tmpDir, err := os.MkdirTemp("", "paper-ocr-*")
	if err != nil {
		return Result{}, common.OCRExtraction("create render directory", err)
	}
	defer func(dir string) {
		if err := os.RemoveAll(dir); err != nil {
			log.Warn("ocr.tmpdir.cleanup_failed", "dir", dir, "error", err)
		}
	}(tmpDir)

	pages := make([]entity.PageText, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, common.OCRExtraction("OCR cancelled", err)
		}
		img, err := e.renderer.RenderPage(ctx, path, i, e.cfg.DPI, tmpDir)
		if err != nil {
			log.Error("ocr.render.failed", "page", i, "error", err)
			return Result{}, common.OCRExtraction(fmt.Sprintf("OCR failed on page %d", i), err)
		}
		if e.cfg.Grayscale {
			if err := grayscaleInPlace(img); err != nil {
				log.Warn("ocr.preprocess.failed", "page", i, "error", err)
			}
		}
		txt, err := e.recognizer.Recognize(ctx, img)
		if err != nil {
			log.Error("ocr.recognize.failed", "page", i, "error", err)
			return Result{}, common.OCRExtraction(fmt.Sprintf("OCR failed on page %d", i), err)
		}
		pages = append(pages, entity.PageText{Page: i, Text: Normalize(txt)})
	}

	text := joinPages(pages)
	if text == "" {
		return Result{}, common.OCRExtraction("no text found by OCR", nil)
	}
	return Result{Text: text, Pages: pages, Method: constants.MethodOCR}, nil
}
