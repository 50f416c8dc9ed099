// Package ocr acquires plain text from PDF documents. It tries the embedded
// text layer first and falls back to rendering pages and running OCR when the
// native text is too short to be useful.
package ocr

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joseph-ayodele/paper-summarizer/constants"
	"github.com/joseph-ayodele/paper-summarizer/internal/common"
	"github.com/joseph-ayodele/paper-summarizer/internal/entity"
)

type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	TessdataDir   string
	PSM           int // default 3, fully automatic page segmentation
	DPI           int // rasterization DPI for the OCR fallback, default 200

	// MinNativeChars is the native text length at which OCR is skipped. Default 200.
	MinNativeChars int

	// Grayscale converts rendered pages before recognition.
	Grayscale bool
}

// Result is the outcome of a successful acquisition.
type Result struct {
	Text     string
	Pages    []entity.PageText
	Method   constants.AcquisitionMethod
	Duration time.Duration
}

type Extractor struct {
	cfg        Config
	native     NativeReader
	counter    PageCounter
	renderer   PageRenderer
	recognizer Recognizer
	logger     *slog.Logger
}

type Option func(*Extractor)

// WithRunner routes the pdftoppm and tesseract invocations through r.
func WithRunner(r Runner) Option {
	return func(e *Extractor) {
		e.renderer = &PdftoppmRenderer{Bin: e.cfg.Pdftoppm, Runner: r}
		e.recognizer = &TesseractCLI{Bin: e.cfg.Tesseract, Lang: e.cfg.TesseractLang, PSM: e.cfg.PSM, TessdataDir: e.cfg.TessdataDir, Runner: r}
	}
}

func WithNativeReader(n NativeReader) Option { return func(e *Extractor) { e.native = n } }
func WithPageCounter(c PageCounter) Option   { return func(e *Extractor) { e.counter = c } }
func WithRenderer(r PageRenderer) Option     { return func(e *Extractor) { e.renderer = r } }
func WithRecognizer(r Recognizer) Option     { return func(e *Extractor) { e.recognizer = r } }

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.PSM <= 0 {
		cfg.PSM = 3
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 200
	}
	if cfg.MinNativeChars <= 0 {
		cfg.MinNativeChars = 200
	}
	e := &Extractor{
		cfg:     cfg,
		native:  LedongthucReader{},
		counter: PdfcpuCounter{},
		logger:  logger,
	}
	WithRunner(ExecRunner{Logger: logger})(e)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the text of the PDF at path. pageLimit bounds the number of
// pages sent through OCR; 0 means all pages. The native pass is never bounded.
func (e *Extractor) Extract(ctx context.Context, path string, pageLimit int) (Result, error) {
	start := time.Now()
	log := e.logger.With(common.LogAttrs(ctx)...)

	if _, err := os.Stat(path); err != nil {
		log.Error("ocr.open.failed", "path", path, "error", err)
		return Result{}, common.TextExtraction("cannot open document", err)
	}

	pages, err := e.native.PageTexts(path)
	if err != nil {
		log.Warn("ocr.native.failed", "path", path, "error", err)
		pages = nil
	}
	text := joinPages(pages)
	chars := utf8.RuneCountInString(text)
	if chars >= e.cfg.MinNativeChars {
		log.Debug("ocr.native.ok", "chars", chars, "pages", len(pages))
		return Result{Text: text, Pages: pages, Method: constants.MethodNative, Duration: time.Since(start)}, nil
	}

	log.Info("ocr.fallback.start", "native_chars", chars, "min_chars", e.cfg.MinNativeChars, "page_limit", pageLimit)
	res, err := e.pdfToOCR(ctx, path, pageLimit)
	res.Duration = time.Since(start)
	if err != nil {
		return res, err
	}
	log.Info("ocr.fallback.ok", "chars", utf8.RuneCountInString(res.Text), "pages", len(res.Pages), "elapsed_ms", res.Duration.Milliseconds())
	return res, nil
}

func joinPages(pages []entity.PageText) string {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		if t := strings.TrimSpace(p.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}
