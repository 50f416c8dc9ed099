package pipeline

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/paper-summarizer/constants"
	"github.com/joseph-ayodele/paper-summarizer/internal/common"
	"github.com/joseph-ayodele/paper-summarizer/internal/entity"
	"github.com/joseph-ayodele/paper-summarizer/internal/llm"
	"github.com/joseph-ayodele/paper-summarizer/internal/metadata"
	"github.com/joseph-ayodele/paper-summarizer/internal/metrics"
	"github.com/joseph-ayodele/paper-summarizer/internal/repository"
	"github.com/joseph-ayodele/paper-summarizer/internal/storage"
)

// Processor runs one document end to end: save, acquire, extract, persist.
type Processor struct {
	Store     storage.Store
	Uploads   repository.UploadRepository
	Metadata  repository.MetadataRepository
	Acquirer  TextAcquirer
	Extractor llm.FieldExtractor
	Metrics   *metrics.Recorder
	Logger    *slog.Logger

	// IdentifierFallback fills an empty doi_issn from the document text.
	IdentifierFallback bool
	// TempDir holds the per-document file handed to acquisition. Empty means os.TempDir().
	TempDir string
}

// Process returns the persisted record for doc. Every error carries a common.AppError kind.
func (p *Processor) Process(ctx context.Context, batchID uuid.UUID, doc entity.Document, pageLimit int) (entity.MetadataRecord, error) {
	log := p.logger().With(common.LogAttrs(ctx)...).With("filename", doc.Filename)

	// Saved
	if _, err := p.Store.Save(ctx, doc.ID, doc.Filename, doc.Content); err != nil {
		return entity.MetadataRecord{}, err
	}
	if err := p.Uploads.Insert(ctx, entity.Upload{
		ID:         doc.ID,
		Filename:   doc.Filename,
		Blob:       doc.Content,
		UploadedAt: time.Now().UTC(),
		Model:      doc.Model,
	}); err != nil {
		return entity.MetadataRecord{}, err
	}

	// Acquired
	path, cleanup, err := p.writeTemp(doc)
	if err != nil {
		return entity.MetadataRecord{}, err
	}
	defer cleanup()

	res, err := p.Acquirer.Extract(ctx, path, pageLimit)
	if err != nil {
		return entity.MetadataRecord{}, err
	}
	ocrPages := 0
	if res.Method == constants.MethodOCR {
		ocrPages = len(res.Pages)
	}
	p.Metrics.ObserveAcquisition(string(res.Method), ocrPages)
	log.Info("pipeline.document.acquired", "method", res.Method, "chars", len(res.Text), "elapsed_ms", res.Duration.Milliseconds())

	// Extracted
	fields, err := p.Extractor.ExtractMetadata(ctx, res.Text, doc.Model)
	if err != nil {
		return entity.MetadataRecord{}, err
	}
	if fields.DOIISSN == "" && p.IdentifierFallback {
		if id := metadata.Identifier(res.Text); id != "" {
			log.Debug("pipeline.document.identifier_fallback", "doi_issn", id)
			fields.DOIISSN = id
		}
	}

	// Persisted
	rec := entity.MetadataRecord{
		ID:          doc.ID,
		BatchID:     batchID,
		DOIISSN:     fields.DOIISSN,
		Title:       fields.Title,
		Authors:     fields.Authors,
		Summary:     fields.Summary,
		Model:       doc.Model,
		ProcessedAt: time.Now().UTC(),
	}
	if err := p.Metadata.Insert(ctx, rec); err != nil {
		return entity.MetadataRecord{}, err
	}
	return rec, nil
}

// writeTemp copies the document bytes to a private file; cleanup removes it.
func (p *Processor) writeTemp(doc entity.Document) (string, func(), error) {
	f, err := os.CreateTemp(p.TempDir, "paper-*.pdf")
	if err != nil {
		return "", nil, common.FileSave("create temporary file", err)
	}
	path := f.Name()
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			p.logger().Warn("pipeline.tempfile.cleanup_failed", "path", path, "error", err)
		}
	}
	if _, err := f.Write(doc.Content); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, common.FileSave("write temporary file", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, common.FileSave("close temporary file", err)
	}
	return path, cleanup, nil
}

func (p *Processor) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}
