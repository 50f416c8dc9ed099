package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/paper-summarizer/constants"
	"github.com/joseph-ayodele/paper-summarizer/internal/common"
	"github.com/joseph-ayodele/paper-summarizer/internal/entity"
	"github.com/joseph-ayodele/paper-summarizer/internal/export"
	"github.com/joseph-ayodele/paper-summarizer/internal/metrics"
	"github.com/joseph-ayodele/paper-summarizer/internal/repository"
)

const pingTimeout = 5 * time.Second

// Options parameterise one batch run.
type Options struct {
	Model string
	// PageLimit bounds OCR pages per document; 0 reads all pages.
	PageLimit int
	// BatchID is generated when zero.
	BatchID uuid.UUID
	// OnProgress is called once per document, never concurrently.
	OnProgress func(Progress)
}

// Outcome is the terminal state of one document.
type Outcome struct {
	DocumentID uuid.UUID                `json:"document_id"`
	Filename   string                   `json:"filename"`
	Status     constants.DocumentStatus `json:"status"`
	Kind       string                   `json:"kind,omitempty"`
	Error      string                   `json:"error,omitempty"`
	Elapsed    time.Duration            `json:"elapsed"`
}

type Progress struct {
	Done    int
	Total   int
	Outcome Outcome
}

// BatchResult is what a finished batch hands back to its caller.
type BatchResult struct {
	BatchID        uuid.UUID
	Status         constants.BatchStatus
	Records        []entity.MetadataRecord // upload order, skipped documents removed
	Outcomes       []Outcome               // upload order, one per document
	Export         []byte
	ArtifactStored bool
	Elapsed        time.Duration
}

// Runner fans a batch of documents out over a bounded pool of workers.
type Runner struct {
	proc     *Processor
	outputs  repository.OutputRepository
	exporter Exporter
	pinger   Pinger
	metrics  *metrics.Recorder
	logger   *slog.Logger

	workers    int
	docTimeout time.Duration
}

type RunnerOption func(*Runner)

func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

func WithDocumentTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.docTimeout = d
		}
	}
}

func WithPinger(p Pinger) RunnerOption { return func(r *Runner) { r.pinger = p } }

func WithMetrics(m *metrics.Recorder) RunnerOption { return func(r *Runner) { r.metrics = m } }

func NewRunner(proc *Processor, outputs repository.OutputRepository, exporter Exporter, logger *slog.Logger, opts ...RunnerOption) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{
		proc:       proc,
		outputs:    outputs,
		exporter:   exporter,
		logger:     logger,
		workers:    4,
		docTimeout: 5 * time.Minute,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// RunBatch processes docs and returns the accumulated records. A batch with no
// record returns its result together with common.ErrNoMetadataExtracted. The only
// error that stops a batch before any document is a failing persistence ping.
func (r *Runner) RunBatch(ctx context.Context, docs []entity.Document, opts Options) (*BatchResult, error) {
	start := time.Now()
	if opts.BatchID == uuid.Nil {
		opts.BatchID = uuid.New()
	}
	// A started batch runs every document to completion.
	ctx = common.WithBatchID(context.WithoutCancel(ctx), opts.BatchID.String())
	log := r.logger.With(common.LogAttrs(ctx)...)

	res := &BatchResult{BatchID: opts.BatchID, Status: constants.BatchRunning}
	if r.pinger != nil {
		if err := r.pinger.Ping(ctx, pingTimeout); err != nil {
			log.Error("pipeline.batch.db_unavailable", "error", err)
			res.Status = constants.BatchFailed
			r.metrics.ObserveBatch(string(res.Status))
			return res, err
		}
	}

	log.Info("pipeline.batch.start", "documents", len(docs), "model", opts.Model, "page_limit", opts.PageLimit, "workers", r.workers)

	// Defaults are filled on a copy; the caller's slice is left as passed.
	docs = append([]entity.Document(nil), docs...)
	for i := range docs {
		if docs[i].ID == uuid.Nil {
			docs[i].ID = uuid.New()
		}
		if docs[i].Model == "" {
			docs[i].Model = opts.Model
		}
	}

	records := make([]*entity.MetadataRecord, len(docs))
	res.Outcomes = make([]Outcome, len(docs))

	var (
		mu   sync.Mutex
		done int
		g    errgroup.Group
	)
	g.SetLimit(r.workers)
	for i, doc := range docs {
		g.Go(func() error {
			rec, out := r.runDocument(ctx, opts.BatchID, doc, opts.PageLimit)
			records[i] = rec
			res.Outcomes[i] = out

			mu.Lock()
			defer mu.Unlock()
			done++
			if opts.OnProgress != nil {
				opts.OnProgress(Progress{Done: done, Total: len(docs), Outcome: out})
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, rec := range records {
		if rec != nil {
			res.Records = append(res.Records, *rec)
		}
	}

	if len(res.Records) == 0 {
		res.Status = constants.BatchEmpty
		res.Elapsed = time.Since(start)
		r.metrics.ObserveBatch(string(res.Status))
		log.Error("pipeline.batch.no_metadata", "documents", len(docs), "elapsed_ms", res.Elapsed.Milliseconds())
		return res, common.ErrNoMetadataExtracted
	}

	res.Status = constants.BatchCompleted
	r.storeExport(ctx, res)
	res.Elapsed = time.Since(start)
	r.metrics.ObserveBatch(string(res.Status))
	log.Info("pipeline.batch.done",
		"documents", len(docs),
		"records", len(res.Records),
		"skipped", len(docs)-len(res.Records),
		"artifact_stored", res.ArtifactStored,
		"elapsed_ms", res.Elapsed.Milliseconds(),
	)
	return res, nil
}

// runDocument never returns an error: every failure becomes a skipped outcome.
func (r *Runner) runDocument(ctx context.Context, batchID uuid.UUID, doc entity.Document, pageLimit int) (rec *entity.MetadataRecord, out Outcome) {
	start := time.Now()
	ctx = common.WithDocumentID(ctx, doc.ID.String())
	ctx, cancel := context.WithTimeout(ctx, r.docTimeout)
	defer cancel()
	log := r.logger.With(common.LogAttrs(ctx)...).With("filename", doc.Filename)

	out = Outcome{DocumentID: doc.ID, Filename: doc.Filename}
	finish := func(err error) {
		out.Elapsed = time.Since(start)
		if err != nil {
			out.Status = constants.DocumentSkipped
			out.Kind = common.KindOf(err)
			out.Error = err.Error()
			log.Error("pipeline.document.skipped", "kind", out.Kind, "error", err, "elapsed_ms", out.Elapsed.Milliseconds())
			r.metrics.ObserveDocument(out.Kind, out.Elapsed)
			return
		}
		out.Status = constants.DocumentPersisted
		log.Info("pipeline.document.persisted", "title", rec.Title, "elapsed_ms", out.Elapsed.Milliseconds())
		r.metrics.ObserveDocument("ok", out.Elapsed)
	}
	defer func() {
		if p := recover(); p != nil {
			rec = nil
			finish(common.NewAppError(common.KindUnexpected, "panic while processing document", fmt.Errorf("%v", p)))
		}
	}()

	m, err := r.proc.Process(ctx, batchID, doc, pageLimit)
	if err != nil {
		finish(err)
		return nil, out
	}
	rec = &m
	finish(nil)
	return rec, out
}

// storeExport builds and persists the artifact. Failures are logged and leave
// the records intact.
func (r *Runner) storeExport(ctx context.Context, res *BatchResult) {
	log := r.logger.With(common.LogAttrs(ctx)...)

	rows := make([]export.Row, 0, len(res.Records))
	for _, rec := range res.Records {
		rows = append(rows, export.RowFromRecord(rec))
	}
	blob, err := r.exporter.Build(ctx, rows)
	if err != nil {
		log.Error("pipeline.export.build_failed", "error", err)
		return
	}
	res.Export = blob

	if err := r.outputs.Insert(ctx, entity.OutputArtifact{
		BatchID:     res.BatchID,
		Blob:        blob,
		GeneratedAt: time.Now().UTC(),
	}); err != nil {
		log.Error("pipeline.export.store_failed", "kind", common.KindOf(err), "error", err)
		return
	}
	res.ArtifactStored = true
}
