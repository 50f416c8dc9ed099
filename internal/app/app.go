// Package app wires configuration into the concrete components used by the binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joseph-ayodele/paper-summarizer/internal/common"
	"github.com/joseph-ayodele/paper-summarizer/internal/export"
	"github.com/joseph-ayodele/paper-summarizer/internal/llm"
	"github.com/joseph-ayodele/paper-summarizer/internal/llm/openai"
	"github.com/joseph-ayodele/paper-summarizer/internal/llm/vertex"
	"github.com/joseph-ayodele/paper-summarizer/internal/metrics"
	"github.com/joseph-ayodele/paper-summarizer/internal/ocr"
	"github.com/joseph-ayodele/paper-summarizer/internal/ocr/gosseract"
	"github.com/joseph-ayodele/paper-summarizer/internal/ocr/textract"
	"github.com/joseph-ayodele/paper-summarizer/internal/pipeline"
	"github.com/joseph-ayodele/paper-summarizer/internal/repository"
	"github.com/joseph-ayodele/paper-summarizer/internal/storage"
)

// App holds the process-wide components built from one Config.
type App struct {
	Config    *common.Config
	DB        *repository.DB
	Repos     *repository.Repositories
	Store     storage.Store
	Acquirer  *ocr.Extractor
	Completer llm.Completer
	Extractor *llm.Extractor
	Metrics   *metrics.Recorder
	Runner    *pipeline.Runner

	closers []func() error
	logger  *slog.Logger
}

// Options toggles the optional parts of the graph.
type Options struct {
	// Registerer receives the pipeline metrics; nil disables them.
	Registerer prometheus.Registerer
	// SkipLLM builds everything but the completion client (acquisition-only tools).
	SkipLLM bool
}

// OpenDatabase opens, migrates and pings the configured database.
func OpenDatabase(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*repository.DB, error) {
	db, err := repository.Open(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
		BusyTimeout:     cfg.Database.BusyTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := db.Ping(ctx, 5*time.Second); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// NewStore returns the document store selected by cfg.Storage.Backend.
func NewStore(ctx context.Context, cfg *common.Config, logger *slog.Logger) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case "", "local":
		return storage.NewLocalStore(cfg.Paths.InputDir, logger), nil
	case "minio":
		s, err := storage.NewMinioStore(storage.MinioConfig{
			Endpoint:  cfg.Storage.MinioEndpoint,
			AccessKey: cfg.Storage.MinioAccessKey,
			SecretKey: cfg.Storage.MinioSecretKey,
			Bucket:    cfg.Storage.MinioBucket,
			UseSSL:    cfg.Storage.MinioUseSSL,
			Region:    cfg.Storage.MinioRegion,
		}, logger)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, common.ConfigError(fmt.Sprintf("unknown STORAGE_BACKEND %q", cfg.Storage.Backend))
	}
}

// NewAcquirer builds text acquisition with the OCR engine selected by cfg.OCR.Engine.
func NewAcquirer(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*ocr.Extractor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	oc := cfg.OCR
	ocfg := ocr.Config{
		Pdftoppm:       oc.PdftoppmPath,
		Tesseract:      oc.TesseractPath,
		TesseractLang:  oc.Lang,
		TessdataDir:    oc.TessdataDir,
		PSM:            oc.PSM,
		DPI:            oc.DPI,
		MinNativeChars: oc.MinNativeChars,
		Grayscale:      oc.Grayscale,
	}

	var opts []ocr.Option
	switch oc.Engine {
	case "", "tesseract":
	case "gosseract":
		rec, err := gosseract.New(oc.Lang, oc.PSM, oc.TessdataDir)
		if err != nil {
			return nil, common.ConfigError(err.Error())
		}
		opts = append(opts, ocr.WithRecognizer(rec))
	case "textract":
		rec, err := textract.New(ctx, textract.Config{
			Region:    oc.AWSRegion,
			AccessKey: oc.AWSAccessKey,
			SecretKey: oc.AWSSecretKey,
		})
		if err != nil {
			return nil, err
		}
		opts = append(opts, ocr.WithRecognizer(rec))
	default:
		return nil, common.ConfigError(fmt.Sprintf("unknown OCR_ENGINE %q", oc.Engine))
	}
	logger.Info("app.ocr.engine", "engine", oc.Engine, "dpi", ocfg.DPI, "min_native_chars", ocfg.MinNativeChars)
	return ocr.NewExtractor(ocfg, logger, opts...), nil
}

// NewCompleter returns the completion client for cfg.LLM.Provider and a closer for it.
func NewCompleter(ctx context.Context, cfg *common.Config, logger *slog.Logger) (llm.Completer, func() error, error) {
	lc := cfg.LLM
	switch lc.Provider {
	case "", "openai":
		return openai.NewClient(openai.Config{
			APIKey:      lc.APIKey,
			BaseURL:     lc.BaseURL,
			Temperature: lc.Temperature,
			Timeout:     lc.Timeout,
		}, logger), func() error { return nil }, nil
	case "vertex":
		c, err := vertex.NewClient(ctx, vertex.Config{
			ProjectID:   lc.VertexProject,
			Region:      lc.VertexRegion,
			Temperature: lc.Temperature,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	default:
		return nil, nil, common.ConfigError(fmt.Sprintf("unknown LLM_PROVIDER %q", lc.Provider))
	}
}

// New builds the whole component graph. Close releases it.
func New(ctx context.Context, cfg *common.Config, logger *slog.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, logger: logger}
	if opts.Registerer != nil {
		a.Metrics = metrics.New(opts.Registerer)
	}

	db, err := OpenDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.DB = db
	a.closers = append(a.closers, func() error { db.Close(); return nil })
	a.Repos = repository.New(db, logger)

	if a.Store, err = NewStore(ctx, cfg, logger); err != nil {
		a.Close()
		return nil, err
	}
	if a.Acquirer, err = NewAcquirer(ctx, cfg, logger); err != nil {
		a.Close()
		return nil, err
	}
	if opts.SkipLLM {
		return a, nil
	}

	completer, closeFn, err := NewCompleter(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Completer = completer
	a.closers = append(a.closers, closeFn)
	a.Extractor = llm.NewExtractor(completer, cfg.LLM.MaxInputChars, logger)

	proc := &pipeline.Processor{
		Store:              a.Store,
		Uploads:            a.Repos.Uploads,
		Metadata:           a.Repos.Metadata,
		Acquirer:           a.Acquirer,
		Extractor:          a.Extractor,
		Metrics:            a.Metrics,
		Logger:             logger,
		IdentifierFallback: cfg.Batch.IdentifierFallback,
	}
	a.Runner = pipeline.NewRunner(proc, a.Repos.Outputs, export.NewBuilder(logger), logger,
		pipeline.WithWorkers(cfg.Batch.Workers),
		pipeline.WithDocumentTimeout(cfg.Batch.DocumentTimeout),
		pipeline.WithPinger(db),
		pipeline.WithMetrics(a.Metrics),
	)
	return a, nil
}

// Close releases components in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("app.close.failed", "error", err)
		}
	}
	a.closers = nil
}
