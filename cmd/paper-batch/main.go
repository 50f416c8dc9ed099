package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/joseph-ayodele/paper-summarizer/internal/app"
	"github.com/joseph-ayodele/paper-summarizer/internal/common"
	"github.com/joseph-ayodele/paper-summarizer/internal/ingest"
	"github.com/joseph-ayodele/paper-summarizer/internal/logging"
	"github.com/joseph-ayodele/paper-summarizer/internal/pipeline"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		configPath = flag.String("config", "", "optional YAML config file")
		dir        = flag.String("dir", "", "directory of PDFs to process")
		model      = flag.String("model", "", "model identifier (defaults to LLM_MODEL)")
		pages      = flag.Int("pages", -1, "OCR page limit per document, 0 reads all pages (defaults to BATCH_PAGE_LIMIT)")
		out        = flag.String("out", "", "output XLSX path (defaults to <output dir>/<batch id>.xlsx)")
		workers    = flag.Int("workers", 0, "concurrent documents (defaults to BATCH_WORKERS)")
		listModels = flag.Bool("list-models", false, "print the available models and exit")
	)
	flag.Parse()

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if *listModels {
		for _, m := range cfg.LLM.AvailableModels {
			marker := " "
			if m == cfg.LLM.DefaultModel {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, m)
		}
		return
	}

	inputs := flag.Args()
	if *dir != "" {
		inputs = append([]string{*dir}, inputs...)
	}
	if len(inputs) == 0 {
		printError("Error: --dir or at least one PDF path is required\n")
		os.Exit(1)
	}
	if *model != "" {
		cfg.LLM.DefaultModel = *model
	}
	if *pages >= 0 {
		cfg.Batch.PageLimit = *pages
	}
	if *workers > 0 {
		cfg.Batch.Workers = *workers
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.EnsureDirs(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	batchID := uuid.New()
	logger, logCloser, err := logging.New(logging.FromConfig(cfg.Log, logging.BatchFile(cfg.Paths.LogDir, batchID.String())))
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger, app.Options{Registerer: prometheus.NewRegistry()})
	if err != nil {
		logger.Error("failed to initialize", "kind", common.KindOf(err), "error", err)
		os.Exit(1)
	}
	defer a.Close()

	loader := ingest.NewLoader(true, 0, logger)
	docs, _, stats, err := loader.Load(ctx, inputs)
	if err != nil {
		logger.Error("failed to collect documents", "error", err)
		os.Exit(1)
	}
	logger.Info("ingestion complete", "loaded", stats.Loaded, "scanned", stats.Scanned, "failed", stats.Failed)

	res, err := a.Runner.RunBatch(ctx, docs, pipeline.Options{
		Model:     cfg.LLM.DefaultModel,
		PageLimit: cfg.Batch.PageLimit,
		BatchID:   batchID,
		OnProgress: func(p pipeline.Progress) {
			status := "ok"
			if p.Outcome.Kind != "" {
				status = p.Outcome.Kind
			}
			fmt.Printf("[%d/%d] %s: %s\n", p.Done, p.Total, p.Outcome.Filename, status)
		},
	})
	if errors.Is(err, common.ErrNoMetadataExtracted) {
		printError("No metadata extracted from any document. See %s\n", logging.BatchFile(cfg.Paths.LogDir, batchID.String()))
		os.Exit(3)
	}
	if err != nil {
		logger.Error("batch failed", "kind", common.KindOf(err), "error", err)
		os.Exit(1)
	}

	outPath := *out
	if outPath == "" {
		outPath = filepath.Join(cfg.Paths.OutputDir, batchID.String()+".xlsx")
	}
	if len(res.Export) > 0 {
		if err := os.WriteFile(outPath, res.Export, 0o644); err != nil {
			logger.Error("failed to write output file", "path", outPath, "error", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Batch %s complete!\n", batchID)
	fmt.Printf("- Documents: %d\n", len(docs))
	fmt.Printf("- Records: %d\n", len(res.Records))
	var skipped []string
	for _, o := range res.Outcomes {
		if o.Kind != "" {
			skipped = append(skipped, fmt.Sprintf("%s (%s)", o.Filename, o.Kind))
		}
	}
	if len(skipped) > 0 {
		fmt.Printf("- Skipped: %s\n", strings.Join(skipped, ", "))
	}
	if len(res.Export) > 0 {
		fmt.Printf("- Output: %s\n", outPath)
	}
}
