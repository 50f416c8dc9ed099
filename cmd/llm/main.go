package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/paper-summarizer/internal/app"
	"github.com/joseph-ayodele/paper-summarizer/internal/common"
	"github.com/joseph-ayodele/paper-summarizer/internal/llm"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	var (
		configPath = flag.String("config", "", "optional YAML config file")
		model      = flag.String("model", "", "model identifier (defaults to LLM_MODEL)")
		summary    = flag.Bool("summary", false, "ask for a plain summary instead of structured metadata")
		pages      = flag.Int("pages", 0, "OCR page limit for PDF input, 0 reads all pages")
	)
	flag.Parse()
	if flag.NArg() != 1 {
		logger.Error("usage: llm [-model m] [-summary] <file.txt|file.pdf>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}
	if *model != "" {
		cfg.LLM.DefaultModel = *model
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	text, err := readText(ctx, cfg, path, *pages, logger)
	if err != nil {
		logger.Error("read input", "kind", common.KindOf(err), "error", err)
		os.Exit(1)
	}

	completer, closeFn, err := app.NewCompleter(ctx, cfg, logger)
	if err != nil {
		logger.Error("build completer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = closeFn() }()
	extractor := llm.NewExtractor(completer, cfg.LLM.MaxInputChars, logger)

	var out any
	if *summary {
		s, err := extractor.Summarize(ctx, text, cfg.LLM.DefaultModel)
		if err != nil {
			logger.Error("summarize", "error", err)
			os.Exit(1)
		}
		out = map[string]string{"summary": s}
	} else {
		fields, err := extractor.ExtractMetadata(ctx, text, cfg.LLM.DefaultModel)
		if err != nil {
			logger.Error("extract metadata", "error", err)
			os.Exit(1)
		}
		out = fields
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}

// readText accepts plain text or a PDF, which goes through text acquisition.
func readText(ctx context.Context, cfg *common.Config, path string, pages int, logger *slog.Logger) (string, error) {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		b, err := os.ReadFile(path)
		if err != nil {
			return "", common.TextExtraction("cannot read text file", err)
		}
		return string(b), nil
	}
	acq, err := app.NewAcquirer(ctx, cfg, logger)
	if err != nil {
		return "", err
	}
	res, err := acq.Extract(ctx, path, pages)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}
