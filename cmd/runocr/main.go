package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/paper-summarizer/internal/app"
	"github.com/joseph-ayodele/paper-summarizer/internal/common"
	"github.com/joseph-ayodele/paper-summarizer/internal/metadata"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	pages := flag.Int("pages", 0, "OCR page limit, 0 reads all pages")
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	if flag.NArg() != 1 {
		logger.Error("usage", "cmd", "runocr [-pages N] <file.pdf>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Batch.DocumentTimeout)
	defer cancel()

	acq, err := app.NewAcquirer(ctx, cfg, logger)
	if err != nil {
		logger.Error("build acquirer", "error", err)
		os.Exit(1)
	}

	start := time.Now()
	res, err := acq.Extract(ctx, path, *pages)
	if err != nil {
		logger.Error("text extraction failed", "kind", common.KindOf(err), "error", err, "duration_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}

	out := map[string]any{
		"path":        path,
		"method":      res.Method,
		"pages":       len(res.Pages),
		"chars":       len(res.Text),
		"duration_ms": res.Duration.Milliseconds(),
		"text":        res.Text,
	}
	if h, err := metadata.ExtractAll(res.Text); err != nil {
		out["heuristics_error"] = err.Error()
		out["doi_issn"] = metadata.Identifier(res.Text)
	} else {
		out["doi_issn"] = h.DOIISSN
		out["title"] = h.Title
		out["authors"] = h.Authors
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error("encode output", "error", err)
		os.Exit(1)
	}
}
