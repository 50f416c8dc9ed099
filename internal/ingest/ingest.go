// Package ingest gathers PDF documents from the local filesystem for a batch.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/paper-summarizer/internal/entity"
)

// FileResult is the per-file ingest outcome.
type FileResult struct {
	Path string
	Size int64
	Err  string
}

// DirStats summarizes a collection pass.
type DirStats struct {
	Scanned uint32
	Matched uint32
	Loaded  uint32
	Failed  uint32
}

// Loader reads documents from paths. Directories are expanded to the PDFs they contain.
type Loader struct {
	SkipHidden bool
	// MaxBytes rejects larger files; 0 disables the check.
	MaxBytes int64
	Logger   *slog.Logger
}

func NewLoader(skipHidden bool, maxBytes int64, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{SkipHidden: skipHidden, MaxBytes: maxBytes, Logger: logger}
}

// Load returns one Document per readable PDF, in the order given; files inside a
// directory follow in lexical order. Unreadable files are reported in results and skipped.
func (l *Loader) Load(ctx context.Context, inputs []string) ([]entity.Document, []FileResult, DirStats, error) {
	if len(inputs) == 0 {
		return nil, nil, DirStats{}, errors.New("at least one input path is required")
	}

	var (
		paths []string
		stats DirStats
	)
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return nil, nil, stats, fmt.Errorf("stat %s: %w", in, err)
		}
		if info.IsDir() {
			found, dirStats, err := CollectDirectory(ctx, in, l.SkipHidden)
			stats.Scanned += dirStats.Scanned
			stats.Matched += dirStats.Matched
			stats.Failed += dirStats.Failed
			if err != nil {
				return nil, nil, stats, err
			}
			paths = append(paths, found...)
			continue
		}
		stats.Scanned++
		if !AllowedExt(filepath.Ext(in)) {
			l.Logger.Warn("ingest.skip.extension", "path", in)
			continue
		}
		stats.Matched++
		paths = append(paths, in)
	}

	docs := make([]entity.Document, 0, len(paths))
	results := make([]FileResult, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return docs, results, stats, err
		}
		data, err := l.read(p)
		if err != nil {
			l.Logger.Error("ingest.read.failed", "path", p, "error", err)
			results = append(results, FileResult{Path: p, Err: err.Error()})
			stats.Failed++
			continue
		}
		docs = append(docs, entity.Document{Filename: filepath.Base(p), Content: data})
		results = append(results, FileResult{Path: p, Size: int64(len(data))})
		stats.Loaded++
	}
	l.Logger.Info("ingest.done", "scanned", stats.Scanned, "matched", stats.Matched, "loaded", stats.Loaded, "failed", stats.Failed)
	return docs, results, stats, nil
}

func (l *Loader) read(path string) ([]byte, error) {
	if l.MaxBytes > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if info.Size() > l.MaxBytes {
			return nil, fmt.Errorf("file is %d bytes, limit is %d", info.Size(), l.MaxBytes)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("file is empty")
	}
	return data, nil
}
