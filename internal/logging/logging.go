// Package logging builds the process slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/joseph-ayodele/paper-summarizer/internal/common"
)

// Options controls where and how log records are written.
type Options struct {
	Level      string
	Format     string // text | json
	File       string // optional; rotated with lumberjack
	MaxSizeMB  int
	MaxBackups int
	Stdout     io.Writer // defaults to os.Stdout
}

// FromConfig maps the log section of the process config onto Options.
func FromConfig(cfg common.LogConfig, file string) Options {
	return Options{
		Level:      cfg.Level,
		Format:     cfg.Format,
		File:       file,
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	}
}

// New returns a logger fanned out to stdout and, when File is set, to a rotating file.
// The returned closer releases the file.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	var w io.Writer = opts.Stdout
	if w == nil {
		w = os.Stdout
	}
	var closer io.Closer = nopCloser{}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
		}
		w = io.MultiWriter(w, lj)
		closer = lj
	}

	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}
	var h slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		h = slog.NewJSONHandler(w, handlerOpts)
	} else {
		h = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(h), closer, nil
}

// BatchFile is the per-batch log path under dir.
func BatchFile(dir, batchID string) string {
	return filepath.Join(dir, batchID+".log")
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
