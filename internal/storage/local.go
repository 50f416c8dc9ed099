package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/paper-summarizer/internal/common"
)

// LocalStore writes documents under a directory on disk.
type LocalStore struct {
	dir    string
	logger *slog.Logger
}

func NewLocalStore(dir string, logger *slog.Logger) *LocalStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalStore{dir: dir, logger: logger}
}

func (s *LocalStore) Save(ctx context.Context, id uuid.UUID, filename string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", common.FileSave("create input directory", err)
	}
	path := filepath.Join(s.dir, ObjectName(id, filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Error("storage.local.write_failed", "path", path, "error", err)
		return "", common.FileSave("save uploaded file", err)
	}
	s.logger.Debug("storage.local.saved", "path", path, "bytes", len(data))
	return path, nil
}
