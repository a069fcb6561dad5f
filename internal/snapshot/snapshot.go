// Package snapshot archives the raw body of the last successful fetch so
// extraction regressions can be replayed against the exact HTML that
// caused them.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const fileName = "last_fetch.html"

// Writer persists page snapshots under a data directory.
type Writer struct {
	dir    string
	logger *zap.Logger
}

// New builds a Writer rooted at dir.
func New(dir string, logger *zap.Logger) (*Writer, error) {
	if dir == "" {
		return nil, fmt.Errorf("snapshot dir is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &Writer{dir: dir, logger: logger}, nil
}

// Save overwrites the last-fetch snapshot and returns its path.
func (w *Writer) Save(body string) (string, error) {
	path := filepath.Join(w.dir, fileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	w.logger.Debug("snapshot written",
		zap.String("path", path), zap.Int("bytes", len(body)))
	return path, nil
}
