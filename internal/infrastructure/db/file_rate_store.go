// Package db internal/infrastructure/db/file_rate_store.go
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/damon-houk/currency-rate-cache/internal/domain/entity"
	"github.com/damon-houk/currency-rate-cache/internal/domain/repository"
	"github.com/damon-houk/currency-rate-cache/internal/infrastructure/logger"
)

// DefaultRatesFile is the file name used when no path is configured
const DefaultRatesFile = "exchange_rates.json"

// FileRateStore keeps the rate snapshot in a single human-readable JSON file
type FileRateStore struct {
	path   string
	logger logger.Logger
}

var _ repository.RateStore = (*FileRateStore)(nil)

// NewFileRateStore creates a new file-backed rate store
func NewFileRateStore(path string, log logger.Logger) *FileRateStore {
	if path == "" {
		path = DefaultRatesFile
	}

	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &FileRateStore{
		path:   path,
		logger: log.WithFields(map[string]interface{}{"component": "rate_store", "store": "file"}),
	}
}

// Path returns the location of the snapshot file
func (s *FileRateStore) Path() string {
	return s.path
}

// Load reads the snapshot file. A missing file is not an error.
func (s *FileRateStore) Load(ctx context.Context) (*entity.RateSnapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("No stored snapshot", map[string]interface{}{"path": s.path})
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %w", entity.ErrCorruptStore, s.path, err)
	}

	snapshot, err := decodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", entity.ErrCorruptStore, s.path, err)
	}

	s.logger.Debug("Loaded stored snapshot", map[string]interface{}{
		"path": s.path,
		"date": snapshot.Date,
	})

	return snapshot, nil
}

// Save writes the snapshot to a temporary file in the same directory and renames
// it over the target, so readers see either the old or the new content.
func (s *FileRateStore) Save(ctx context.Context, snapshot *entity.RateSnapshot) error {
	data, err := encodeSnapshot(snapshot)
	if err != nil {
		return fmt.Errorf("%w: %w", entity.ErrWriteFailure, err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp file in %s: %w", entity.ErrWriteFailure, dir, err)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			s.logger.Warn("Failed to remove temp file", map[string]interface{}{
				"path":  tmpPath,
				"error": rmErr.Error(),
			})
		}
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("%w: failed to write %s: %w", entity.ErrWriteFailure, tmpPath, err)
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("%w: failed to sync %s: %w", entity.ErrWriteFailure, tmpPath, err)
	}

	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("%w: failed to close %s: %w", entity.ErrWriteFailure, tmpPath, err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		cleanup()
		return fmt.Errorf("%w: failed to replace %s: %w", entity.ErrWriteFailure, s.path, err)
	}

	s.logger.Info("Stored snapshot", map[string]interface{}{
		"path": s.path,
		"date": snapshot.Date,
	})

	return nil
}

// encodeSnapshot validates and serializes a snapshot with 4-space indentation
func encodeSnapshot(snapshot *entity.RateSnapshot) ([]byte, error) {
	if snapshot == nil {
		return nil, errors.New("snapshot is nil")
	}

	if err := snapshot.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to store invalid snapshot: %w", err)
	}

	data, err := json.MarshalIndent(snapshot, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	return append(data, '\n'), nil
}

// decodeSnapshot parses and validates stored snapshot content
func decodeSnapshot(data []byte) (*entity.RateSnapshot, error) {
	var snapshot entity.RateSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	if err := snapshot.Validate(); err != nil {
		return nil, err
	}

	return &snapshot, nil
}
