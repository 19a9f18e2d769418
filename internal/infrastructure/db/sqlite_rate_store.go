package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/damon-houk/currency-rate-cache/internal/domain/entity"
	"github.com/damon-houk/currency-rate-cache/internal/domain/repository"
	"github.com/damon-houk/currency-rate-cache/internal/infrastructure/logger"
)

// SQLiteRateStore keeps the rate snapshot in a single-row sqlite table
type SQLiteRateStore struct {
	db     *sql.DB
	logger logger.Logger
}

var _ repository.RateStore = (*SQLiteRateStore)(nil)

// NewSQLiteRateStore creates a new sqlite-backed rate store
func NewSQLiteRateStore(db *sql.DB, log logger.Logger) *SQLiteRateStore {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &SQLiteRateStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "rate_store", "store": "sqlite"}),
	}
}

// Save replaces the stored snapshot with one statement
func (s *SQLiteRateStore) Save(ctx context.Context, snapshot *entity.RateSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("%w: snapshot is nil", entity.ErrWriteFailure)
	}

	if err := snapshot.Validate(); err != nil {
		return fmt.Errorf("%w: refusing to store invalid snapshot: %w", entity.ErrWriteFailure, err)
	}

	rates, err := json.Marshal(snapshot.Rates)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal rates: %w", entity.ErrWriteFailure, err)
	}

	const query = `INSERT OR REPLACE INTO rate_snapshots (id, date, rates, saved_at) VALUES (1, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, snapshot.Date, string(rates), time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("%w: save snapshot: %w", entity.ErrWriteFailure, err)
	}

	s.logger.Info("Stored snapshot", map[string]interface{}{"date": snapshot.Date})

	return nil
}

// Load retrieves the stored snapshot, or nil if the table is empty
func (s *SQLiteRateStore) Load(ctx context.Context) (*entity.RateSnapshot, error) {
	const query = `SELECT date, rates FROM rate_snapshots WHERE id = 1`

	var date, rates string
	err := s.db.QueryRowContext(ctx, query).Scan(&date, &rates)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Debug("No stored snapshot", nil)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load snapshot: %w", entity.ErrCorruptStore, err)
	}

	snapshot := &entity.RateSnapshot{Date: date}
	if err := json.Unmarshal([]byte(rates), &snapshot.Rates); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal rates: %w", entity.ErrCorruptStore, err)
	}

	if err := snapshot.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrCorruptStore, err)
	}

	return snapshot, nil
}
