package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/damon-houk/currency-rate-cache/internal/domain/entity"
	"github.com/damon-houk/currency-rate-cache/internal/domain/repository"
	"github.com/damon-houk/currency-rate-cache/internal/infrastructure/logger"
	"github.com/dgraph-io/badger/v3"
)

var snapshotKey = []byte("rates:latest")

// BadgerRateStore implements the rate store interface using BadgerDB
type BadgerRateStore struct {
	db     *badger.DB
	logger logger.Logger
}

var _ repository.RateStore = (*BadgerRateStore)(nil)

// NewBadgerRateStore creates a new BadgerDB rate store
func NewBadgerRateStore(db *badger.DB, log logger.Logger) *BadgerRateStore {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &BadgerRateStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "rate_store", "store": "badger"}),
	}
}

// Save replaces the stored snapshot in a single transaction
func (s *BadgerRateStore) Save(ctx context.Context, snapshot *entity.RateSnapshot) error {
	data, err := encodeSnapshot(snapshot)
	if err != nil {
		return fmt.Errorf("%w: %w", entity.ErrWriteFailure, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey, data)
	})
	if err != nil {
		return fmt.Errorf("%w: failed to store snapshot: %w", entity.ErrWriteFailure, err)
	}

	s.logger.Info("Stored snapshot", map[string]interface{}{"date": snapshot.Date})

	return nil
}

// Load retrieves the stored snapshot, or nil if none has been saved
func (s *BadgerRateStore) Load(ctx context.Context) (*entity.RateSnapshot, error) {
	var snapshot *entity.RateSnapshot

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			decoded, err := decodeSnapshot(val)
			if err != nil {
				return fmt.Errorf("%w: %w", entity.ErrCorruptStore, err)
			}
			snapshot = decoded
			return nil
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		s.logger.Debug("No stored snapshot", nil)
		return nil, nil
	}

	if errors.Is(err, entity.ErrCorruptStore) {
		return nil, err
	}

	if err != nil {
		return nil, fmt.Errorf("%w: failed to retrieve snapshot: %w", entity.ErrCorruptStore, err)
	}

	return snapshot, nil
}
