package main

import (
	"fmt"
	"os"

	"github.com/damon-houk/currency-rate-cache/internal/config"
	"github.com/damon-houk/currency-rate-cache/internal/domain/repository"
	"github.com/damon-houk/currency-rate-cache/internal/infrastructure/db"
	"github.com/damon-houk/currency-rate-cache/internal/infrastructure/logger"
	"github.com/damon-houk/currency-rate-cache/internal/platform/sqlite"
	"github.com/dgraph-io/badger/v3"
)

// openStore builds the configured rate store and returns a function releasing it
func openStore(cfg config.Config, log logger.Logger) (repository.RateStore, func() error, error) {
	switch cfg.Store {
	case config.StoreBadger:
		if err := os.MkdirAll(cfg.BadgerDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create badger directory: %w", err)
		}

		badgerDB, err := badger.Open(badger.DefaultOptions(cfg.BadgerDir).WithLogger(nil))
		if err != nil {
			return nil, nil, fmt.Errorf("open badger: %w", err)
		}
		return db.NewBadgerRateStore(badgerDB, log), badgerDB.Close, nil

	case config.StoreSQLite:
		sqliteDB, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		return db.NewSQLiteRateStore(sqliteDB.DB, log), sqliteDB.Close, nil

	default:
		return db.NewFileRateStore(cfg.RatesFile, log), func() error { return nil }, nil
	}
}
