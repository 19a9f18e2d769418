// Package repository internal/domain/repository/rate_store.go
package repository

import (
	"context"

	"github.com/damon-houk/currency-rate-cache/internal/domain/entity"
)

// RateStore defines the interface for persisting the local rate snapshot
type RateStore interface {
	// Save replaces the persisted snapshot. On failure the previous content is left intact.
	Save(ctx context.Context, snapshot *entity.RateSnapshot) error

	// Load returns the persisted snapshot, or nil with no error if nothing has been saved yet
	Load(ctx context.Context) (*entity.RateSnapshot, error)
}
