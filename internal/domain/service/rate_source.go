package service

import (
	"context"

	"github.com/damon-houk/currency-rate-cache/internal/domain/entity"
)

// RateSource defines the interface for fetching the latest rates from a remote provider
type RateSource interface {
	// FetchLatest retrieves the current rate table relative to entity.BaseCurrency
	FetchLatest(ctx context.Context) (*entity.RateSnapshot, error)
}
