// Package service internal/application/service/rate_cache.go
package service

import (
	"context"
	"fmt"

	"github.com/damon-houk/currency-rate-cache/internal/domain/entity"
	"github.com/damon-houk/currency-rate-cache/internal/domain/repository"
	domainsvc "github.com/damon-houk/currency-rate-cache/internal/domain/service"
	"github.com/damon-houk/currency-rate-cache/internal/infrastructure/cache"
	"github.com/damon-houk/currency-rate-cache/internal/infrastructure/logger"
)

// RateCache combines the rate store, the rate source and the freshness policy
// into a single "get usable rates" operation, and holds the snapshot it resolved.
type RateCache struct {
	store  repository.RateStore
	source domainsvc.RateSource
	policy *FreshnessPolicy
	held   *cache.SnapshotCache
	logger logger.Logger
}

// NewRateCache creates a new rate cache
func NewRateCache(store repository.RateStore, source domainsvc.RateSource, log logger.Logger) *RateCache {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &RateCache{
		store:  store,
		source: source,
		policy: NewFreshnessPolicy(source, log),
		held:   cache.NewSnapshotCache(),
		logger: log.WithField("component", "rate_cache"),
	}
}

// GetUsableRates resolves the best snapshot available: the stored one when it is
// fresh, otherwise a newly fetched one, otherwise the stored one as a degraded
// result. It returns nil when no rates can be obtained at all.
func (c *RateCache) GetUsableRates(ctx context.Context) *entity.RateSnapshot {
	local, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Warn("Stored snapshot is unusable, treating as absent", map[string]interface{}{
			"error": err.Error(),
		})
		local = nil
	}

	if local != nil {
		fresh, latest := c.policy.Check(ctx, local)
		if fresh {
			origin := cache.OriginStore
			if latest == nil {
				origin = cache.OriginDegraded
			}
			c.held.Put(local, origin)

			c.logger.Info("Using stored snapshot", map[string]interface{}{
				"date":     local.Date,
				"verified": latest != nil,
			})
			return local
		}

		if latest != nil {
			// The freshness check already fetched the newer snapshot
			return c.adopt(ctx, latest)
		}
	}

	c.logger.Info("Stored snapshot is missing or outdated, fetching latest rates", nil)

	fetched, err := c.source.FetchLatest(ctx)
	if err != nil {
		if local != nil {
			c.logger.Warn("Could not fetch latest rates, using stored snapshot", map[string]interface{}{
				"date":  local.Date,
				"error": err.Error(),
			})
			c.held.Put(local, cache.OriginDegraded)
			return local
		}

		c.logger.Error("No rates available", map[string]interface{}{
			"error": err.Error(),
		})
		c.held.Clear()
		return nil
	}

	return c.adopt(ctx, fetched)
}

// ForceRefresh fetches the latest rates without consulting the freshness policy.
// On failure the held snapshot is kept and the source error is returned.
func (c *RateCache) ForceRefresh(ctx context.Context) (*entity.RateSnapshot, error) {
	fetched, err := c.source.FetchLatest(ctx)
	if err != nil {
		c.logger.Error("Manual refresh failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to refresh rates: %w", err)
	}

	return c.adopt(ctx, fetched), nil
}

// Current returns the snapshot resolved by the last call, or nil
func (c *RateCache) Current() *entity.RateSnapshot {
	return c.held.Get()
}

// Status returns the held snapshot with its origin
func (c *RateCache) Status() cache.Entry {
	return c.held.Entry()
}

// adopt persists a freshly fetched snapshot and makes it the held one.
// A failed save is logged and does not prevent using the snapshot.
func (c *RateCache) adopt(ctx context.Context, fetched *entity.RateSnapshot) *entity.RateSnapshot {
	if err := c.store.Save(ctx, fetched); err != nil {
		c.logger.Error("Failed to store fetched snapshot", map[string]interface{}{
			"date":  fetched.Date,
			"error": err.Error(),
		})
	} else {
		c.logger.Info("Stored new snapshot", map[string]interface{}{
			"date":       fetched.Date,
			"currencies": len(fetched.Rates),
		})
	}

	c.held.Put(fetched, cache.OriginSource)
	return fetched
}
