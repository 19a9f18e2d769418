package service

import (
	"context"

	"github.com/damon-houk/currency-rate-cache/internal/domain/entity"
	domainsvc "github.com/damon-houk/currency-rate-cache/internal/domain/service"
	"github.com/damon-houk/currency-rate-cache/internal/infrastructure/logger"
)

// FreshnessPolicy decides whether a stored snapshot is still usable by comparing
// its date with the date of the latest snapshot the source can provide.
type FreshnessPolicy struct {
	source domainsvc.RateSource
	logger logger.Logger
}

// NewFreshnessPolicy creates a new freshness policy backed by source
func NewFreshnessPolicy(source domainsvc.RateSource, log logger.Logger) *FreshnessPolicy {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &FreshnessPolicy{
		source: source,
		logger: log.WithField("component", "freshness_policy"),
	}
}

// IsFresh reports whether local matches the provider's latest date
func (p *FreshnessPolicy) IsFresh(ctx context.Context, local *entity.RateSnapshot) bool {
	fresh, _ := p.Check(ctx, local)
	return fresh
}

// Check is IsFresh that also returns the snapshot fetched for the comparison.
// latest is nil when no fetch was made or the fetch failed.
//
// A failed fetch counts as fresh: an unreachable source must not block use of local data.
func (p *FreshnessPolicy) Check(ctx context.Context, local *entity.RateSnapshot) (fresh bool, latest *entity.RateSnapshot) {
	if local == nil || local.Date == "" {
		return false, nil
	}

	latest, err := p.source.FetchLatest(ctx)
	if err != nil {
		p.logger.Warn("Could not reach rate source to verify local snapshot, using local data", map[string]interface{}{
			"local_date": local.Date,
			"error":      err.Error(),
		})
		return true, nil
	}

	fresh = local.Date == latest.Date

	p.logger.Info("Checked local snapshot freshness", map[string]interface{}{
		"local_date":  local.Date,
		"latest_date": latest.Date,
		"fresh":       fresh,
	})

	return fresh, latest
}
