// Package fx resolves and applies USD-based exchange rates.
//
// Resolution order for a date: in-memory cache, persistent store, remote
// fetch, then a same-day fallback that borrows today's rate and labels
// it approximate. Persisted rates are authoritative and never
// approximate; the first successful write for a date wins.
package fx

import (
	"context"
	"time"

	"github.com/dkhomenko/spendbot/internal/models"
	"github.com/dkhomenko/spendbot/pkg/logger"
)

type rateStore interface {
	// GetRate returns (nil, nil) when no rate is persisted for the date.
	GetRate(ctx context.Context, date string) (*models.ExchangeRate, error)
	// InsertRate is first-writer-wins: an existing row is left untouched.
	InsertRate(ctx context.Context, rate *models.ExchangeRate) error
}

type rateFetcher interface {
	FetchDaily(ctx context.Context, date string) (*models.ExchangeRate, error)
}

type rateCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

type Oracle struct {
	store    rateStore
	fetcher  rateFetcher
	cache    rateCache
	clockNow func() time.Time
}

func NewOracle(store rateStore, fetcher rateFetcher, cache rateCache) *Oracle {
	return &Oracle{
		store:    store,
		fetcher:  fetcher,
		cache:    cache,
		clockNow: time.Now,
	}
}

// Resolve returns the exchange rate for an ISO calendar date. A date
// whose historical fetch fails is served today's rate relabeled as
// approximate; a failure for today itself is terminal.
func (o *Oracle) Resolve(ctx context.Context, date string) (*models.ExchangeRate, error) {
	key := cacheKey(date)
	if cached, ok := o.cache.Get(key); ok {
		return cached.(*models.ExchangeRate), nil
	}

	stored, err := o.store.GetRate(ctx, date)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		o.cache.Set(key, stored)
		return stored, nil
	}

	fresh, fetchErr := o.fetcher.FetchDaily(ctx, date)
	if fetchErr == nil {
		if err := o.store.InsertRate(ctx, fresh); err != nil {
			return nil, err
		}
		o.cache.Set(key, fresh)
		return fresh, nil
	}

	fallback, err := o.resolveFallback(ctx, date, fetchErr)
	if err != nil {
		return nil, err
	}
	o.cache.Set(key, fallback)
	return fallback, nil
}

// resolveFallback resolves today's rate (cache, store, then a fresh
// fetch) and relabels a copy with the originally requested date. When
// the requested date is today there is nothing to borrow, and when even
// today cannot be resolved the original fetch error propagates, not the
// fallback's.
func (o *Oracle) resolveFallback(ctx context.Context, date string, fetchErr error) (*models.ExchangeRate, error) {
	today := o.clockNow().UTC().Format(models.DateLayout)
	if date == today {
		return nil, fetchErr
	}

	log := logger.FromContext(ctx)
	log.Warn("historical rate fetch failed, borrowing today's rate", "date", date, "error", fetchErr)

	if cached, ok := o.cache.Get(cacheKey(today)); ok {
		rate := cached.(*models.ExchangeRate)
		if !rate.IsApprox {
			return rate.ApproxFor(date), nil
		}
	}

	stored, err := o.store.GetRate(ctx, today)
	if err == nil && stored != nil {
		o.cache.Set(cacheKey(today), stored)
		return stored.ApproxFor(date), nil
	}

	latest, err := o.fetcher.FetchDaily(ctx, today)
	if err != nil {
		return nil, fetchErr
	}
	if err := o.store.InsertRate(ctx, latest); err != nil {
		return nil, fetchErr
	}
	o.cache.Set(cacheKey(today), latest)
	return latest.ApproxFor(date), nil
}

func cacheKey(date string) string {
	return "fx:" + date
}
