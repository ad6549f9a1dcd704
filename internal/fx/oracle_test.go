package fx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dkhomenko/spendbot/internal/errs"
	"github.com/dkhomenko/spendbot/internal/models"
	"github.com/dkhomenko/spendbot/pkg/helpers"
)

type fakeRateStore struct {
	rates    map[string]*models.ExchangeRate
	getErr   error
	inserted []*models.ExchangeRate
}

func newFakeRateStore() *fakeRateStore {
	return &fakeRateStore{rates: map[string]*models.ExchangeRate{}}
}

func (f *fakeRateStore) GetRate(ctx context.Context, date string) (*models.ExchangeRate, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	rate, ok := f.rates[date]
	if !ok {
		return nil, nil
	}
	copied := *rate
	return &copied, nil
}

func (f *fakeRateStore) InsertRate(ctx context.Context, rate *models.ExchangeRate) error {
	f.inserted = append(f.inserted, rate)
	if _, ok := f.rates[rate.RateDate]; ok {
		return nil
	}
	copied := *rate
	f.rates[rate.RateDate] = &copied
	return nil
}

type fakeFetcher struct {
	rates map[string]*models.ExchangeRate
	errs  map[string]error
	calls []string
}

func (f *fakeFetcher) FetchDaily(ctx context.Context, date string) (*models.ExchangeRate, error) {
	f.calls = append(f.calls, date)
	if err, ok := f.errs[date]; ok {
		return nil, err
	}
	if rate, ok := f.rates[date]; ok {
		copied := *rate
		return &copied, nil
	}
	return nil, errs.NewFetchError("no rate configured for " + date)
}

type fakeCache struct {
	entries map[string]any
}

func newFakeCache() *fakeCache { return &fakeCache{entries: map[string]any{}} }

func (f *fakeCache) Get(key string) (any, bool) {
	v, ok := f.entries[key]
	return v, ok
}

func (f *fakeCache) Set(key string, value any) { f.entries[key] = value }

func testRate(date string, pln, uah float64) *models.ExchangeRate {
	return &models.ExchangeRate{
		RateDate: date,
		PLN:      decimal.NewFromFloat(pln),
		UAH:      decimal.NewFromFloat(uah),
		USD:      decimal.NewFromInt(1),
	}
}

func newTestOracle(store *fakeRateStore, fetcher *fakeFetcher, cache *fakeCache, today string) *Oracle {
	o := NewOracle(store, fetcher, cache)
	now, _ := time.Parse(models.DateLayout, today)
	o.clockNow = func() time.Time { return now }
	return o
}

func TestResolveCacheHit(t *testing.T) {
	store := newFakeRateStore()
	fetcher := &fakeFetcher{}
	cache := newFakeCache()
	cache.Set("fx:2024-06-01", testRate("2024-06-01", 4.0, 38.0))

	o := newTestOracle(store, fetcher, cache, "2024-06-01")

	got, err := o.Resolve(helpers.TestCtx(), "2024-06-01")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if got.RateDate != "2024-06-01" {
		t.Fatalf("rate date mismatch: got %s", got.RateDate)
	}
	if len(fetcher.calls) != 0 {
		t.Fatalf("cache hit should not fetch, got calls %v", fetcher.calls)
	}
}

func TestResolveStoreHitPopulatesCache(t *testing.T) {
	store := newFakeRateStore()
	store.rates["2024-05-01"] = testRate("2024-05-01", 3.9, 39.5)
	fetcher := &fakeFetcher{}
	cache := newFakeCache()

	o := newTestOracle(store, fetcher, cache, "2024-06-01")

	got, err := o.Resolve(helpers.TestCtx(), "2024-05-01")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if got.IsApprox {
		t.Fatal("stored rate must be authoritative, not approximate")
	}
	if _, ok := cache.Get("fx:2024-05-01"); !ok {
		t.Fatal("store hit should populate the cache")
	}
	if len(fetcher.calls) != 0 {
		t.Fatalf("store hit should not fetch, got calls %v", fetcher.calls)
	}
}

func TestResolveFetchPersistsAndCaches(t *testing.T) {
	store := newFakeRateStore()
	fetcher := &fakeFetcher{rates: map[string]*models.ExchangeRate{
		"2024-06-01": testRate("2024-06-01", 4.0, 38.0),
	}}
	cache := newFakeCache()

	o := newTestOracle(store, fetcher, cache, "2024-06-01")

	got, err := o.Resolve(helpers.TestCtx(), "2024-06-01")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if got.IsApprox {
		t.Fatal("fresh fetch must not be approximate")
	}
	if len(store.inserted) != 1 {
		t.Fatalf("expected one persisted rate, got %d", len(store.inserted))
	}
	if _, ok := cache.Get("fx:2024-06-01"); !ok {
		t.Fatal("fetched rate should be cached")
	}
}

func TestResolveSameDayFallback(t *testing.T) {
	store := newFakeRateStore()
	fetcher := &fakeFetcher{
		rates: map[string]*models.ExchangeRate{
			"2024-06-01": testRate("2024-06-01", 4.0, 38.0),
		},
		errs: map[string]error{
			"2024-01-05": errs.NewFetchError("no data for that date"),
		},
	}
	cache := newFakeCache()

	o := newTestOracle(store, fetcher, cache, "2024-06-01")

	got, err := o.Resolve(helpers.TestCtx(), "2024-01-05")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if got.RateDate != "2024-01-05" {
		t.Fatalf("fallback must carry the requested date, got %s", got.RateDate)
	}
	if !got.IsApprox {
		t.Fatal("fallback rate must be flagged approximate")
	}
	if !got.PLN.Equal(decimal.NewFromFloat(4.0)) || !got.UAH.Equal(decimal.NewFromFloat(38.0)) {
		t.Fatalf("fallback should borrow today's factors, got pln=%s uah=%s", got.PLN, got.UAH)
	}

	// Today's rate was persisted exactly, never the approximate copy.
	if len(store.inserted) != 1 || store.inserted[0].RateDate != "2024-06-01" {
		t.Fatalf("expected today's rate persisted once, got %+v", store.inserted)
	}
	if store.inserted[0].IsApprox {
		t.Fatal("a persisted rate must never be approximate")
	}
}

func TestResolveFallbackPrefersStoredToday(t *testing.T) {
	store := newFakeRateStore()
	store.rates["2024-06-01"] = testRate("2024-06-01", 4.2, 37.0)
	fetcher := &fakeFetcher{errs: map[string]error{
		"2024-01-05": errs.NewFetchError("no data"),
	}}
	cache := newFakeCache()

	o := newTestOracle(store, fetcher, cache, "2024-06-01")

	got, err := o.Resolve(helpers.TestCtx(), "2024-01-05")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if !got.IsApprox || !got.PLN.Equal(decimal.NewFromFloat(4.2)) {
		t.Fatalf("expected stored today's factors relabeled, got %+v", got)
	}
	if len(fetcher.calls) != 1 {
		t.Fatalf("fallback should not re-fetch when today is stored, calls %v", fetcher.calls)
	}
}

func TestResolveTodayFailureIsTerminal(t *testing.T) {
	store := newFakeRateStore()
	fetcher := &fakeFetcher{errs: map[string]error{
		"2024-06-01": errs.NewFetchError("provider down"),
	}}
	cache := newFakeCache()

	o := newTestOracle(store, fetcher, cache, "2024-06-01")

	_, err := o.Resolve(helpers.TestCtx(), "2024-06-01")
	var ferr *errs.FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if len(fetcher.calls) != 1 {
		t.Fatalf("today's failure must not trigger a fallback fetch, calls %v", fetcher.calls)
	}
}

func TestResolveFallbackFailurePropagatesOriginalError(t *testing.T) {
	store := newFakeRateStore()
	fetcher := &fakeFetcher{errs: map[string]error{
		"2024-01-05": errs.NewFetchError("original failure"),
		"2024-06-01": errs.NewFetchError("fallback failure"),
	}}
	cache := newFakeCache()

	o := newTestOracle(store, fetcher, cache, "2024-06-01")

	_, err := o.Resolve(helpers.TestCtx(), "2024-01-05")
	if err == nil || err.Error() != "original failure" {
		t.Fatalf("expected the original fetch error, got %v", err)
	}
}

func TestResolveIdempotentPersistence(t *testing.T) {
	store := newFakeRateStore()
	fetcher := &fakeFetcher{rates: map[string]*models.ExchangeRate{
		"2024-05-01": testRate("2024-05-01", 4.0, 38.0),
	}}

	// A cache that never hits, forcing every resolution down the chain.
	o := newTestOracle(store, fetcher, newFakeCache(), "2024-06-01")
	if _, err := o.Resolve(helpers.TestCtx(), "2024-05-01"); err != nil {
		t.Fatalf("first Resolve error: %v", err)
	}

	o2 := newTestOracle(store, fetcher, newFakeCache(), "2024-06-01")
	if _, err := o2.Resolve(helpers.TestCtx(), "2024-05-01"); err != nil {
		t.Fatalf("second Resolve error: %v", err)
	}

	if len(store.inserted) != 1 {
		t.Fatalf("expected a single persisted row, got %d", len(store.inserted))
	}
	if len(fetcher.calls) != 1 {
		t.Fatalf("second resolution should reuse the persisted row, calls %v", fetcher.calls)
	}
}
