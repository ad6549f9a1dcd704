// Package cache wraps ristretto behind the small TTL surface the
// services inject. The cache is strictly an optimization: a miss (or a
// not-yet-flushed write, ristretto buffers sets) only costs the caller a
// store lookup.
package cache

import (
	"time"

	"github.com/dgraph-io/ristretto"
)

type TTL struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

func NewTTL(ttl time.Duration) (*TTL, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     10000,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		return nil, err
	}
	return &TTL{cache: c, ttl: ttl}, nil
}

func (t *TTL) Get(key string) (any, bool) {
	return t.cache.Get(key)
}

func (t *TTL) Set(key string, value any) {
	t.cache.SetWithTTL(key, value, 1, t.ttl)
}

func (t *TTL) Del(key string) {
	t.cache.Del(key)
}
