package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// Ristretto adapts a ristretto cache to Cache. Each entry costs 1, so
// maxEntries bounds the number of entries.
type Ristretto[T any] struct {
	c   *ristretto.Cache
	ttl time.Duration
}

func NewRistretto[T any](maxEntries int64, ttl time.Duration) (*Ristretto[T], error) {
	if maxEntries < 1 {
		maxEntries = 1
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,

		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}
	return &Ristretto[T]{c: c, ttl: ttl}, nil
}

func (r *Ristretto[T]) Get(key string) (T, bool) {
	var zero T
	v, ok := r.c.Get(key)
	if !ok {
		return zero, false
	}
	data, ok := v.(T)
	if !ok {
		return zero, false
	}
	return data, true
}

// Set stores data and waits until it is visible to Get.
func (r *Ristretto[T]) Set(key string, data T) {
	r.c.SetWithTTL(key, data, 1, r.ttl)
	r.c.Wait()
}

func (r *Ristretto[T]) Delete(key string) {
	r.c.Del(key)
}

func (r *Ristretto[T]) Close() {
	r.c.Close()
}
