package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gridfan/pitwall/internal/platform/resilience"
)

type entry struct {
	values    []string
	expiresAt time.Time
}

// Store holds the predictor's driver and circuit reference lists. It is
// deliberately narrow: values are name lists keyed by list id, expiring
// after a fixed TTL, with singleflight-collapsed loading on miss. The
// standings pipeline never goes through here.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	flight  resilience.SingleFlight
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
	}
}

func (s *Store) Get(_ context.Context, key string) ([]string, bool) {
	if key == "" {
		return nil, false
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && !e.expiresAt.After(time.Now()) {
		s.Invalidate(context.Background(), key)
		return nil, false
	}

	return e.values, true
}

func (s *Store) Set(_ context.Context, key string, values []string) {
	if key == "" {
		return
	}

	e := entry{values: values}
	if s.ttl > 0 {
		e.expiresAt = time.Now().Add(s.ttl)
	}

	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
}

func (s *Store) Invalidate(_ context.Context, key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// GetOrLoad returns the cached list or loads it exactly once per expiry,
// no matter how many requests race on the miss. Loader failures are not
// cached.
func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) ([]string, error)) ([]string, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if values, ok := s.Get(ctx, key); ok {
		return values, nil
	}

	out, err, _ := s.flight.Do(key, func() (any, error) {
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}

		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		s.Set(ctx, key, loaded)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	values, ok := out.([]string)
	if !ok {
		return nil, fmt.Errorf("unexpected cached payload type %T", out)
	}
	return values, nil
}
