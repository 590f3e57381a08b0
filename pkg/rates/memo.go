package rates

import (
	"context"
	"sync"

	"github.com/mtgtools/arbitro-go/pkg/metrics"
)

// Memo wraps a Provider and caches each (from,to) pair for its own lifetime.
// One Memo is created per pipeline run and discarded with it; rates are never
// shared across runs. Identity pairs (from == to) resolve to rate 1 without
// touching the underlying provider.
type Memo struct {
	provider Provider

	mu    sync.Mutex
	cache map[pairKey]Rate
}

type pairKey struct {
	from, to string
}

// NewMemo creates a per-run memoizing wrapper around a provider.
func NewMemo(provider Provider) *Memo {
	return &Memo{
		provider: provider,
		cache:    make(map[pairKey]Rate),
	}
}

// GetRate returns the memoized rate for the pair, fetching it from the
// underlying provider on first use.
func (m *Memo) GetRate(ctx context.Context, from, to string) (Rate, error) {
	if from == to {
		return Identity(from), nil
	}

	key := pairKey{from: from, to: to}

	m.mu.Lock()
	defer m.mu.Unlock()

	if rate, ok := m.cache[key]; ok {
		metrics.RecordRateLookup(from+"/"+to, true)
		return rate, nil
	}

	rate, err := m.provider.GetRate(ctx, from, to)
	if err != nil {
		return Rate{}, err
	}

	m.cache[key] = rate
	metrics.RecordRateLookup(from+"/"+to, false)
	return rate, nil
}

var _ Provider = (*Memo)(nil)
