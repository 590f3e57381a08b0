package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mtgtools/arbitro-go/pkg/logging"
	"github.com/mtgtools/arbitro-go/pkg/metrics"
	"github.com/mtgtools/arbitro-go/pkg/sources"
)

const (
	defaultMaxAttempts    = 3
	defaultInitialBackoff = 1 * time.Second
	defaultMaxBackoff     = 30 * time.Second
)

// RetryPolicy bounds transient-failure retries for source calls.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    defaultMaxAttempts,
		InitialBackoff: defaultInitialBackoff,
		MaxBackoff:     defaultMaxBackoff,
	}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultMaxAttempts
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = defaultInitialBackoff
	}
	if p.MaxBackoff <= 0 {
		p.MaxBackoff = defaultMaxBackoff
	}
	return p
}

func (p RetryPolicy) backoff(attempt int) time.Duration {
	d := p.InitialBackoff * time.Duration(1<<(attempt-1))
	if d > p.MaxBackoff {
		d = p.MaxBackoff
	}
	return d
}

// fetchWithRetry runs fn up to MaxAttempts times with exponential backoff.
// A definitive failure (card not found) returns immediately without retrying.
// Context cancellation aborts the wait between attempts.
func fetchWithRetry(ctx context.Context, logger *logging.Logger, source string, policy RetryPolicy, fn func(ctx context.Context) error) error {
	policy = policy.withDefaults()

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		err := fn(ctx)
		metrics.RecordFetchAttempt(source, err)
		if err == nil {
			return nil
		}
		if errors.Is(err, sources.ErrCardNotFound) {
			return err
		}
		lastErr = err

		if attempt == policy.MaxAttempts {
			break
		}
		backoff := policy.backoff(attempt)
		if logger != nil {
			logger.Warn("fetch failed, retrying",
				"source", source,
				"attempt", attempt,
				"backoff", backoff.String(),
				"error", err.Error())
		}
		metrics.RecordFetchRetry(source)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	return fmt.Errorf("%w: %s: %v", sources.ErrSourceUnavailable, source, lastErr)
}
