package rates

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	calls map[string]int
	fail  bool
}

func newCountingProvider() *countingProvider {
	return &countingProvider{calls: make(map[string]int)}
}

func (p *countingProvider) GetRate(_ context.Context, from, to string) (Rate, error) {
	p.calls[from+"/"+to]++
	if p.fail {
		return Rate{}, fmt.Errorf("%w: %s/%s", ErrRateUnavailable, from, to)
	}
	return NewRate(from, to, decimal.NewFromInt(900), time.Now())
}

func TestMemo_FetchesEachPairOnce(t *testing.T) {
	upstream := newCountingProvider()
	memo := NewMemo(upstream)

	for i := 0; i < 5; i++ {
		rate, err := memo.GetRate(context.Background(), "USD", "CLP")
		require.NoError(t, err)
		assert.True(t, rate.Value.Equal(decimal.NewFromInt(900)))
	}

	assert.Equal(t, 1, upstream.calls["USD/CLP"])
}

func TestMemo_DistinctPairsFetchedSeparately(t *testing.T) {
	upstream := newCountingProvider()
	memo := NewMemo(upstream)

	_, err := memo.GetRate(context.Background(), "USD", "CLP")
	require.NoError(t, err)
	_, err = memo.GetRate(context.Background(), "EUR", "CLP")
	require.NoError(t, err)
	_, err = memo.GetRate(context.Background(), "EUR", "CLP")
	require.NoError(t, err)

	assert.Equal(t, 1, upstream.calls["USD/CLP"])
	assert.Equal(t, 1, upstream.calls["EUR/CLP"])
}

func TestMemo_IdentityPairSkipsProvider(t *testing.T) {
	upstream := newCountingProvider()
	memo := NewMemo(upstream)

	rate, err := memo.GetRate(context.Background(), "CLP", "CLP")
	require.NoError(t, err)
	assert.True(t, rate.Value.Equal(decimal.NewFromInt(1)))
	assert.Empty(t, upstream.calls)
}

func TestMemo_ErrorsAreNotCached(t *testing.T) {
	upstream := newCountingProvider()
	upstream.fail = true
	memo := NewMemo(upstream)

	_, err := memo.GetRate(context.Background(), "USD", "CLP")
	assert.ErrorIs(t, err, ErrRateUnavailable)

	upstream.fail = false
	_, err = memo.GetRate(context.Background(), "USD", "CLP")
	require.NoError(t, err)
	assert.Equal(t, 2, upstream.calls["USD/CLP"])
}
