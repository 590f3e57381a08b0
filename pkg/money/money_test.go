package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_UppercasesCurrency(t *testing.T) {
	m, err := New(decimal.NewFromInt(10), "eur")
	require.NoError(t, err)
	assert.Equal(t, "EUR", m.Currency)
}

func TestNew_RejectsNegativeAmount(t *testing.T) {
	_, err := New(decimal.NewFromInt(-1), "EUR")
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestNew_RejectsEmptyCurrency(t *testing.T) {
	_, err := New(decimal.NewFromInt(1), "  ")
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestFromString(t *testing.T) {
	m, err := FromString("12.50", "USD")
	require.NoError(t, err)
	assert.True(t, m.Amount.Equal(decimal.RequireFromString("12.5")))

	_, err = FromString("not-a-number", "USD")
	assert.Error(t, err)
}

func TestAdd_SameCurrency(t *testing.T) {
	a, _ := New(decimal.RequireFromString("1.10"), "EUR")
	b, _ := New(decimal.RequireFromString("2.25"), "EUR")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Amount.Equal(decimal.RequireFromString("3.35")))
	assert.Equal(t, "EUR", sum.Currency)
}

func TestAdd_CommutativeAndAssociative(t *testing.T) {
	a, _ := FromString("0.01", "CLP")
	b, _ := FromString("99.99", "CLP")
	c, _ := FromString("1234.5", "CLP")

	ab, err := a.Add(b)
	require.NoError(t, err)
	ba, err := b.Add(a)
	require.NoError(t, err)
	assert.True(t, ab.Equal(ba))

	abc1, err := ab.Add(c)
	require.NoError(t, err)
	bc, err := b.Add(c)
	require.NoError(t, err)
	abc2, err := a.Add(bc)
	require.NoError(t, err)
	assert.True(t, abc1.Equal(abc2))
}

func TestAdd_MismatchedCurrencyFails(t *testing.T) {
	a, _ := FromString("1", "EUR")
	b, _ := FromString("1", "USD")

	_, err := a.Add(b)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	_, err = b.Add(a)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestDiff_Signed(t *testing.T) {
	a, _ := FromString("9000", "CLP")
	b, _ := FromString("9500", "CLP")

	d, err := a.Diff(b)
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.NewFromInt(-500)))

	_, err = a.Diff(Zero("USD"))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestCmp(t *testing.T) {
	a, _ := FromString("8", "EUR")
	b, _ := FromString("10", "EUR")

	got, err := a.Cmp(b)
	require.NoError(t, err)
	assert.Equal(t, -1, got)

	got, err = b.Cmp(a)
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	got, err = a.Cmp(a)
	require.NoError(t, err)
	assert.Equal(t, 0, got)

	_, err = a.Cmp(Zero("CLP"))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestEqual_DistinguishesCurrency(t *testing.T) {
	a, _ := FromString("5", "EUR")
	b, _ := FromString("5", "USD")
	assert.False(t, a.Equal(b))
}
