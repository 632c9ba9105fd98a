package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PawelBis/transaction-system/ledger"
)

func TestParseAmount(t *testing.T) {
	a, err := ledger.ParseAmount("1.5")
	require.NoError(t, err)
	assert.Equal(t, "1.5000", a.String())

	// Sign is a Record validation concern; the numeric layer accepts it.
	neg, err := ledger.ParseAmount("-3")
	require.NoError(t, err)
	assert.True(t, neg.IsNegative())

	_, err = ledger.ParseAmount("ten")
	assert.ErrorIs(t, err, ledger.ErrMalformedRecord)

	_, err = ledger.ParseAmount("")
	assert.ErrorIs(t, err, ledger.ErrMalformedRecord)
}

func TestParseAmount_RoundsToFourPlaces(t *testing.T) {
	a, err := ledger.ParseAmount("1.00005")
	require.NoError(t, err)
	assert.Equal(t, "1.0001", a.String())

	b, err := ledger.ParseAmount("2.99994")
	require.NoError(t, err)
	assert.Equal(t, "2.9999", b.String())
}

func TestParseAmount_MagnitudeCap(t *testing.T) {
	_, err := ledger.ParseAmount("10000000000000.0001")
	assert.ErrorIs(t, err, ledger.ErrArithmeticOverflow)

	// Exactly at the cap is fine.
	_, err = ledger.ParseAmount("10000000000000")
	assert.NoError(t, err)
}

func TestAmount_CheckedArithmetic(t *testing.T) {
	limit := ledger.MustAmount("10000000000000")
	tick := ledger.MustAmount("0.0001")

	_, err := limit.Add(tick)
	assert.ErrorIs(t, err, ledger.ErrArithmeticOverflow)

	_, err = ledger.MustAmount("-10000000000000").Sub(tick)
	assert.ErrorIs(t, err, ledger.ErrArithmeticOverflow)

	sum, err := ledger.MustAmount("1.5").Add(ledger.MustAmount("2.25"))
	require.NoError(t, err)
	assert.Equal(t, "3.7500", sum.String())

	diff, err := ledger.MustAmount("1.5").Sub(ledger.MustAmount("2.5"))
	require.NoError(t, err)
	assert.Equal(t, "-1.0000", diff.String())
	assert.True(t, diff.IsNegative())
}

func TestAmount_Comparisons(t *testing.T) {
	a := ledger.MustAmount("1.0")
	b := ledger.MustAmount("1.00")

	assert.True(t, a.Equal(b))
	assert.False(t, a.LessThan(b))
	assert.True(t, ledger.MustAmount("0.9999").LessThan(a))
	assert.True(t, ledger.Amount{}.IsZero())
}
