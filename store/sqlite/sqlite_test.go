package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PawelBis/transaction-system/ledger"
	"github.com/PawelBis/transaction-system/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveReport_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rows := []ledger.AccountSnapshot{
		{
			Client:    1,
			Available: ledger.MustAmount("-5"),
			Held:      ledger.MustAmount("10"),
			Total:     ledger.MustAmount("5"),
		},
		{
			Client:    2,
			Available: ledger.MustAmount("0"),
			Held:      ledger.MustAmount("0"),
			Total:     ledger.MustAmount("0"),
			Locked:    true,
		},
	}
	require.NoError(t, store.SaveReport(ctx, rows))

	// Saving again replaces rows instead of duplicating them.
	require.NoError(t, store.SaveReport(ctx, rows))

	got, err := store.LoadReport(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, ledger.ClientID(1), got[0].Client)
	assert.True(t, got[0].Available.Equal(ledger.MustAmount("-5")))
	assert.True(t, got[0].Held.Equal(ledger.MustAmount("10")))
	assert.False(t, got[0].Locked)

	assert.Equal(t, ledger.ClientID(2), got[1].Client)
	assert.True(t, got[1].Locked)
}

func TestSaveReport_Empty(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SaveReport(context.Background(), nil))

	got, err := store.LoadReport(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}
