package ledger_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PawelBis/transaction-system/ledger"
)

// =============================================================================
// LIFECYCLE
// =============================================================================

func TestChannel_CloseSignalsEndOfStream(t *testing.T) {
	ch := ledger.NewChannel(4)
	p, err := ch.Producer()
	require.NoError(t, err)

	require.NoError(t, p.Send(deposit(1, 1, "1.0")))
	p.Close()

	rec, ok := ch.Receive()
	require.True(t, ok)
	assert.Equal(t, ledger.TxID(1), rec.Tx)

	_, ok = ch.Receive()
	assert.False(t, ok, "channel must report end-of-stream after last producer closes")
}

func TestChannel_SendAfterClose_Fails(t *testing.T) {
	ch := ledger.NewChannel(1)
	p, err := ch.Producer()
	require.NoError(t, err)
	p.Close()
	p.Close() // idempotent

	assert.ErrorIs(t, p.Send(deposit(1, 1, "1.0")), ledger.ErrChannelClosed)
}

func TestChannel_ProducerAfterSealed_Fails(t *testing.T) {
	ch := ledger.NewChannel(1)
	p, err := ch.Producer()
	require.NoError(t, err)
	p.Close()

	_, err = ch.Producer()
	assert.ErrorIs(t, err, ledger.ErrChannelClosed)
}

func TestChannel_StaysOpenWhileAnyProducerOpen(t *testing.T) {
	ch := ledger.NewChannel(4)
	p1, err := ch.Producer()
	require.NoError(t, err)
	p2, err := ch.Producer()
	require.NoError(t, err)

	p1.Close()
	require.NoError(t, p2.Send(deposit(1, 1, "1.0")))

	rec, ok := ch.Receive()
	require.True(t, ok)
	assert.Equal(t, ledger.ClientID(1), rec.Client)

	p2.Close()
	_, ok = ch.Receive()
	assert.False(t, ok)
}

// =============================================================================
// ORDERING - cross-producer independence
// =============================================================================

// producerScript builds a deterministic per-client sequence: deposits with
// occasional withdrawals and a dispute/resolve pair, using a disjoint tx id
// range per producer.
func producerScript(client uint16, txBase uint32, n int) []ledger.Record {
	recs := make([]ledger.Record, 0, n)
	for i := 0; i < n; i++ {
		tx := txBase + uint32(i)
		switch i % 5 {
		case 0, 1, 2:
			recs = append(recs, deposit(client, tx, fmt.Sprintf("%d.25", i%7+1)))
		case 3:
			recs = append(recs, withdrawal(client, tx, "1.0"))
		case 4:
			// Reference the deposit three records back.
			recs = append(recs, dispute(client, txBase+uint32(i-2)))
			recs = append(recs, resolve(client, txBase+uint32(i-2)))
		}
	}
	return recs
}

func TestChannel_TwoProducers_DisjointClientsMatchIndependentRuns(t *testing.T) {
	// GIVEN: Two scripted producers with disjoint clients and tx id ranges
	// WHEN: Both stream concurrently through one channel into one engine
	// THEN: Final balances equal each producer's sequence applied alone

	scriptA := producerScript(1, 1, 1000)
	scriptB := producerScript(2, 1_000_000, 1000)

	ch := ledger.NewChannel(64)
	engine := ledger.NewEngine()

	var wg sync.WaitGroup
	for _, script := range [][]ledger.Record{scriptA, scriptB} {
		p, err := ch.Producer()
		require.NoError(t, err)
		wg.Add(1)
		go func(p *ledger.Producer, recs []ledger.Record) {
			defer wg.Done()
			defer p.Close()
			for _, rec := range recs {
				if err := p.Send(rec); err != nil {
					return
				}
			}
		}(p, script)
	}

	engine.Run(context.Background(), ch)
	wg.Wait()

	// Reference engines: each script applied sequentially on its own.
	for client, script := range map[uint16][]ledger.Record{1: scriptA, 2: scriptB} {
		ref := ledger.NewEngine()
		for _, rec := range script {
			_ = ref.Process(rec)
		}
		want, ok := ref.Account(ledger.ClientID(client))
		require.True(t, ok)
		got, ok := engine.Account(ledger.ClientID(client))
		require.True(t, ok)

		assert.True(t, got.Available.Equal(want.Available),
			"client %d available: want %s, got %s", client, want.Available, got.Available)
		assert.True(t, got.Held.Equal(want.Held),
			"client %d held: want %s, got %s", client, want.Held, got.Held)
		assert.Equal(t, want.Locked, got.Locked)
	}
}

func TestChannel_PerProducerFIFO(t *testing.T) {
	// A single producer's records must arrive in the order it sent them:
	// deposit then withdrawal succeeds, the reverse would be rejected.

	ch := ledger.NewChannel(0) // rendezvous: every send waits for the consumer
	engine := ledger.NewEngine()
	p, err := ch.Producer()
	require.NoError(t, err)

	go func() {
		defer p.Close()
		_ = p.Send(deposit(7, 1, "10.0"))
		_ = p.Send(withdrawal(7, 2, "10.0"))
	}()

	engine.Run(context.Background(), ch)

	assert.Empty(t, engine.Rejections())
	snap, ok := engine.Account(7)
	require.True(t, ok)
	assert.True(t, snap.Available.IsZero())
}

// =============================================================================
// CANCELLATION - drain-and-stop extension
// =============================================================================

func TestEngine_Run_CancelDrainsBufferedRecords(t *testing.T) {
	// GIVEN: Three records already buffered, producers still open
	// WHEN: Run starts with an already-cancelled context
	// THEN: Buffered records are applied, then Run returns

	ch := ledger.NewChannel(8)
	p, err := ch.Producer()
	require.NoError(t, err)
	require.NoError(t, p.Send(deposit(1, 1, "10.0")))
	require.NoError(t, p.Send(withdrawal(1, 2, "4.0")))
	require.NoError(t, p.Send(deposit(2, 3, "1.0")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := ledger.NewEngine()
	engine.Run(ctx, ch) // must return without p ever closing

	snap, ok := engine.Account(1)
	require.True(t, ok)
	assert.True(t, snap.Available.Equal(ledger.MustAmount("6.0")))
	_, ok = engine.Account(2)
	assert.True(t, ok)

	p.Close()
}
