/*
dispute.go - The dispute state machine

PURPOSE:
  The tracker is the authoritative state machine per historical deposit.
  Each deposit leaves behind an entry (the record itself is not retained):
  the original amount, the owning client, and the current dispute state.

STATE TRANSITIONS:

    none --dispute--> disputed
    disputed --resolve--> resolved
    disputed --chargeback--> chargedback   (terminal)

  Optionally resolved --dispute--> disputed again: a resolved case may be
  reopened, mirroring real dispute handling. The engine owns that policy
  flag; chargedback is always terminal.

DUPLICATE DETECTION:
  Withdrawals never enter the dispute lifecycle, but their transaction ids
  still count as minted, so a later deposit cannot reuse them.
*/
package ledger

import "fmt"

// =============================================================================
// DISPUTE STATE
// =============================================================================

type DisputeState string

const (
	DisputeStateNone        DisputeState = "none"
	DisputeStateDisputed    DisputeState = "disputed"
	DisputeStateResolved    DisputeState = "resolved"
	DisputeStateChargedBack DisputeState = "chargedback"
)

// =============================================================================
// TRACKER
// =============================================================================

// disputeEntry is kept per deposit, forever. It is the only memory the
// engine retains of a deposit once its funds are in the balance.
type disputeEntry struct {
	amount Amount
	client ClientID
	state  DisputeState
}

type disputeTracker struct {
	entries map[TxID]*disputeEntry

	// minted holds every transaction id ever introduced by a deposit or
	// withdrawal, for duplicate detection across both kinds.
	minted map[TxID]struct{}
}

func newDisputeTracker() *disputeTracker {
	return &disputeTracker{
		entries: make(map[TxID]*disputeEntry),
		minted:  make(map[TxID]struct{}),
	}
}

func (t *disputeTracker) isMinted(tx TxID) bool {
	_, ok := t.minted[tx]
	return ok
}

// addDeposit registers a freshly applied deposit in state none.
// The caller must have checked isMinted first.
func (t *disputeTracker) addDeposit(tx TxID, client ClientID, amount Amount) {
	t.minted[tx] = struct{}{}
	t.entries[tx] = &disputeEntry{amount: amount, client: client, state: DisputeStateNone}
}

// addWithdrawal registers a withdrawal id for duplicate detection only.
func (t *disputeTracker) addWithdrawal(tx TxID) {
	t.minted[tx] = struct{}{}
}

// lookup resolves a dispute-family reference, enforcing existence and
// ownership. Withdrawal ids are minted but have no entry, so disputing a
// withdrawal fails here with ErrUnknownTx.
func (t *disputeTracker) lookup(tx TxID, client ClientID) (*disputeEntry, error) {
	entry, ok := t.entries[tx]
	if !ok {
		return nil, fmt.Errorf("%w: tx %d", ErrUnknownTx, tx)
	}
	if entry.client != client {
		return nil, fmt.Errorf("%w: tx %d belongs to client %d, not %d",
			ErrClientMismatch, tx, entry.client, client)
	}
	return entry, nil
}
