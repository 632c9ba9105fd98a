/*
account.go - Per-client balance state

PURPOSE:
  One Account exists per client, created lazily on first reference and never
  destroyed during a run. It holds exactly two numbers and a lock flag:

    available - funds the client can withdraw or have placed under dispute
    held      - funds frozen pending dispute resolution
    locked    - true once a chargeback has occurred (monotonic)

  Total is NEVER stored. It is always computed as available + held on read,
  so it can never go stale or drift from its components.

MUTATION PRIMITIVES:
  Only the engine (same package) mutates accounts, through the primitives
  below. Every primitive validates first and mutates second, so a failed
  operation leaves the account exactly as it was. The single legal path to a
  negative available balance is hold(): disputing a deposit whose funds were
  already spent.
*/
package ledger

import "fmt"

// =============================================================================
// ACCOUNT - Mutable per-client ledger entry
// =============================================================================

type Account struct {
	client    ClientID
	available Amount
	held      Amount
	locked    bool
}

func newAccount(client ClientID) *Account {
	return &Account{client: client}
}

func (a *Account) Client() ClientID  { return a.client }
func (a *Account) Available() Amount { return a.available }
func (a *Account) Held() Amount      { return a.held }
func (a *Account) Locked() bool      { return a.locked }

// Total is derived on every read; there is no stored total field.
func (a *Account) Total() Amount {
	return Amount{Value: a.available.Value.Add(a.held.Value)}
}

// =============================================================================
// MUTATION PRIMITIVES - validate first, mutate second
// =============================================================================

// credit adds amount to available.
func (a *Account) credit(amount Amount) error {
	next, err := a.available.Add(amount)
	if err != nil {
		return err
	}
	a.available = next
	return nil
}

// debit removes amount from available, refusing to cross below zero.
func (a *Account) debit(amount Amount) error {
	if a.available.LessThan(amount) {
		return &InsufficientFundsError{Client: a.client, Available: a.available, Requested: amount}
	}
	next, err := a.available.Sub(amount)
	if err != nil {
		return err
	}
	a.available = next
	return nil
}

// hold moves amount from available to held. Available may legitimately go
// negative here: disputing a deposit whose funds were already withdrawn.
func (a *Account) hold(amount Amount) error {
	nextHeld, err := a.held.Add(amount)
	if err != nil {
		return err
	}
	nextAvail, err := a.available.Sub(amount)
	if err != nil {
		return err
	}
	a.held = nextHeld
	a.available = nextAvail
	return nil
}

// release moves amount back from held to available (dispute resolved).
func (a *Account) release(amount Amount) error {
	if a.held.LessThan(amount) {
		return fmt.Errorf("%w: release %s exceeds held %s", ErrInvalidState, amount, a.held)
	}
	nextHeld, err := a.held.Sub(amount)
	if err != nil {
		return err
	}
	nextAvail, err := a.available.Add(amount)
	if err != nil {
		return err
	}
	a.held = nextHeld
	a.available = nextAvail
	return nil
}

// voidHeld removes amount from held without refunding it (chargeback).
func (a *Account) voidHeld(amount Amount) error {
	if a.held.LessThan(amount) {
		return fmt.Errorf("%w: void %s exceeds held %s", ErrInvalidState, amount, a.held)
	}
	next, err := a.held.Sub(amount)
	if err != nil {
		return err
	}
	a.held = next
	return nil
}

// lock is monotonic: once locked, an account stays locked.
func (a *Account) lock() { a.locked = true }

// =============================================================================
// SNAPSHOT - Read-only point-in-time view
// =============================================================================

// AccountSnapshot is what the reporting boundary sees: a copy, safe to hand
// to renderers while the engine keeps running.
type AccountSnapshot struct {
	Client    ClientID
	Available Amount
	Held      Amount
	Total     Amount
	Locked    bool
}

func (a *Account) Snapshot() AccountSnapshot {
	return AccountSnapshot{
		Client:    a.client,
		Available: a.available,
		Held:      a.held,
		Total:     a.Total(),
		Locked:    a.locked,
	}
}
