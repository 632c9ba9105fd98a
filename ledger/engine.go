/*
engine.go - The single-consumer transaction engine

PURPOSE:
  The Engine is a sequential reducer over the ingestion channel's output. It
  exclusively owns the account map and the dispute tracker; because exactly
  one goroutine ever runs it, the strict per-account and per-dispute
  invariants hold without any locks.

DISPATCH RULES (per record kind):
  deposit     locked? reject. duplicate id? reject. credit available, track.
  withdrawal  locked? reject. duplicate id? reject. insufficient? reject.
  dispute     unknown/mismatch/illegal-state/locked? reject. available->held.
  resolve     requires disputed. held->available.
  chargeback  requires disputed. void held, lock the account.

REJECTIONS:
  Every rejection is local to its record: no partial mutation, and the
  stream continues. Rejected records are retained (and optionally streamed
  through an OnReject hook) so callers can observe exactly what was refused
  and why; they are never silently absorbed into balances.
*/
package ledger

import (
	"context"
	"fmt"
)

// =============================================================================
// REJECTION - An observed per-record failure
// =============================================================================

type Rejection struct {
	Record Record
	Err    error
}

// =============================================================================
// ENGINE
// =============================================================================

type Engine struct {
	accounts map[ClientID]*Account
	tracker  *disputeTracker

	// allowRedispute permits resolved -> disputed reopening. Default true;
	// see WithRedispute.
	allowRedispute bool

	rejections []Rejection
	onReject   func(Rejection)
}

type Option func(*Engine)

// WithRedispute controls whether a resolved dispute may be reopened.
// The default engine allows it, matching real-world case reopening.
func WithRedispute(allowed bool) Option {
	return func(e *Engine) { e.allowRedispute = allowed }
}

// WithOnReject installs a hook invoked for every rejected record, in order.
func WithOnReject(fn func(Rejection)) Option {
	return func(e *Engine) { e.onReject = fn }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		accounts:       make(map[ClientID]*Account),
		tracker:        newDisputeTracker(),
		allowRedispute: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// account returns the ledger entry for a client, creating it lazily.
func (e *Engine) account(id ClientID) *Account {
	acct, ok := e.accounts[id]
	if !ok {
		acct = newAccount(id)
		e.accounts[id] = acct
	}
	return acct
}

// =============================================================================
// PROCESS - Apply one record
// =============================================================================

// Process applies a single record. On rejection it records the reason,
// invokes the OnReject hook if set, and returns the error; engine state is
// unchanged by a rejected record.
func (e *Engine) Process(rec Record) error {
	if err := e.apply(rec); err != nil {
		rej := Rejection{Record: rec, Err: err}
		e.rejections = append(e.rejections, rej)
		if e.onReject != nil {
			e.onReject(rej)
		}
		return err
	}
	return nil
}

func (e *Engine) apply(rec Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	switch rec.Kind {
	case KindDeposit:
		return e.deposit(rec)
	case KindWithdrawal:
		return e.withdraw(rec)
	case KindDispute:
		return e.dispute(rec)
	case KindResolve:
		return e.resolve(rec)
	case KindChargeback:
		return e.chargeback(rec)
	}
	return nil // unreachable after Validate
}

func (e *Engine) deposit(rec Record) error {
	acct := e.account(rec.Client)
	if acct.locked {
		return lockedErr(rec.Client)
	}
	if e.tracker.isMinted(rec.Tx) {
		return duplicateErr(rec.Tx)
	}
	if err := acct.credit(*rec.Amount); err != nil {
		return err
	}
	e.tracker.addDeposit(rec.Tx, rec.Client, *rec.Amount)
	return nil
}

func (e *Engine) withdraw(rec Record) error {
	acct := e.account(rec.Client)
	if acct.locked {
		return lockedErr(rec.Client)
	}
	if e.tracker.isMinted(rec.Tx) {
		return duplicateErr(rec.Tx)
	}
	if err := acct.debit(*rec.Amount); err != nil {
		return err
	}
	// Withdrawals never enter the dispute lifecycle; their ids are only
	// reserved so a later deposit cannot reuse them.
	e.tracker.addWithdrawal(rec.Tx)
	return nil
}

func (e *Engine) dispute(rec Record) error {
	entry, err := e.tracker.lookup(rec.Tx, rec.Client)
	if err != nil {
		return err
	}
	reopening := e.allowRedispute && entry.state == DisputeStateResolved
	if entry.state != DisputeStateNone && !reopening {
		return &InvalidStateError{Tx: rec.Tx, State: entry.state, Requested: rec.Kind}
	}
	acct := e.account(rec.Client)
	if acct.locked {
		return lockedErr(rec.Client)
	}
	if err := acct.hold(entry.amount); err != nil {
		return err
	}
	entry.state = DisputeStateDisputed
	return nil
}

func (e *Engine) resolve(rec Record) error {
	entry, err := e.tracker.lookup(rec.Tx, rec.Client)
	if err != nil {
		return err
	}
	if entry.state != DisputeStateDisputed {
		return &InvalidStateError{Tx: rec.Tx, State: entry.state, Requested: rec.Kind}
	}
	acct := e.account(rec.Client)
	if acct.locked {
		return lockedErr(rec.Client)
	}
	if err := acct.release(entry.amount); err != nil {
		return err
	}
	entry.state = DisputeStateResolved
	return nil
}

func (e *Engine) chargeback(rec Record) error {
	entry, err := e.tracker.lookup(rec.Tx, rec.Client)
	if err != nil {
		return err
	}
	if entry.state != DisputeStateDisputed {
		return &InvalidStateError{Tx: rec.Tx, State: entry.state, Requested: rec.Kind}
	}
	acct := e.account(rec.Client)
	if acct.locked {
		return lockedErr(rec.Client)
	}
	if err := acct.voidHeld(entry.amount); err != nil {
		return err
	}
	acct.lock()
	entry.state = DisputeStateChargedBack
	return nil
}

func lockedErr(client ClientID) error {
	return fmt.Errorf("%w: client %d", ErrAccountLocked, client)
}

func duplicateErr(tx TxID) error {
	return fmt.Errorf("%w: tx %d", ErrDuplicateTxID, tx)
}

// =============================================================================
// RUN - Consume a channel until end-of-stream
// =============================================================================

// Run pulls records from the channel in arrival order until every producer
// has closed its handle. Arrival order is the sole source of happens-before
// semantics for disputes; there is no reordering and no batching.
//
// If ctx is cancelled mid-stream, Run drains the records already buffered,
// stops reading new ones, and returns with a consistent state.
func (e *Engine) Run(ctx context.Context, src *Channel) {
	for {
		select {
		case <-ctx.Done():
			for {
				rec, ok := src.TryReceive()
				if !ok {
					return
				}
				_ = e.Process(rec) // rejection already recorded
			}
		case rec, ok := <-src.records:
			if !ok {
				return
			}
			_ = e.Process(rec)
		}
	}
}

// =============================================================================
// READ-ONLY VIEWS
// =============================================================================

// Snapshot returns a point-in-time copy of every account. Order is not
// guaranteed; renderers sort as they see fit.
func (e *Engine) Snapshot() []AccountSnapshot {
	rows := make([]AccountSnapshot, 0, len(e.accounts))
	for _, acct := range e.accounts {
		rows = append(rows, acct.Snapshot())
	}
	return rows
}

// Account returns the snapshot for one client, if it exists.
func (e *Engine) Account(id ClientID) (AccountSnapshot, bool) {
	acct, ok := e.accounts[id]
	if !ok {
		return AccountSnapshot{}, false
	}
	return acct.Snapshot(), true
}

// Rejections returns every rejected record with its reason, in order.
func (e *Engine) Rejections() []Rejection {
	out := make([]Rejection, len(e.rejections))
	copy(out, e.rejections)
	return out
}
