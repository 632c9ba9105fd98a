/*
errors.go - Centralized error types for the ledger engine

PURPOSE:
  All rejection reasons in one place. Every error here is per-record and
  recoverable: a rejected record leaves ledger and tracker state untouched
  and never halts the stream.

ERROR CATEGORIES:
  1. Input errors    - malformed or duplicate records
  2. Dispute errors  - illegal dispute-family requests
  3. Balance errors  - insufficient funds, locked accounts, overflow
  4. Channel errors  - send on a closed ingestion channel

USAGE:
  Callers match with errors.Is():

    if errors.Is(err, ledger.ErrInsufficientFunds) { ... }

  Structured variants carry context and unwrap to their sentinel.
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMalformedRecord is returned for records with an unknown kind, a
	// missing or negative amount on deposit/withdrawal, or an amount on a
	// dispute-family record.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrDuplicateTxID is returned when a deposit or withdrawal reuses a
	// transaction id already minted earlier in the stream.
	ErrDuplicateTxID = errors.New("duplicate transaction id")

	// ErrUnknownTx is returned when a dispute-family record references a
	// transaction id that was never deposited.
	ErrUnknownTx = errors.New("unknown transaction id")

	// ErrClientMismatch is returned when a dispute-family record's client
	// does not own the referenced transaction.
	ErrClientMismatch = errors.New("client does not own referenced transaction")

	// ErrInvalidState is returned for dispute-family transitions that are
	// not legal from the tracker's current state.
	ErrInvalidState = errors.New("invalid dispute state transition")

	// ErrInsufficientFunds is returned when a withdrawal exceeds the
	// available balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAccountLocked is returned for any mutating record addressed to an
	// account that has been locked by a chargeback.
	ErrAccountLocked = errors.New("account locked")

	// ErrArithmeticOverflow is returned when an operation would push an
	// amount beyond the representable range.
	ErrArithmeticOverflow = errors.New("amount out of representable range")

	// ErrChannelClosed is returned by Producer.Send after the handle (or the
	// whole channel) has been closed.
	ErrChannelClosed = errors.New("ingestion channel closed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientFundsError reports a withdrawal that exceeds available funds.
type InsufficientFundsError struct {
	Client    ClientID
	Available Amount
	Requested Amount
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: client %d has %s available, requested %s",
		e.Client, e.Available, e.Requested)
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

// InvalidStateError reports an illegal dispute-family transition.
type InvalidStateError struct {
	Tx        TxID
	State     DisputeState
	Requested Kind
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid transition: tx %d is %s, cannot apply %s",
		e.Tx, e.State, e.Requested)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRecordError reports whether err is one of the per-record rejection
// reasons. Such errors never terminate the stream.
func IsRecordError(err error) bool {
	return errors.Is(err, ErrMalformedRecord) ||
		errors.Is(err, ErrDuplicateTxID) ||
		errors.Is(err, ErrUnknownTx) ||
		errors.Is(err, ErrClientMismatch) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrAccountLocked) ||
		errors.Is(err, ErrArithmeticOverflow)
}
