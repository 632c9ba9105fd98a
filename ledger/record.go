/*
record.go - Transaction records (the input events)

PURPOSE:
  A Record is one immutable input event: produced once by an ingestion
  source, consumed exactly once by the engine. Deposits and withdrawals mint
  new transaction ids and carry an amount; dispute, resolve and chargeback
  reference an existing id and carry none.

VALIDATION:
  Producers are responsible for calling Validate before handing a record to
  the channel, and the engine validates again before dispatch. A record that
  fails validation is rejected as ErrMalformedRecord; it never reaches the
  balance primitives.
*/
package ledger

import "fmt"

// =============================================================================
// IDENTIFIERS
// =============================================================================

// ClientID identifies an account.
type ClientID uint16

// TxID identifies a deposit or withdrawal. Dispute-family records reference
// an existing TxID rather than minting a new one.
type TxID uint32

// =============================================================================
// KIND - Record type
// =============================================================================

type Kind string

const (
	KindDeposit    Kind = "deposit"
	KindWithdrawal Kind = "withdrawal"
	KindDispute    Kind = "dispute"
	KindResolve    Kind = "resolve"
	KindChargeback Kind = "chargeback"
)

// ParseKind maps an input token to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindDeposit, KindWithdrawal, KindDispute, KindResolve, KindChargeback:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("%w: unknown kind %q", ErrMalformedRecord, s)
	}
}

// Mints reports whether this kind introduces a new transaction id
// (and therefore carries an amount).
func (k Kind) Mints() bool {
	return k == KindDeposit || k == KindWithdrawal
}

// =============================================================================
// RECORD - One input event
// =============================================================================

type Record struct {
	Kind   Kind
	Client ClientID
	Tx     TxID

	// Amount is present only on deposit and withdrawal.
	Amount *Amount
}

// Validate enforces the field rules before dispatch:
//   - kind must be known
//   - deposit/withdrawal must carry a non-negative amount
//   - dispute/resolve/chargeback must not carry an amount
func (r Record) Validate() error {
	switch r.Kind {
	case KindDeposit, KindWithdrawal:
		if r.Amount == nil {
			return fmt.Errorf("%w: %s tx %d missing amount", ErrMalformedRecord, r.Kind, r.Tx)
		}
		if r.Amount.IsNegative() {
			return fmt.Errorf("%w: %s tx %d has negative amount %s", ErrMalformedRecord, r.Kind, r.Tx, r.Amount)
		}
	case KindDispute, KindResolve, KindChargeback:
		if r.Amount != nil {
			return fmt.Errorf("%w: %s tx %d carries an amount", ErrMalformedRecord, r.Kind, r.Tx)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrMalformedRecord, r.Kind)
	}
	return nil
}
