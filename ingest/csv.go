/*
csv.go - CSV file producer

PURPOSE:
  Parses transaction rows from a CSV stream and feeds them into the
  ingestion channel. This is the transport side of the system: it owns all
  raw-format concerns (column layout, whitespace, the optional amount
  column) and performs full field validation before a record is ever
  enqueued, so the engine only sees well-formed candidates.

FORMAT:
  type, client, tx, amount

  deposit,    1, 1, 1.0
  withdrawal, 1, 4, 1.5
  dispute,    1, 1,
  resolve,    1, 1,
  chargeback, 1, 1,

  A header row is recognized by its first field ("type") and skipped.
  Malformed rows are reported to the row-error callback and skipped;
  they never halt the stream and never reach the channel.
*/
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/PawelBis/transaction-system/ledger"
)

// Sink accepts validated records for delivery to the engine.
// *ledger.Producer satisfies it.
type Sink interface {
	Send(ledger.Record) error
}

// RowError reports one skipped input row.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

// StreamCSV reads rows from r, validates each one, and sends valid records
// to the sink in file order. Row-level problems go to onErr (may be nil)
// and the stream continues; a sink failure (channel closed) is fatal and
// returned.
func StreamCSV(r io.Reader, sink Sink, onErr func(RowError)) error {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // the amount column is optional

	line := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		line++
		if err != nil {
			report(onErr, RowError{Line: line, Err: err})
			continue
		}
		if line == 1 && isHeader(row) {
			continue
		}

		rec, err := parseRow(row)
		if err == nil {
			err = rec.Validate()
		}
		if err != nil {
			report(onErr, RowError{Line: line, Err: err})
			continue
		}

		if err := sink.Send(rec); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
}

// StreamFile is StreamCSV over a file on disk.
func StreamFile(path string, sink Sink, onErr func(RowError)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return StreamCSV(f, sink, onErr)
}

func report(onErr func(RowError), re RowError) {
	if onErr != nil {
		onErr(re)
	}
}

func isHeader(row []string) bool {
	return len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "type")
}

func parseRow(row []string) (ledger.Record, error) {
	if len(row) < 3 {
		return ledger.Record{}, fmt.Errorf("%w: expected at least 3 fields, got %d",
			ledger.ErrMalformedRecord, len(row))
	}

	kind, err := ledger.ParseKind(strings.TrimSpace(row[0]))
	if err != nil {
		return ledger.Record{}, err
	}

	client, err := strconv.ParseUint(strings.TrimSpace(row[1]), 10, 16)
	if err != nil {
		return ledger.Record{}, fmt.Errorf("%w: client %q", ledger.ErrMalformedRecord, row[1])
	}

	tx, err := strconv.ParseUint(strings.TrimSpace(row[2]), 10, 32)
	if err != nil {
		return ledger.Record{}, fmt.Errorf("%w: tx %q", ledger.ErrMalformedRecord, row[2])
	}

	rec := ledger.Record{
		Kind:   kind,
		Client: ledger.ClientID(client),
		Tx:     ledger.TxID(tx),
	}

	if len(row) > 3 {
		if raw := strings.TrimSpace(row[3]); raw != "" {
			amount, err := ledger.ParseAmount(raw)
			if err != nil {
				return ledger.Record{}, err
			}
			rec.Amount = &amount
		}
	}
	return rec, nil
}
