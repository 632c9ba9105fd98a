/*
csv.go - Final snapshot renderer

PURPOSE:
  Renders the engine's final snapshot as CSV: one row per client with
  available, held, the derived total, and the lock flag. The engine does
  not guarantee row order, so the renderer sorts by client id to make
  output deterministic and diffable.
*/
package report

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/PawelBis/transaction-system/ledger"
)

// WriteCSV renders the snapshot rows to w, sorted by client id. Amounts are
// printed with the ledger's fixed four-digit precision.
func WriteCSV(w io.Writer, rows []ledger.AccountSnapshot) error {
	sorted := make([]ledger.AccountSnapshot, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Client < sorted[j].Client })

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return err
	}
	for _, row := range sorted {
		err := cw.Write([]string{
			strconv.FormatUint(uint64(row.Client), 10),
			row.Available.String(),
			row.Held.String(),
			row.Total.String(),
			strconv.FormatBool(row.Locked),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
