/*
sqlite.go - SQLite report sink

PURPOSE:
  Persists the final account snapshot into a SQLite file so reports can be
  queried with ordinary SQL after a run. This is an output format for the
  reporting boundary, NOT engine-state persistence: the engine never reads
  anything back, and a new run starts from an empty ledger regardless of
  what a previous run exported.

SCHEMA:
  accounts(client PRIMARY KEY, available, held, total, locked)

  Amounts are stored as fixed-precision TEXT, never as floating point.
  Use ":memory:" as the path for tests.
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/PawelBis/transaction-system/ledger"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	client    INTEGER PRIMARY KEY,
	available TEXT NOT NULL,
	held      TEXT NOT NULL,
	total     TEXT NOT NULL,
	locked    INTEGER NOT NULL
);`

type Store struct {
	db *sql.DB
}

// New opens (or creates) the report database and ensures the schema.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open report db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init report schema: %w", err)
	}
	return &Store{db: db}, nil
}

// SaveReport writes all snapshot rows in one transaction. Re-running a
// report for the same clients replaces their rows.
func (s *Store) SaveReport(ctx context.Context, rows []ledger.AccountSnapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO accounts (client, available, held, total, locked) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range rows {
		_, err := stmt.ExecContext(ctx,
			int64(row.Client),
			row.Available.String(),
			row.Held.String(),
			row.Total.String(),
			row.Locked,
		)
		if err != nil {
			return fmt.Errorf("save client %d: %w", row.Client, err)
		}
	}
	return tx.Commit()
}

// LoadReport reads back every exported row, ordered by client id.
func (s *Store) LoadReport(ctx context.Context) ([]ledger.AccountSnapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT client, available, held, total, locked FROM accounts ORDER BY client`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.AccountSnapshot
	for rows.Next() {
		var (
			client                 int64
			available, held, total string
			locked                 bool
		)
		if err := rows.Scan(&client, &available, &held, &total, &locked); err != nil {
			return nil, err
		}

		snap := ledger.AccountSnapshot{Client: ledger.ClientID(client), Locked: locked}
		if snap.Available, err = ledger.ParseAmount(available); err != nil {
			return nil, err
		}
		if snap.Held, err = ledger.ParseAmount(held); err != nil {
			return nil, err
		}
		if snap.Total, err = ledger.ParseAmount(total); err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
