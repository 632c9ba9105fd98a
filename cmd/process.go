/*
process.go - One-shot CSV processing command

PIPELINE:
  1. Open the ingestion channel and one producer handle
  2. Stream the CSV file through the producer (goroutine)
  3. Run the engine to end-of-stream
  4. Print the account snapshot as CSV on stdout
  5. Optionally export the snapshot to a SQLite file

  Skipped rows and rejected records are logged to stderr, so stdout stays
  clean for the report:

    txsystem process transactions.csv > accounts.csv
*/
package cmd

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/PawelBis/transaction-system/ingest"
	"github.com/PawelBis/transaction-system/ledger"
	"github.com/PawelBis/transaction-system/report"
	"github.com/PawelBis/transaction-system/store/sqlite"
)

var (
	processReportDB string
	processBuffer   int
	strictRedispute bool
)

var processCmd = &cobra.Command{
	Use:   "process <input.csv>",
	Short: "Stream a CSV transaction file and print the final account report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(args[0])
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(&processReportDB, "report-db", "",
		"Also export the report to this SQLite file")
	processCmd.Flags().IntVar(&processBuffer, "buffer", 256,
		"Ingestion channel depth")
	processCmd.Flags().BoolVar(&strictRedispute, "strict-redispute", false,
		"Reject disputes on already-resolved transactions")
}

func runProcess(path string) error {
	ch := ledger.NewChannel(processBuffer)
	engine := ledger.NewEngine(
		ledger.WithRedispute(!strictRedispute),
		ledger.WithOnReject(func(rej ledger.Rejection) {
			log.Printf("rejected %s tx %d (client %d): %v",
				rej.Record.Kind, rej.Record.Tx, rej.Record.Client, rej.Err)
		}),
	)

	producer, err := ch.Producer()
	if err != nil {
		return err
	}

	streamErr := make(chan error, 1)
	go func() {
		defer producer.Close()
		streamErr <- ingest.StreamFile(path, producer, func(re ingest.RowError) {
			log.Printf("skipping %v", re)
		})
	}()

	engine.Run(context.Background(), ch)
	if err := <-streamErr; err != nil {
		return err
	}

	rows := engine.Snapshot()
	if err := report.WriteCSV(os.Stdout, rows); err != nil {
		return err
	}

	if processReportDB != "" {
		store, err := sqlite.New(processReportDB)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.SaveReport(context.Background(), rows); err != nil {
			return err
		}
	}
	return nil
}
