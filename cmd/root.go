/*
root.go - CLI root command

COMMANDS:
  txsystem process <input.csv>   One-shot: stream a CSV file, print report
  txsystem serve                 Long-running HTTP/Kafka ingestion server
  txsystem version               Print the version
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "txsystem",
	Short: "Transaction ledger engine: one ordered stream in, one account snapshot out",
	Long: `txsystem applies a stream of financial transaction records (deposits,
withdrawals, disputes, resolves, chargebacks) to client accounts and emits a
final per-account snapshot.

All producers feed a single ordering channel consumed by one engine, so
ledger invariants hold without per-account locks no matter how many inputs
are attached.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the CLI. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
