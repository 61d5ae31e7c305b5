package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shunichi-ikebuchi/qif-sync/pkg/config"
	"github.com/shunichi-ikebuchi/qif-sync/pkg/importer"
	"github.com/shunichi-ikebuchi/qif-sync/pkg/ledger"
	"github.com/shunichi-ikebuchi/qif-sync/pkg/pathutil"
	"github.com/spf13/cobra"
)

// statsCmd represents the stats command.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display ledger statistics",
	Long: `Display statistics about the ledger and the run cache.

Shows:
- Total number of accounts, transactions and splits
- Date of the latest posted transaction
- Number of sources in the run cache

Example:
  qif-sync stats`,
	Run: runStats,
}

func runStats(cmd *cobra.Command, args []string) {
	slog.Info("Loading configuration")

	// Load configuration
	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")

	if err := cfg.Validate("ledger.root"); err != nil {
		exitOnError(err, "invalid configuration")
	}

	pathResolver := pathutil.New(pathutil.Config{
		DataRoot:   cfg.Ledger.Root,
		LedgerPath: cfg.Ledger.Path,
		CachePath:  cfg.Ledger.CachePath,
	})

	// Open ledger session (read-only: the session is ended without saving)
	ledgerPath := pathResolver.GetLedgerPath()
	slog.Debug("Opening ledger", "path", ledgerPath)

	session, err := ledger.Open(ledgerPath)
	exitOnError(err, "failed to open ledger")
	defer session.End()

	stats, err := session.Stats()
	exitOnError(err, "failed to get statistics")

	cache, err := importer.LoadRunCache(pathResolver.GetCachePath())
	exitOnError(err, "failed to load run cache")

	// Display statistics
	fmt.Println("\n=== Ledger Statistics ===")
	fmt.Printf("Accounts:       %d\n", stats.Accounts)
	fmt.Printf("Transactions:   %d\n", stats.Transactions)
	fmt.Printf("Splits:         %d\n", stats.Splits)

	if stats.LastPostDate != "" {
		fmt.Printf("Last posted:    %s\n", stats.LastPostDate)
	} else {
		fmt.Printf("Last posted:    (never)\n")
	}

	fmt.Printf("Cached sources: %d\n", cache.Len())
	fmt.Println()

	slog.Info("Statistics displayed successfully")
}
