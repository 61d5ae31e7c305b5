package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shunichi-ikebuchi/qif-sync/pkg/config"
	"github.com/shunichi-ikebuchi/qif-sync/pkg/importer"
	"github.com/shunichi-ikebuchi/qif-sync/pkg/ledger"
	"github.com/shunichi-ikebuchi/qif-sync/pkg/mapping"
	"github.com/shunichi-ikebuchi/qif-sync/pkg/mtp"
	"github.com/shunichi-ikebuchi/qif-sync/pkg/pathutil"
	"github.com/shunichi-ikebuchi/qif-sync/pkg/qif"
	"github.com/spf13/cobra"
)

var (
	dryRun     bool
	dateFrom   string
	currency   string
	ledgerFile string
)

// importCmd represents the import command.
var importCmd = &cobra.Command{
	Use:   "import [source...]",
	Short: "Import QIF sources into the ledger",
	Long: `Import transactions from one or more QIF sources into the ledger.

A source is either a path to a QIF file or "mtp:<PATTERN>" to import all
matching files from an attached MTP device.

This command:
1. Loads the run cache and skips sources already imported
2. Parses each remaining source into entries
3. Skips entries already present in the ledger or duplicated in the run
4. Posts the rest as balanced two-split transactions
5. Saves the ledger and the run cache (both skipped with --dry-run)

Example:
  qif-sync import --ledger-file ledger.db statement.qif
  qif-sync import 'mtp:.*\.qif' --date-from 2024-01-01 --dry-run`,
	Args: cobra.MinimumNArgs(1),
	Run:  runImport,
}

func init() {
	// Flags
	importCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Dry run mode (no file writes)")
	importCmd.Flags().StringVar(&dateFrom, "date-from", "", "Only import entries dated >= this date (YYYY-MM-DD)")
	importCmd.Flags().StringVarP(&currency, "currency", "c", "", "Currency ISO code (default: EUR)")
	importCmd.Flags().StringVarP(&ledgerFile, "ledger-file", "f", "", "Ledger database file")
}

func runImport(cmd *cobra.Command, args []string) {
	slog.Info("Starting import", "sources", len(args), "dry_run", dryRun)

	// Load configuration
	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")

	if err := cfg.Validate("ledger.root", "ledger.currency"); err != nil {
		exitOnError(err, "invalid configuration")
	}

	ledgerPath := ledgerFile
	if ledgerPath == "" {
		ledgerPath = cfg.Ledger.Path
	}
	pathResolver := pathutil.New(pathutil.Config{
		DataRoot:    cfg.Ledger.Root,
		LedgerPath:  ledgerPath,
		CachePath:   cfg.Ledger.CachePath,
		MappingPath: cfg.Ledger.Mapping,
	})

	currencyISO := currency
	if currencyISO == "" {
		currencyISO = cfg.Ledger.Currency
	}

	var opts importer.Options
	if dateFrom != "" {
		opts.DateFrom, err = time.Parse(qif.DateFormat, dateFrom)
		exitOnError(err, "invalid --date-from")
	}

	// Load run cache
	cachePath := pathResolver.GetCachePath()
	slog.Debug("Loading run cache", "path", cachePath)
	cache, err := importer.LoadRunCache(cachePath)
	exitOnError(err, "failed to load run cache")

	device := mtp.NewClient(mtp.ClientConfig{
		FilesBin:   cfg.MTP.FilesBin,
		GetFileBin: cfg.MTP.GetFileBin,
	})

	// Collect entries from all sources
	var entries []qif.Entry
	for _, source := range args {
		sourceEntries, err := importer.ReadSource(source, cache, device)
		exitOnError(err, fmt.Sprintf("failed to read source %s", source))
		entries = append(entries, sourceEntries...)
	}
	slog.Info("Collected entries", "count", len(entries))

	if len(entries) > 0 {
		// Apply optional account mapping
		mapper, err := mapping.NewMapper(pathResolver.GetMappingPath())
		exitOnError(err, "failed to load account mapping")
		if mapper.Len() > 0 {
			slog.Debug("Applying account mapping", "mappings", mapper.Len())
			mapper.Apply(entries)
		}

		// Open ledger session
		slog.Debug("Opening ledger", "path", pathResolver.GetLedgerPath())
		session, err := ledger.Open(pathResolver.GetLedgerPath())
		exitOnError(err, "failed to open ledger")
		defer session.End()

		result, err := importer.Import(session, entries, currencyISO, opts)
		exitOnError(err, "import failed")

		if dryRun {
			slog.Debug("** DRY-RUN **")
		} else {
			slog.Debug("Saving ledger")
			exitOnError(session.Save(), "failed to save ledger")
		}

		fmt.Println("\n=== Import Result ===")
		fmt.Printf("Imported:       %d\n", result.Imported)
		fmt.Printf("Duplicates:     %d\n", result.Duplicates)
		fmt.Printf("Date-filtered:  %d\n", result.DateFiltered)
		fmt.Println()
	} else {
		fmt.Println("No new entries to import")
	}

	if !dryRun {
		exitOnError(cache.Save(), "failed to save run cache")
	}

	slog.Info("Import completed", "entries", len(entries), "dry_run", dryRun)
}
