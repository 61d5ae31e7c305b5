// Package cmd provides CLI commands for qif-sync.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	quiet   bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "qif-sync",
	Short: "Import QIF transactions into a ledger",
	Long: `qif-sync is a CLI tool that imports transactions from QIF files
(or from files on an attached MTP device) into a double-entry ledger.

It supports:
- Parsing QIF files and MTP device sources matched by pattern
- Skipping already-imported sources via a persisted run cache
- Detecting duplicates against the ledger and within a run
- Dry-run mode that exercises the full path without saving

Example:
  qif-sync import --ledger-file ledger.db statement.qif
  qif-sync import 'mtp:.*\.qif' --date-from 2024-01-01
  qif-sync stats`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Setup logging
		logLevel := slog.LevelInfo
		if verbose {
			logLevel = slog.LevelDebug
		} else if quiet {
			logLevel = slog.LevelWarn
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings")

	// Add subcommands
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(statsCmd)
}

// Helper function to get config file path.
func getConfigFile() string {
	if cfgFile != "" {
		return cfgFile
	}
	return "" // Will use default .env loading
}

// Helper function to handle errors and exit.
func exitOnError(err error, msg string) {
	if err != nil {
		slog.Error(msg, "error", err)
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		os.Exit(1)
	}
}
