// Package pathutil provides centralized path management for the ledger
// database, the run cache and the account mapping file.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// PathResolver manages the paths qif-sync reads and writes.
type PathResolver struct {
	dataRoot    string
	ledgerPath  string
	cachePath   string
	mappingPath string
}

// Config represents the configuration for PathResolver.
type Config struct {
	// DataRoot is the root directory for all qif-sync state (e.g. ~/.qif-sync)
	DataRoot string
	// LedgerPath is the path to the ledger database file
	LedgerPath string
	// CachePath is the path to the run cache JSON file
	CachePath string
	// MappingPath is the path to the account mapping YAML file
	MappingPath string
}

// New creates a new PathResolver with the given configuration.
// If LedgerPath is empty, it defaults to {DataRoot}/ledger.db
// If CachePath is empty, it defaults to {DataRoot}/imported.json
// If MappingPath is empty, it defaults to {DataRoot}/account-mapping.yaml
func New(config Config) *PathResolver {
	root := ExpandHome(config.DataRoot)

	ledgerPath := ExpandHome(config.LedgerPath)
	if ledgerPath == "" {
		ledgerPath = filepath.Join(root, "ledger.db")
	}

	cachePath := ExpandHome(config.CachePath)
	if cachePath == "" {
		cachePath = filepath.Join(root, "imported.json")
	}

	mappingPath := ExpandHome(config.MappingPath)
	if mappingPath == "" {
		mappingPath = filepath.Join(root, "account-mapping.yaml")
	}

	return &PathResolver{
		dataRoot:    root,
		ledgerPath:  ledgerPath,
		cachePath:   cachePath,
		mappingPath: mappingPath,
	}
}

// GetDataRoot returns the data root directory.
func (p *PathResolver) GetDataRoot() string {
	return p.dataRoot
}

// GetLedgerPath returns the ledger database file path.
func (p *PathResolver) GetLedgerPath() string {
	return p.ledgerPath
}

// GetCachePath returns the run cache file path.
func (p *PathResolver) GetCachePath() string {
	return p.cachePath
}

// GetMappingPath returns the account mapping file path.
func (p *PathResolver) GetMappingPath() string {
	return p.mappingPath
}

// FileExists checks if a file or directory exists.
func (p *PathResolver) FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ExpandHome expands a leading "~" to the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
