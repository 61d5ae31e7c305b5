// Package importer collects QIF entries from file and device sources and
// posts them into the ledger without ever importing the same record twice.
package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// RunCache is the persisted set of source identifiers (file paths, device
// filenames) that have already been fully imported. It is loaded once at
// start and saved once at end; a run that dies in between simply re-reads
// those sources next time, and the ledger-level dedup keeps that safe.
type RunCache struct {
	path string
	set  map[string]bool
}

// LoadRunCache loads the cache from its JSON file.
// A missing file is not an error: it yields an empty cache.
func LoadRunCache(path string) (*RunCache, error) {
	cache := &RunCache{path: path, set: make(map[string]bool)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cache, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read run cache %s: %w", path, err)
	}

	var sources []string
	if err := json.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("failed to parse run cache %s: %w", path, err)
	}
	for _, s := range sources {
		cache.set[s] = true
	}
	return cache, nil
}

// Contains reports whether the source identifier was already imported.
func (c *RunCache) Contains(source string) bool {
	return c.set[source]
}

// Add marks a source identifier as fully imported.
func (c *RunCache) Add(source string) {
	c.set[source] = true
}

// Len returns the number of cached source identifiers.
func (c *RunCache) Len() int {
	return len(c.set)
}

// Save overwrites the cache file with the current set as a JSON array.
func (c *RunCache) Save() error {
	sources := make([]string, 0, len(c.set))
	for s := range c.set {
		sources = append(sources, s)
	}
	sort.Strings(sources)

	data, err := json.Marshal(sources)
	if err != nil {
		return fmt.Errorf("failed to encode run cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("failed to create run cache directory: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run cache %s: %w", c.path, err)
	}
	return nil
}
