// Package mapping rewrites QIF account and category names to ledger account
// paths, driven by an optional YAML mapping file.
package mapping

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shunichi-ikebuchi/qif-sync/pkg/qif"
)

// AccountMapping maps one QIF name to a ledger account path.
type AccountMapping struct {
	QIF    string `yaml:"qif"`
	Ledger string `yaml:"ledger"`
}

// Config is the mapping file layout.
type Config struct {
	Accounts []AccountMapping `yaml:"accounts"`
}

// Mapper rewrites QIF names to ledger paths. Unmapped names pass through
// unchanged.
type Mapper struct {
	toLedger map[string]string
}

// NewMapper loads a Mapper from a YAML file. A missing file yields the
// identity mapper: mapping is an optional convenience, not a requirement.
func NewMapper(configPath string) (*Mapper, error) {
	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return &Mapper{toLedger: map[string]string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse mapping file: %w", err)
	}

	mapper := &Mapper{toLedger: make(map[string]string, len(config.Accounts))}
	for _, m := range config.Accounts {
		mapper.toLedger[m.QIF] = m.Ledger
	}
	return mapper, nil
}

// Resolve returns the ledger path for a QIF name, or the name itself when
// no mapping exists.
func (m *Mapper) Resolve(name string) string {
	if path, ok := m.toLedger[name]; ok {
		return path
	}
	return name
}

// Apply rewrites the account and category paths of all entries in place.
func (m *Mapper) Apply(entries []qif.Entry) {
	if len(m.toLedger) == 0 {
		return
	}
	for i := range entries {
		entries[i].Account = m.Resolve(entries[i].Account)
		entries[i].SplitCategory = m.Resolve(entries[i].SplitCategory)
	}
}

// Len returns the number of configured mappings.
func (m *Mapper) Len() int {
	return len(m.toLedger)
}
