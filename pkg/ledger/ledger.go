// Package ledger provides the persistent double-entry store the importer
// posts into: an account tree, balanced transactions, and a currency table,
// behind a session with a single save commit point.
package ledger

import (
	"errors"
	"time"
)

// ErrAccountNotFound is returned when a referenced account path does not
// exist in the ledger. Accounts are never created implicitly during import.
var ErrAccountNotFound = errors.New("account not found")

// Currency describes a ledger currency: its ISO 4217 mnemonic and the
// fixed-point scale (smallest-unit denominator, e.g. 100 for EUR cents).
type Currency struct {
	Mnemonic string
	Fraction int64
}

// Account is a resolved node of the ledger's account tree.
type Account struct {
	GUID string
	Name string
	Path string // full colon-delimited path
}

// Transaction is a committed ledger transaction.
type Transaction struct {
	GUID        string
	PostDate    time.Time
	Description string
	Currency    string
}

// Stats summarizes the ledger contents.
type Stats struct {
	Accounts     int
	Transactions int
	Splits       int
	LastPostDate string // YYYY-MM-DD, empty when the ledger has no transactions
}

// Session is one exclusive run against a ledger. All mutations stay
// in-session until Save; End without Save discards them.
type Session interface {
	// LookupCurrency resolves an ISO 4217 code against the currency table.
	LookupCurrency(iso string) (Currency, error)

	// ResolveAccount resolves a colon-delimited path from the root.
	// Returns an error wrapping ErrAccountNotFound if any segment is missing.
	ResolveAccount(path string) (*Account, error)

	// BeginTransaction opens an edit bracket for one balanced transaction.
	BeginTransaction(currency Currency, postDate time.Time, description string) (TransactionEdit, error)

	// FindTransByDesc returns the first transaction touching the account
	// whose description matches exactly, or nil if there is none.
	// In-session commits are visible to the search.
	FindTransByDesc(account *Account, description string) (*Transaction, error)

	// AccountAmount returns the signed fixed-point amount posted to the
	// account within the given transaction.
	AccountAmount(tx *Transaction, account *Account) (int64, error)

	// Save persists everything committed in this session. This is the
	// single durability point of a run.
	Save() error

	// End closes the session, discarding unsaved work.
	End() error
}

// TransactionEdit accumulates the splits of one transaction between its
// begin and commit bracket.
type TransactionEdit interface {
	// AddSplit adds one leg with the given fixed-point value.
	AddSplit(account *Account, value int64)

	// Commit writes the transaction and its splits into the session.
	Commit() error
}
