// Package qif parses Quicken Interchange Format (QIF) files into entries
// ready for ledger import.
package qif

import (
	"fmt"
	"time"
)

// DateFormat is the canonical date representation used in logs and keys.
const DateFormat = "2006-01-02"

// Entry represents one parsed QIF record: one side of a future balanced
// two-split ledger transaction.
type Entry struct {
	Date          time.Time // day granularity
	Memo          string    // transaction description, also a dedup key
	Account       string    // colon-delimited account path (e.g. "Assets:Checking")
	SplitCategory string    // colon-delimited path of the offsetting account
	SplitAmount   string    // raw amount text, "." or "," decimal separator
}

// Key identifies an Entry by value. Two entries with the same Key are the
// same transaction regardless of which source file they came from.
type Key struct {
	Date          string
	Memo          string
	Account       string
	SplitCategory string
	SplitAmount   string
}

// Key returns the value-equality key for in-run duplicate detection.
func (e Entry) Key() Key {
	return Key{
		Date:          e.Date.Format(DateFormat),
		Memo:          e.Memo,
		Account:       e.Account,
		SplitCategory: e.SplitCategory,
		SplitAmount:   e.SplitAmount,
	}
}

// ParseError reports a malformed QIF record. It aborts the whole source:
// a partially imported file is worse than a failed run.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("qif parse error at line %d: %s", e.Line, e.Reason)
}
