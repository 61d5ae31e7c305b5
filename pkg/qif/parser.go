package qif

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// Accepted date notations. Quicken exports either "6/28/2011" or the
// apostrophe short form "6/28'11".
var dateLayouts = []string{
	"1/2/2006",
	"1/2'06",
}

// Parse reads a QIF stream and returns its entries in file order.
//
// Records are accumulated field by field and finalized at the "^" terminator.
// An "!Account" block sets the account path applied to all following
// transaction records. Unknown marker lines are ignored so that newer QIF
// extensions do not break the importer. Empty input yields an empty slice.
func Parse(r io.Reader) ([]Entry, error) {
	scanner := bufio.NewScanner(r)

	var (
		entries        []Entry
		current        Entry
		seen           bool // current record has at least one recognized field
		account        string
		inAccountBlock bool
		pendingAccount string
		lineNo         int
	)

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "!") {
			if strings.EqualFold(line, "!Account") {
				inAccountBlock = true
				pendingAccount = ""
			} else if inAccountBlock {
				// Any other directive (e.g. !Type:Bank) ends an account
				// block, terminated or not.
				if pendingAccount != "" {
					account = pendingAccount
				}
				inAccountBlock = false
			}
			continue
		}

		marker, rest := line[:1], line[1:]

		if inAccountBlock {
			switch marker {
			case "N":
				pendingAccount = rest
			case "^":
				if pendingAccount != "" {
					account = pendingAccount
				}
				inAccountBlock = false
			}
			continue
		}

		switch marker {
		case "D":
			d, err := parseDate(rest)
			if err != nil {
				return nil, &ParseError{Line: lineNo, Reason: err.Error()}
			}
			current.Date = d
			seen = true
		case "T", "U":
			// Kept as raw text: decimal separator handling is deferred
			// to the posting stage.
			current.SplitAmount = rest
			seen = true
		case "M":
			current.Memo = rest
			seen = true
		case "P":
			// Payee is the description fallback when no memo is present.
			if current.Memo == "" {
				current.Memo = rest
			}
			seen = true
		case "L":
			current.SplitCategory = strings.Trim(rest, "[]")
			seen = true
		case "^":
			if seen {
				current.Account = account
				entries = append(entries, current)
			}
			current = Entry{}
			seen = false
		default:
			// Unrecognized marker: tolerated for forward compatibility.
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read qif stream: %w", err)
	}

	return entries, nil
}

func parseDate(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, text); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", text)
}
