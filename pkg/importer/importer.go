package importer

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/shunichi-ikebuchi/qif-sync/pkg/ledger"
	"github.com/shunichi-ikebuchi/qif-sync/pkg/qif"
)

// Options controls the import.
type Options struct {
	// DateFrom, when set, drops every entry dated strictly before it.
	DateFrom time.Time
}

// Result reports what the import did with the collected entries.
type Result struct {
	Imported     int
	Duplicates   int // skipped: already in the ledger or earlier in this run
	DateFiltered int // skipped: dated before the DateFrom floor
}

// Import posts the collected entries into the ledger session, in collection
// order, skipping duplicates.
//
// Per entry: the date floor is checked first; then the ledger is searched
// for an existing transaction with the same description, day and posted
// amount; then the in-run key set is consulted. Only entries passing all
// three become a balanced two-split transaction. The ledger search runs
// against the live session, so a duplicate later in the same run matches
// the transaction committed moments earlier.
//
// The session is never saved here: the caller owns the single save point,
// which is how dry runs exercise the full posting path without persisting.
func Import(session ledger.Session, entries []qif.Entry, currencyISO string, opts Options) (*Result, error) {
	currency, err := session.LookupCurrency(currencyISO)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	imported := make(map[qif.Key]bool)

	for _, entry := range entries {
		if !opts.DateFrom.IsZero() && entry.Date.Before(opts.DateFrom) {
			slog.Info("Skipping entry (before date floor)",
				"date", entry.Date.Format(qif.DateFormat), "amount", entry.SplitAmount)
			result.DateFiltered++
			continue
		}

		inLedger, err := alreadyInLedger(session, entry, currency)
		if err != nil {
			return nil, err
		}
		if inLedger || imported[entry.Key()] {
			slog.Info("Skipping entry (already imported)",
				"date", entry.Date.Format(qif.DateFormat), "amount", entry.SplitAmount)
			result.Duplicates++
			continue
		}

		if err := post(session, entry, currency); err != nil {
			return nil, err
		}
		imported[entry.Key()] = true
		result.Imported++
	}

	return result, nil
}

// alreadyInLedger finds a transaction on the entry's account by description,
// then checks its posted day and fixed-point amount against the entry.
func alreadyInLedger(session ledger.Session, entry qif.Entry, currency ledger.Currency) (bool, error) {
	account, err := session.ResolveAccount(entry.Account)
	if err != nil {
		return false, err
	}

	tx, err := session.FindTransByDesc(account, entry.Memo)
	if err != nil {
		return false, err
	}
	if tx == nil {
		return false, nil
	}

	if tx.PostDate.Format(qif.DateFormat) != entry.Date.Format(qif.DateFormat) {
		return false, nil
	}

	value, err := toFixedPoint(entry.SplitAmount, currency)
	if err != nil {
		return false, err
	}
	posted, err := session.AccountAmount(tx, account)
	if err != nil {
		return false, err
	}
	return posted == value, nil
}

// post commits one balanced two-split transaction for the entry.
func post(session ledger.Session, entry qif.Entry, currency ledger.Currency) error {
	slog.Info("Adding transaction",
		"account", entry.Account, "amount", entry.SplitAmount, "currency", currency.Mnemonic)

	account, err := session.ResolveAccount(entry.Account)
	if err != nil {
		return err
	}
	offset, err := session.ResolveAccount(entry.SplitCategory)
	if err != nil {
		return err
	}

	value, err := toFixedPoint(entry.SplitAmount, currency)
	if err != nil {
		return err
	}

	edit, err := session.BeginTransaction(currency, entry.Date, entry.Memo)
	if err != nil {
		return err
	}
	edit.AddSplit(account, value)
	edit.AddSplit(offset, -value)
	return edit.Commit()
}

// toFixedPoint converts the raw amount text into the currency's smallest
// units. Both "." and "," are accepted as the fractional separator; the
// scaled amount is truncated to an integer.
func toFixedPoint(amount string, currency ledger.Currency) (int64, error) {
	normalized := strings.Replace(amount, ",", ".", 1)
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return d.Mul(decimal.NewFromInt(currency.Fraction)).IntPart(), nil
}
