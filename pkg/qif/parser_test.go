package qif

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Entry
	}{
		{
			"single record",
			"!Type:Bank\nD6/28/2011\nT-20.00\nMEssen\nLExpenses:Food\n^\n",
			[]Entry{{Date: date(2011, 6, 28), Memo: "Essen", SplitCategory: "Expenses:Food", SplitAmount: "-20.00"}},
		},
		{
			"apostrophe date form",
			"D6/28'11\nT-20.00\nMEssen\n^\n",
			[]Entry{{Date: date(2011, 6, 28), Memo: "Essen", SplitAmount: "-20.00"}},
		},
		{
			"account block applies to following records",
			"!Account\nNAssets:Checking\n^\n!Type:Bank\nD1/5/2023\nT-3.50\nMCoffee\nLExpenses:Food\n^\n",
			[]Entry{{Date: date(2023, 1, 5), Memo: "Coffee", Account: "Assets:Checking",
				SplitCategory: "Expenses:Food", SplitAmount: "-3.50"}},
		},
		{
			"unterminated account block ends at the next directive",
			"!Account\nNAssets:Checking\n!Type:Bank\nD1/5/2023\nT-3.50\nMCoffee\n^\n",
			[]Entry{{Date: date(2023, 1, 5), Memo: "Coffee", Account: "Assets:Checking", SplitAmount: "-3.50"}},
		},
		{
			"payee is the description fallback",
			"D1/5/2023\nT-3.50\nPCorner Cafe\n^\n",
			[]Entry{{Date: date(2023, 1, 5), Memo: "Corner Cafe", SplitAmount: "-3.50"}},
		},
		{
			"memo wins over payee",
			"D1/5/2023\nPCorner Cafe\nMCoffee\nT-3.50\n^\n",
			[]Entry{{Date: date(2023, 1, 5), Memo: "Coffee", SplitAmount: "-3.50"}},
		},
		{
			"unknown markers are tolerated",
			"D1/5/2023\nN1042\nT-3.50\nMCoffee\nAUnparsed address\n^\n",
			[]Entry{{Date: date(2023, 1, 5), Memo: "Coffee", SplitAmount: "-3.50"}},
		},
		{
			"bracketed transfer category",
			"D1/5/2023\nT-3.50\nMTransfer\nL[Assets:Savings]\n^\n",
			[]Entry{{Date: date(2023, 1, 5), Memo: "Transfer", SplitCategory: "Assets:Savings", SplitAmount: "-3.50"}},
		},
		{
			"comma decimal separator kept raw",
			"D1/5/2023\nT-3,50\nMCoffee\n^\n",
			[]Entry{{Date: date(2023, 1, 5), Memo: "Coffee", SplitAmount: "-3,50"}},
		},
		{
			"U amount marker",
			"D1/5/2023\nU-3.50\nMCoffee\n^\n",
			[]Entry{{Date: date(2023, 1, 5), Memo: "Coffee", SplitAmount: "-3.50"}},
		},
		{
			"multiple records in file order",
			"D1/5/2023\nT-3.50\nMCoffee\n^\nD1/6/2023\nT-12.00\nMLunch\n^\n",
			[]Entry{
				{Date: date(2023, 1, 5), Memo: "Coffee", SplitAmount: "-3.50"},
				{Date: date(2023, 1, 6), Memo: "Lunch", SplitAmount: "-12.00"},
			},
		},
		{
			"empty input",
			"",
			nil,
		},
		{
			"terminator without fields yields nothing",
			"^\n^\n",
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := Parse(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Parse() returned error: %v", err)
			}
			if len(entries) != len(tt.expected) {
				t.Fatalf("Parse() returned %d entries, expected %d", len(entries), len(tt.expected))
			}
			for i, want := range tt.expected {
				if entries[i] != want {
					t.Errorf("entry %d = %+v, expected %+v", i, entries[i], want)
				}
			}
		})
	}
}

func TestParseBadDate(t *testing.T) {
	input := "D1/5/2023\nT-3.50\n^\nDnot-a-date\nT-1.00\n^\n"

	_, err := Parse(strings.NewReader(input))
	if err == nil {
		t.Fatal("Parse() should fail on unrecognized date text")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Parse() error = %T, expected *ParseError", err)
	}
	if parseErr.Line != 4 {
		t.Errorf("ParseError.Line = %d, expected 4", parseErr.Line)
	}
}

func TestEntryKey(t *testing.T) {
	a := Entry{Date: date(2023, 1, 5), Memo: "Coffee", Account: "Assets:Checking",
		SplitCategory: "Expenses:Food", SplitAmount: "-3.50"}
	b := Entry{Date: date(2023, 1, 5), Memo: "Coffee", Account: "Assets:Checking",
		SplitCategory: "Expenses:Food", SplitAmount: "-3.50"}

	if a.Key() != b.Key() {
		t.Error("identical entries should share a key regardless of source")
	}

	c := a
	c.SplitAmount = "-3.51"
	if a.Key() == c.Key() {
		t.Error("entries differing in amount should have distinct keys")
	}
}
