package ledger

// Schema defines the SQL statements to create the ledger tables.
const Schema = `
-- Currency table
-- ISO 4217 codes with their fixed-point fraction (smallest-unit scale)
CREATE TABLE IF NOT EXISTS currencies (
    mnemonic TEXT PRIMARY KEY,         -- ISO 4217 code, e.g. 'EUR'
    fraction INTEGER NOT NULL          -- e.g. 100 for cent-denominated currencies
);

-- Account tree
-- One row per node; the root has a NULL parent
CREATE TABLE IF NOT EXISTS accounts (
    guid TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    parent_guid TEXT REFERENCES accounts(guid),
    UNIQUE(parent_guid, name)
);

CREATE INDEX IF NOT EXISTS idx_accounts_parent
    ON accounts(parent_guid, name);

-- Transactions and their splits
CREATE TABLE IF NOT EXISTS transactions (
    guid TEXT PRIMARY KEY,
    currency TEXT NOT NULL REFERENCES currencies(mnemonic),
    post_date TEXT NOT NULL,           -- YYYY-MM-DD
    description TEXT NOT NULL,
    entered_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_transactions_description
    ON transactions(description);

CREATE TABLE IF NOT EXISTS splits (
    guid TEXT PRIMARY KEY,
    tx_guid TEXT NOT NULL REFERENCES transactions(guid),
    account_guid TEXT NOT NULL REFERENCES accounts(guid),
    value INTEGER NOT NULL             -- fixed-point units of the tx currency
);

CREATE INDEX IF NOT EXISTS idx_splits_tx
    ON splits(tx_guid);

CREATE INDEX IF NOT EXISTS idx_splits_account
    ON splits(account_guid);
`

// seedCurrencies holds the currency table bootstrap. Fractions follow
// ISO 4217 minor units.
var seedCurrencies = []Currency{
	{Mnemonic: "EUR", Fraction: 100},
	{Mnemonic: "USD", Fraction: 100},
	{Mnemonic: "GBP", Fraction: 100},
	{Mnemonic: "CHF", Fraction: 100},
	{Mnemonic: "JPY", Fraction: 1},
	{Mnemonic: "SEK", Fraction: 100},
	{Mnemonic: "NOK", Fraction: 100},
	{Mnemonic: "DKK", Fraction: 100},
	{Mnemonic: "PLN", Fraction: 100},
	{Mnemonic: "CZK", Fraction: 100},
}
