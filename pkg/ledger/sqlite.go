package ledger

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const dateFormat = "2006-01-02"

// SQLiteSession is the SQLite implementation of Session. The whole run is
// wrapped in one SQL transaction: Save commits it, End without Save rolls
// it back, so an interrupted run never leaves a half-written ledger.
type SQLiteSession struct {
	db     *sql.DB
	tx     *sql.Tx
	dbPath string
	saved  bool
}

// Open opens a ledger session on the given SQLite file.
// The file and its schema are created on first use, including the account
// root and the currency table seed.
func Open(dbPath string) (*SQLiteSession, error) {
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}

	connStr := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL", dbPath)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger %s: %w", dbPath, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping ledger %s: %w", dbPath, err)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize ledger schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to begin ledger session: %w", err)
	}

	return &SQLiteSession{
		db:     db,
		tx:     tx,
		dbPath: dbPath,
	}, nil
}

// initializeSchema creates the tables and seeds the root account and the
// currency table if they don't exist yet.
func initializeSchema(db *sql.DB) error {
	if _, err := db.Exec(Schema); err != nil {
		return err
	}

	var roots int
	if err := db.QueryRow(`SELECT COUNT(*) FROM accounts WHERE parent_guid IS NULL`).Scan(&roots); err != nil {
		return err
	}
	if roots == 0 {
		if _, err := db.Exec(`INSERT INTO accounts (guid, name, parent_guid) VALUES (?, 'Root', NULL)`,
			uuid.New().String()); err != nil {
			return err
		}
	}

	for _, c := range seedCurrencies {
		if _, err := db.Exec(`INSERT OR IGNORE INTO currencies (mnemonic, fraction) VALUES (?, ?)`,
			c.Mnemonic, c.Fraction); err != nil {
			return err
		}
	}
	return nil
}

// Path returns the ledger file path.
func (s *SQLiteSession) Path() string {
	return s.dbPath
}

// LookupCurrency resolves an ISO 4217 code against the currency table.
func (s *SQLiteSession) LookupCurrency(iso string) (Currency, error) {
	var c Currency
	err := s.tx.QueryRow(`SELECT mnemonic, fraction FROM currencies WHERE mnemonic = ?`, iso).
		Scan(&c.Mnemonic, &c.Fraction)
	if err == sql.ErrNoRows {
		return Currency{}, fmt.Errorf("unknown currency %q", iso)
	}
	if err != nil {
		return Currency{}, fmt.Errorf("failed to look up currency %q: %w", iso, err)
	}
	return c, nil
}

func (s *SQLiteSession) rootGUID() (string, error) {
	var guid string
	err := s.tx.QueryRow(`SELECT guid FROM accounts WHERE parent_guid IS NULL`).Scan(&guid)
	if err != nil {
		return "", fmt.Errorf("failed to find root account: %w", err)
	}
	return guid, nil
}

// ResolveAccount resolves a colon-delimited account path from the root.
func (s *SQLiteSession) ResolveAccount(path string) (*Account, error) {
	parent, err := s.rootGUID()
	if err != nil {
		return nil, err
	}

	var guid, name string
	for _, segment := range strings.Split(path, ":") {
		err := s.tx.QueryRow(`SELECT guid, name FROM accounts WHERE parent_guid = ? AND name = ?`,
			parent, segment).Scan(&guid, &name)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("account path %q: %w", path, ErrAccountNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve account path %q: %w", path, err)
		}
		parent = guid
	}

	return &Account{GUID: guid, Name: name, Path: path}, nil
}

// CreateAccountPath creates every missing node of a colon-delimited path and
// returns the leaf. Used to bootstrap a ledger, never during import.
func (s *SQLiteSession) CreateAccountPath(path string) (*Account, error) {
	parent, err := s.rootGUID()
	if err != nil {
		return nil, err
	}

	var guid, name string
	for _, segment := range strings.Split(path, ":") {
		err := s.tx.QueryRow(`SELECT guid, name FROM accounts WHERE parent_guid = ? AND name = ?`,
			parent, segment).Scan(&guid, &name)
		switch {
		case err == sql.ErrNoRows:
			guid, name = uuid.New().String(), segment
			if _, err := s.tx.Exec(`INSERT INTO accounts (guid, name, parent_guid) VALUES (?, ?, ?)`,
				guid, segment, parent); err != nil {
				return nil, fmt.Errorf("failed to create account %q: %w", path, err)
			}
		case err != nil:
			return nil, fmt.Errorf("failed to resolve account path %q: %w", path, err)
		}
		parent = guid
	}

	return &Account{GUID: guid, Name: name, Path: path}, nil
}

// BeginTransaction opens an edit bracket for one transaction.
func (s *SQLiteSession) BeginTransaction(currency Currency, postDate time.Time, description string) (TransactionEdit, error) {
	return &sqliteTxEdit{
		session: s,
		tx: Transaction{
			GUID:        uuid.New().String(),
			PostDate:    postDate,
			Description: description,
			Currency:    currency.Mnemonic,
		},
	}, nil
}

// FindTransByDesc returns the first transaction on the account whose
// description matches exactly, earliest post date first.
func (s *SQLiteSession) FindTransByDesc(account *Account, description string) (*Transaction, error) {
	var (
		tx       Transaction
		postDate string
	)
	err := s.tx.QueryRow(`
		SELECT t.guid, t.currency, t.post_date, t.description
		FROM transactions t
		JOIN splits sp ON sp.tx_guid = t.guid
		WHERE sp.account_guid = ? AND t.description = ?
		ORDER BY t.post_date, t.entered_at
		LIMIT 1
	`, account.GUID, description).Scan(&tx.GUID, &tx.Currency, &postDate, &tx.Description)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to search transactions by description: %w", err)
	}

	tx.PostDate, err = time.Parse(dateFormat, postDate)
	if err != nil {
		return nil, fmt.Errorf("corrupt post date %q in ledger: %w", postDate, err)
	}
	return &tx, nil
}

// AccountAmount returns the signed fixed-point amount the account carries
// within the transaction.
func (s *SQLiteSession) AccountAmount(tx *Transaction, account *Account) (int64, error) {
	var amount int64
	err := s.tx.QueryRow(`
		SELECT COALESCE(SUM(value), 0) FROM splits
		WHERE tx_guid = ? AND account_guid = ?
	`, tx.GUID, account.GUID).Scan(&amount)
	if err != nil {
		return 0, fmt.Errorf("failed to read account amount: %w", err)
	}
	return amount, nil
}

// Stats summarizes the ledger contents.
func (s *SQLiteSession) Stats() (*Stats, error) {
	var stats Stats

	// The root does not count as a user account.
	err := s.tx.QueryRow(`SELECT COUNT(*) FROM accounts WHERE parent_guid IS NOT NULL`).Scan(&stats.Accounts)
	if err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}

	err = s.tx.QueryRow(`SELECT COUNT(*) FROM transactions`).Scan(&stats.Transactions)
	if err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	err = s.tx.QueryRow(`SELECT COUNT(*) FROM splits`).Scan(&stats.Splits)
	if err != nil {
		return nil, fmt.Errorf("failed to count splits: %w", err)
	}

	var last sql.NullString
	err = s.tx.QueryRow(`SELECT MAX(post_date) FROM transactions`).Scan(&last)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to read last post date: %w", err)
	}
	if last.Valid {
		stats.LastPostDate = last.String
	}

	return &stats, nil
}

// Save commits the session. This is the single durability point of a run.
func (s *SQLiteSession) Save() error {
	if s.saved {
		return nil
	}
	if err := s.tx.Commit(); err != nil {
		return fmt.Errorf("failed to save ledger %s: %w", s.dbPath, err)
	}
	s.saved = true
	return nil
}

// End closes the session. Unsaved work is rolled back.
func (s *SQLiteSession) End() error {
	if !s.saved {
		if err := s.tx.Rollback(); err != nil && err != sql.ErrTxDone {
			s.db.Close()
			return fmt.Errorf("failed to roll back ledger session: %w", err)
		}
	}
	return s.db.Close()
}

// sqliteTxEdit accumulates splits between BeginTransaction and Commit.
type sqliteTxEdit struct {
	session *SQLiteSession
	tx      Transaction
	splits  []pendingSplit
}

type pendingSplit struct {
	account *Account
	value   int64
}

func (e *sqliteTxEdit) AddSplit(account *Account, value int64) {
	e.splits = append(e.splits, pendingSplit{account: account, value: value})
}

func (e *sqliteTxEdit) Commit() error {
	tx := e.session.tx

	if _, err := tx.Exec(`
		INSERT INTO transactions (guid, currency, post_date, description)
		VALUES (?, ?, ?, ?)
	`, e.tx.GUID, e.tx.Currency, e.tx.PostDate.Format(dateFormat), e.tx.Description); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	for _, sp := range e.splits {
		if _, err := tx.Exec(`
			INSERT INTO splits (guid, tx_guid, account_guid, value)
			VALUES (?, ?, ?, ?)
		`, uuid.New().String(), e.tx.GUID, sp.account.GUID, sp.value); err != nil {
			return fmt.Errorf("failed to commit split: %w", err)
		}
	}

	return nil
}
