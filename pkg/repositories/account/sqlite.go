package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fadedpez/sentenza/pkg/entities"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// SQLite table schemas. Balances and deltas are stored as decimal
// strings, never floats, so no precision is lost crossing the storage
// boundary.
const (
	createAccountsTableSQL = `
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		coin_balance TEXT NOT NULL DEFAULT '0',
		gem_balance TEXT NOT NULL DEFAULT '0',
		locked INTEGER NOT NULL DEFAULT 0,
		lock_expires_at TIMESTAMP,
		private INTEGER NOT NULL DEFAULT 0,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

	createLedgerEntriesTableSQL = `
	CREATE TABLE IF NOT EXISTS ledger_entries (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		currency TEXT NOT NULL,
		delta TEXT NOT NULL,
		balance_after TEXT NOT NULL,
		operation_id TEXT,
		description TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (account_id) REFERENCES accounts(id)
	)`

	createLedgerEntryIndexesSQL = `
	CREATE INDEX IF NOT EXISTS idx_ledger_entries_account_id ON ledger_entries(account_id);
	CREATE INDEX IF NOT EXISTS idx_ledger_entries_created_at ON ledger_entries(created_at DESC)
	`
)

const timestampFormat = "2006-01-02 15:04:05"

// timestampFormats covers the shapes SQLite may hand back
var timestampFormats = []string{
	timestampFormat,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05-07:00",
	time.RFC3339,
}

func parseTimestamp(value string) (time.Time, error) {
	var parseErr error
	for _, format := range timestampFormats {
		t, err := time.Parse(format, value)
		if err == nil {
			return t, nil
		}
		parseErr = err
	}
	return time.Time{}, fmt.Errorf("error parsing timestamp '%s': %w", value, parseErr)
}

// SQLiteRepository implements Repository using SQLite
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite repository
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	// Ensure directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	for _, schema := range []string{createAccountsTableSQL, createLedgerEntriesTableSQL, createLedgerEntryIndexesSQL} {
		if _, err := db.Exec(schema); err != nil {
			db.Close()
			return nil, fmt.Errorf("error creating account tables: %w", err)
		}
	}

	return &SQLiteRepository{db: db}, nil
}

// GetAccount retrieves an account by participant ID
func (r *SQLiteRepository) GetAccount(ctx context.Context, id string) (*entities.Account, error) {
	query := `SELECT id, coin_balance, gem_balance, locked, lock_expires_at, private, updated_at FROM accounts WHERE id = ?`

	var (
		coinBalance, gemBalance string
		locked, private         bool
		lockExpiresAt           sql.NullString
		updatedAt               string
	)

	acct := &entities.Account{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&acct.ID,
		&coinBalance,
		&gemBalance,
		&locked,
		&lockExpiresAt,
		&private,
		&updatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("error getting account: %w", err)
	}

	coin, err := decimal.NewFromString(coinBalance)
	if err != nil {
		return nil, fmt.Errorf("error parsing coin balance '%s': %w", coinBalance, err)
	}
	gem, err := decimal.NewFromString(gemBalance)
	if err != nil {
		return nil, fmt.Errorf("error parsing gem balance '%s': %w", gemBalance, err)
	}
	acct.Balances = map[entities.CurrencyCode]decimal.Decimal{
		entities.CurrencyCoin: coin,
		entities.CurrencyGem:  gem,
	}

	acct.Locked = locked
	acct.Private = private

	if lockExpiresAt.Valid && lockExpiresAt.String != "" {
		expires, err := parseTimestamp(lockExpiresAt.String)
		if err != nil {
			return nil, err
		}
		acct.LockExpiresAt = &expires
	}

	acct.LastUpdated, err = parseTimestamp(updatedAt)
	if err != nil {
		return nil, err
	}

	return acct, nil
}

// SaveAccount creates or updates an account
func (r *SQLiteRepository) SaveAccount(ctx context.Context, account *entities.Account) error {
	formattedTime := account.LastUpdated.Format(timestampFormat)

	var lockExpiresAt interface{}
	if account.LockExpiresAt != nil {
		lockExpiresAt = account.LockExpiresAt.Format(timestampFormat)
	}

	query := `
		INSERT INTO accounts (id, coin_balance, gem_balance, locked, lock_expires_at, private, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			coin_balance = excluded.coin_balance,
			gem_balance = excluded.gem_balance,
			locked = excluded.locked,
			lock_expires_at = excluded.lock_expires_at,
			private = excluded.private,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.Balance(entities.CurrencyCoin).String(),
		account.Balance(entities.CurrencyGem).String(),
		account.Locked,
		lockExpiresAt,
		account.Private,
		formattedTime,
	)

	if err != nil {
		return fmt.Errorf("error saving account: %w", err)
	}

	return nil
}

// AddEntry appends an audit record
func (r *SQLiteRepository) AddEntry(ctx context.Context, entry *entities.LedgerEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	query := `
		INSERT INTO ledger_entries (
			id, account_id, currency, delta, balance_after, operation_id, description, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.AccountID,
		string(entry.Currency),
		entry.Delta.String(),
		entry.BalanceAfter.String(),
		entry.OperationID,
		entry.Description,
		entry.Timestamp.Format(timestampFormat),
	)

	if err != nil {
		return fmt.Errorf("error adding ledger entry: %w", err)
	}

	return nil
}

// GetEntries retrieves recent ledger entries for an account, newest first
func (r *SQLiteRepository) GetEntries(ctx context.Context, accountID string, limit int) ([]*entities.LedgerEntry, error) {
	query := `
		SELECT id, account_id, currency, delta, balance_after, operation_id, description, created_at
		FROM ledger_entries
		WHERE account_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*entities.LedgerEntry

	for rows.Next() {
		var (
			entry               entities.LedgerEntry
			currency            string
			delta, balanceAfter string
			createdAt           string
		)

		err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&currency,
			&delta,
			&balanceAfter,
			&entry.OperationID,
			&entry.Description,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning ledger entry row: %w", err)
		}

		entry.Currency = entities.CurrencyCode(currency)

		entry.Delta, err = decimal.NewFromString(delta)
		if err != nil {
			return nil, fmt.Errorf("error parsing delta '%s': %w", delta, err)
		}
		entry.BalanceAfter, err = decimal.NewFromString(balanceAfter)
		if err != nil {
			return nil, fmt.Errorf("error parsing balance '%s': %w", balanceAfter, err)
		}

		entry.Timestamp, err = parseTimestamp(createdAt)
		if err != nil {
			return nil, err
		}

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entry rows: %w", err)
	}

	return entries, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
