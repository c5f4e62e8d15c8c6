package account

import (
	"context"
	"errors"

	"github.com/fadedpez/sentenza/pkg/entities"
)

var (
	ErrAccountNotFound = errors.New("account not found")
)

//go:generate mockgen -source=$GOFILE -destination=mock/mock.go -package=mock_account

// Repository defines storage operations for accounts and their
// append-only ledger entries.
type Repository interface {
	// GetAccount retrieves an account by participant ID
	GetAccount(ctx context.Context, id string) (*entities.Account, error)

	// SaveAccount creates or updates an account
	SaveAccount(ctx context.Context, account *entities.Account) error

	// AddEntry appends an audit record; entries are never mutated
	AddEntry(ctx context.Context, entry *entities.LedgerEntry) error

	// GetEntries retrieves recent ledger entries for an account,
	// newest first
	GetEntries(ctx context.Context, accountID string, limit int) ([]*entities.LedgerEntry, error)
}
