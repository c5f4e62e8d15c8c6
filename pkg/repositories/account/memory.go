package account

import (
	"context"
	"sync"
	"time"

	"github.com/fadedpez/sentenza/pkg/entities"
	"github.com/google/uuid"
)

// MemoryRepository implements Repository using in-memory storage
type MemoryRepository struct {
	accounts map[string]*entities.Account
	entries  map[string][]*entities.LedgerEntry
	mu       sync.RWMutex
}

// NewMemoryRepository creates a new in-memory account repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		accounts: make(map[string]*entities.Account),
		entries:  make(map[string][]*entities.LedgerEntry),
	}
}

// GetAccount retrieves an account by participant ID
func (r *MemoryRepository) GetAccount(ctx context.Context, id string) (*entities.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acct, exists := r.accounts[id]
	if !exists {
		return nil, ErrAccountNotFound
	}

	// Return a copy to prevent concurrent modification
	return acct.Clone(), nil
}

// SaveAccount creates or updates an account
func (r *MemoryRepository) SaveAccount(ctx context.Context, account *entities.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account.LastUpdated = time.Now()
	r.accounts[account.ID] = account.Clone()

	return nil
}

// AddEntry appends an audit record
func (r *MemoryRepository) AddEntry(ctx context.Context, entry *entities.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	entryCopy := *entry
	r.entries[entry.AccountID] = append(r.entries[entry.AccountID], &entryCopy)

	return nil
}

// GetEntries retrieves recent ledger entries for an account, newest first
func (r *MemoryRepository) GetEntries(ctx context.Context, accountID string, limit int) ([]*entities.LedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.entries[accountID]

	result := make([]*entities.LedgerEntry, 0, limit)
	for i := len(entries) - 1; i >= 0 && len(result) < limit; i-- {
		entryCopy := *entries[i]
		result = append(result, &entryCopy)
	}

	return result, nil
}
