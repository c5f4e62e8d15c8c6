package account

import (
	"context"
	"testing"

	"github.com/fadedpez/sentenza/pkg/entities"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndGetAccount(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	acct := entities.NewAccount("alice")
	acct.Balances[entities.CurrencyCoin] = decimal.NewFromInt(500)
	require.NoError(t, repo.SaveAccount(ctx, acct))

	got, err := repo.GetAccount(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, got.Balance(entities.CurrencyCoin).Equal(decimal.NewFromInt(500)))
	assert.False(t, got.LastUpdated.IsZero())

	// The stored copy is isolated from caller mutation.
	got.Balances[entities.CurrencyCoin] = decimal.NewFromInt(9999)
	again, err := repo.GetAccount(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, again.Balance(entities.CurrencyCoin).Equal(decimal.NewFromInt(500)))
}

func TestGetAccountNotFound(t *testing.T) {
	repo := NewMemoryRepository()

	_, err := repo.GetAccount(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestEntriesNewestFirstWithLimit(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		entry := &entities.LedgerEntry{
			AccountID:    "alice",
			Currency:     entities.CurrencyCoin,
			Delta:        decimal.NewFromInt(i),
			BalanceAfter: decimal.NewFromInt(i),
		}
		require.NoError(t, repo.AddEntry(ctx, entry))
		assert.NotEmpty(t, entry.ID, "AddEntry assigns an ID")
		assert.False(t, entry.Timestamp.IsZero(), "AddEntry stamps the entry")
	}

	entries, err := repo.GetEntries(ctx, "alice", 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.True(t, entries[0].Delta.Equal(decimal.NewFromInt(5)))
	assert.True(t, entries[2].Delta.Equal(decimal.NewFromInt(3)))
}

func TestEntriesForUnknownAccountAreEmpty(t *testing.T) {
	repo := NewMemoryRepository()

	entries, err := repo.GetEntries(context.Background(), "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
