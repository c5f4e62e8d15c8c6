package duel

import (
	"testing"

	"github.com/fadedpez/sentenza/internal/types"
	"github.com/fadedpez/sentenza/pkg/entities"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coinBet(bettorID string, amount int64, selection string) *entities.Bet {
	return &entities.Bet{
		ID:        bettorID + "-bet",
		BettorID:  bettorID,
		Currency:  entities.CurrencyCoin,
		Amount:    decimal.NewFromInt(amount),
		Selection: selection,
	}
}

func TestValidateSelection(t *testing.T) {
	adapter := New()

	assert.NoError(t, adapter.ValidateSelection(SelectionHost))
	assert.NoError(t, adapter.ValidateSelection(SelectionChallenger))

	for _, selection := range []string{"", "both", "HOST", "winner"} {
		err := adapter.ValidateSelection(selection)
		assert.True(t, types.IsCode(err, types.ErrInvalidSelection), "selection %q", selection)
	}
}

func TestOutcomeValidate(t *testing.T) {
	assert.NoError(t, Outcome{Winner: SelectionHost}.Validate())
	assert.NoError(t, Outcome{Winner: SelectionChallenger}.Validate())
	assert.Error(t, Outcome{Winner: "draw"}.Validate())
	assert.Error(t, Outcome{}.Validate())
}

func TestComputePayoutsProRataWithRemainder(t *testing.T) {
	adapter := New()

	bets := []*entities.Bet{
		coinBet("alice", 100, SelectionHost),
		coinBet("bob", 50, SelectionHost),
		coinBet("carol", 100, SelectionChallenger),
	}

	payouts, err := adapter.ComputePayouts(bets, Outcome{Winner: SelectionHost})
	require.NoError(t, err)
	require.Len(t, payouts, 2)

	// The 100 losing coins split 2:1 between the winners. Truncation
	// leaves one coin over, which the earliest winner collects.
	assert.Equal(t, "alice", payouts[0].AccountID)
	assert.True(t, payouts[0].Amount.Equal(decimal.NewFromInt(167)))
	assert.Equal(t, "bob", payouts[1].AccountID)
	assert.True(t, payouts[1].Amount.Equal(decimal.NewFromInt(83)))

	// Paid out exactly what was staked.
	total := decimal.Zero
	for _, p := range payouts {
		total = total.Add(p.Amount)
	}
	assert.True(t, total.Equal(decimal.NewFromInt(250)))
}

func TestComputePayoutsRefundsWhenNobodyBackedWinner(t *testing.T) {
	adapter := New()

	bets := []*entities.Bet{
		coinBet("alice", 100, SelectionChallenger),
		coinBet("bob", 60, SelectionChallenger),
	}

	payouts, err := adapter.ComputePayouts(bets, Outcome{Winner: SelectionHost})
	require.NoError(t, err)
	require.Len(t, payouts, 2)

	assert.True(t, payouts[0].Amount.Equal(decimal.NewFromInt(100)))
	assert.True(t, payouts[1].Amount.Equal(decimal.NewFromInt(60)))
}

func TestComputePayoutsKeepsCurrenciesSeparate(t *testing.T) {
	adapter := New()

	gemBet := &entities.Bet{
		ID:        "dave-bet",
		BettorID:  "dave",
		Currency:  entities.CurrencyGem,
		Amount:    decimal.NewFromInt(5),
		Selection: SelectionChallenger,
	}
	bets := []*entities.Bet{
		coinBet("alice", 100, SelectionHost),
		coinBet("bob", 100, SelectionChallenger),
		gemBet,
	}

	payouts, err := adapter.ComputePayouts(bets, Outcome{Winner: SelectionHost})
	require.NoError(t, err)
	require.Len(t, payouts, 2)

	// Alice takes the whole coin pot; nobody backed the host with gems,
	// so dave's gem stake comes back untouched.
	assert.Equal(t, "alice", payouts[0].AccountID)
	assert.Equal(t, entities.CurrencyCoin, payouts[0].Currency)
	assert.True(t, payouts[0].Amount.Equal(decimal.NewFromInt(200)))

	assert.Equal(t, "dave", payouts[1].AccountID)
	assert.Equal(t, entities.CurrencyGem, payouts[1].Currency)
	assert.True(t, payouts[1].Amount.Equal(decimal.NewFromInt(5)))
}

func TestComputePayoutsRejectsForeignOutcome(t *testing.T) {
	adapter := New()

	_, err := adapter.ComputePayouts(nil, entities.RawOutcome{Kind: entities.KindDuel})
	assert.Error(t, err)
}
