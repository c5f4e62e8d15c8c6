package hotcold

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

	valid := []string{CategoryHot, CategoryCold, "red", "orange", "yellow", "blue", "green", "purple"}
	for _, selection := range valid {
		assert.NoError(t, adapter.ValidateSelection(selection), "selection %q", selection)
	}

	invalid := []string{"", "pink", "warm", "RED"}
	for _, selection := range invalid {
		err := adapter.ValidateSelection(selection)
		assert.True(t, types.IsCode(err, types.ErrInvalidSelection), "selection %q", selection)
	}
}

func TestOutcomeValidate(t *testing.T) {
	assert.NoError(t, Outcome{Color: "red"}.Validate())
	assert.NoError(t, Outcome{Color: "purple"}.Validate())
	assert.Error(t, Outcome{Color: "pink"}.Validate())
	assert.Error(t, Outcome{}.Validate())
}

func TestComputePayouts(t *testing.T) {
	adapter := New()

	bets := []*entities.Bet{
		coinBet("alice", 10, "red"),       // exact color
		coinBet("bob", 10, CategoryHot),   // category match
		coinBet("carol", 10, "blue"),      // wrong color
		coinBet("dave", 10, CategoryCold), // wrong category
	}

	payouts, err := adapter.ComputePayouts(bets, Outcome{Color: "red"})
	require.NoError(t, err)
	require.Len(t, payouts, 2)

	assert.Equal(t, "alice", payouts[0].AccountID)
	assert.True(t, payouts[0].Amount.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, "bob", payouts[1].AccountID)
	assert.True(t, payouts[1].Amount.Equal(decimal.NewFromInt(20)))
}

func TestColorInOtherCategoryLoses(t *testing.T) {
	adapter := New()

	// Orange is hot but it is not the drawn color, so an exact orange bet
	// loses even though a hot bet would have won.
	bets := []*entities.Bet{coinBet("alice", 10, "orange")}

	payouts, err := adapter.ComputePayouts(bets, Outcome{Color: "red"})
	require.NoError(t, err)
	assert.Empty(t, payouts)
}

func TestCustomOddsAreHonored(t *testing.T) {
	adapter := NewWithConfig(Config{ColorMultiplier: 7, CategoryMultiplier: 3})

	bets := []*entities.Bet{
		coinBet("alice", 10, "green"),
		coinBet("bob", 10, CategoryCold),
	}

	payouts, err := adapter.ComputePayouts(bets, Outcome{Color: "green"})
	require.NoError(t, err)
	require.Len(t, payouts, 2)
	assert.True(t, payouts[0].Amount.Equal(decimal.NewFromInt(70)))
	assert.True(t, payouts[1].Amount.Equal(decimal.NewFromInt(30)))
}

func TestComputePayoutsRejectsForeignOutcome(t *testing.T) {
	adapter := New()

	_, err := adapter.ComputePayouts(nil, entities.RawOutcome{Kind: entities.KindHotCold})
	assert.Error(t, err)
}
