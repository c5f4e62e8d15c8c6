package flower

import (
	"testing"

	"github.com/fadedpez/sentenza/internal/types"
	"github.com/fadedpez/sentenza/pkg/entities"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pairOfAces      = []string{"AS", "AD", "2C", "5H", "9D"}
	pairOfAcesAgain = []string{"AC", "AH", "2D", "5S", "9C"}
	threeKings      = []string{"KS", "KD", "KC", "2H", "3D"}
	jackHigh        = []string{"2S", "4D", "7C", "8H", "JD"}
)

func coinBet(bettorID string, amount int64) *entities.Bet {
	return &entities.Bet{
		ID:       bettorID + "-bet",
		BettorID: bettorID,
		Currency: entities.CurrencyCoin,
		Amount:   decimal.NewFromInt(amount),
	}
}

func TestValidateSelection(t *testing.T) {
	adapter := New()

	assert.NoError(t, adapter.ValidateSelection(SelectionPlay))
	assert.NoError(t, adapter.ValidateSelection(""))

	err := adapter.ValidateSelection("host")
	assert.True(t, types.IsCode(err, types.ErrInvalidSelection))
}

func TestOutcomeValidate(t *testing.T) {
	good := Outcome{
		HostHand: pairOfAces,
		Hands:    map[string][]string{"alice": threeKings},
	}
	assert.NoError(t, good.Validate())

	tests := []struct {
		name    string
		outcome Outcome
	}{
		{"short host hand", Outcome{HostHand: pairOfAces[:4]}},
		{"bad card code", Outcome{HostHand: []string{"AS", "AD", "2C", "5H", "ZZ"}}},
		{"duplicate card", Outcome{HostHand: []string{"AS", "AS", "2C", "5H", "9D"}}},
		{"bad bettor hand", Outcome{
			HostHand: pairOfAces,
			Hands:    map[string][]string{"alice": {"1X"}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.outcome.Validate())
		})
	}
}

func TestComputePayouts(t *testing.T) {
	adapter := New()

	bets := []*entities.Bet{
		coinBet("winner", 100),
		coinBet("pusher", 100),
		coinBet("loser", 100),
	}
	outcome := Outcome{
		HostHand: pairOfAces,
		Hands: map[string][]string{
			"winner": threeKings,
			"pusher": pairOfAcesAgain,
			"loser":  jackHigh,
		},
	}

	payouts, err := adapter.ComputePayouts(bets, outcome)
	require.NoError(t, err)
	require.Len(t, payouts, 2)

	// Three kings beat the host's aces and pay double; the identical pair
	// pushes and gets the stake back; jack high simply loses.
	assert.Equal(t, "winner", payouts[0].AccountID)
	assert.True(t, payouts[0].Amount.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, "pusher", payouts[1].AccountID)
	assert.True(t, payouts[1].Amount.Equal(decimal.NewFromInt(100)))
}

func TestComputePayoutsRequiresEveryBettorHand(t *testing.T) {
	adapter := New()

	bets := []*entities.Bet{coinBet("alice", 100), coinBet("bob", 100)}
	outcome := Outcome{
		HostHand: pairOfAces,
		Hands:    map[string][]string{"alice": threeKings},
	}

	_, err := adapter.ComputePayouts(bets, outcome)
	assert.ErrorContains(t, err, "bob")
}

func TestCustomOddsAreHonored(t *testing.T) {
	adapter := NewWithConfig(Config{WinMultiplier: 3})

	bets := []*entities.Bet{coinBet("alice", 100)}
	outcome := Outcome{
		HostHand: pairOfAces,
		Hands:    map[string][]string{"alice": threeKings},
	}

	payouts, err := adapter.ComputePayouts(bets, outcome)
	require.NoError(t, err)
	require.Len(t, payouts, 1)
	assert.True(t, payouts[0].Amount.Equal(decimal.NewFromInt(300)))
}

func TestParseCard(t *testing.T) {
	// Codes are case-insensitive and tolerate surrounding whitespace.
	a, err := parseCard("as")
	require.NoError(t, err)
	b, err := parseCard(" AS ")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	for _, code := range []string{"", "A", "ASX", "1S", "AX"} {
		_, err := parseCard(code)
		assert.Error(t, err, "code %q", code)
	}
}

func TestComputePayoutsRejectsForeignOutcome(t *testing.T) {
	adapter := New()

	_, err := adapter.ComputePayouts(nil, entities.RawOutcome{Kind: entities.KindFlower})
	assert.Error(t, err)
}
