// Package diceduel implements the dice-vs-dice duel: the host and one
// challenger each stake a bet, both roll, and the higher roll takes the
// whole pot. Ties refund both stakes.
package diceduel

import (
	"fmt"

	"github.com/fadedpez/sentenza/internal/types"
	"github.com/fadedpez/sentenza/pkg/entities"
	"github.com/fadedpez/sentenza/pkg/games"
	"github.com/shopspring/decimal"
)

const (
	SelectionHost       = "host"
	SelectionChallenger = "challenger"
)

// Outcome carries both parties' rolls
type Outcome struct {
	HostRoll       int `json:"host_roll"`
	ChallengerRoll int `json:"challenger_roll"`
}

// GameKind returns the kind this outcome belongs to
func (o Outcome) GameKind() entities.GameKind {
	return entities.KindDiceDuel
}

// Validate ensures the outcome is well formed before settlement
func (o Outcome) Validate() error {
	if o.HostRoll < 1 || o.ChallengerRoll < 1 {
		return fmt.Errorf("rolls must be at least 1, got %d and %d", o.HostRoll, o.ChallengerRoll)
	}
	return nil
}

// Adapter specializes the lifecycle engine for dice duels
type Adapter struct{}

// New creates a dice duel adapter
func New() *Adapter {
	return &Adapter{}
}

// Kind returns the game kind this adapter handles
func (a *Adapter) Kind() entities.GameKind {
	return entities.KindDiceDuel
}

// Capabilities returns the dice duel policy. The duel is inherently
// two-party: the host stakes their own side, so self-bets are allowed
// and the game holds at most two bets.
func (a *Adapter) Capabilities() games.Capabilities {
	return games.Capabilities{
		AllowSelfBet: true,
		MaxBettors:   2,
	}
}

// ValidateSelection checks a bet's selection tag
func (a *Adapter) ValidateSelection(selection string) error {
	if selection != SelectionHost && selection != SelectionChallenger {
		return types.NewCoreError(types.ErrInvalidSelection,
			fmt.Sprintf("pick %q or %q", SelectionHost, SelectionChallenger))
	}
	return nil
}

// ComputePayouts hands the whole pot to the winning side per currency.
// A tie, or a side with no bet behind it, refunds every stake.
func (a *Adapter) ComputePayouts(bets []*entities.Bet, outcome entities.Outcome) ([]games.Payout, error) {
	result, ok := outcome.(Outcome)
	if !ok {
		return nil, fmt.Errorf("expected dice duel outcome, got %T", outcome)
	}

	var winner string
	switch {
	case result.HostRoll > result.ChallengerRoll:
		winner = SelectionHost
	case result.ChallengerRoll > result.HostRoll:
		winner = SelectionChallenger
	}

	refundAll := winner == ""
	if !refundAll {
		found := false
		for _, bet := range bets {
			if bet.Selection == winner {
				found = true
				break
			}
		}
		// Nobody staked the winning side; nothing to award the pot to.
		refundAll = !found
	}

	payouts := make([]games.Payout, 0, len(bets))

	if refundAll {
		for _, bet := range bets {
			payouts = append(payouts, games.Payout{
				AccountID: bet.BettorID,
				Currency:  bet.Currency,
				Amount:    bet.Amount,
			})
		}
		return payouts, nil
	}

	for _, currency := range entities.Currencies {
		pot := decimal.Zero
		var winningBet *entities.Bet

		for _, bet := range bets {
			if bet.Currency != currency {
				continue
			}
			pot = pot.Add(bet.Amount)
			if bet.Selection == winner {
				winningBet = bet
			}
		}

		if winningBet == nil {
			// The winning side staked in the other currency; refund this one.
			for _, bet := range bets {
				if bet.Currency == currency {
					payouts = append(payouts, games.Payout{
						AccountID: bet.BettorID,
						Currency:  currency,
						Amount:    bet.Amount,
					})
				}
			}
			continue
		}

		payouts = append(payouts, games.Payout{
			AccountID: winningBet.BettorID,
			Currency:  currency,
			Amount:    pot,
		})
	}

	return payouts, nil
}
