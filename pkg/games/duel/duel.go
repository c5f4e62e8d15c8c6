// Package duel implements the head-to-head duel: spectators back either
// the host or the challenger, and the winning side splits the losing
// side's stakes pro-rata.
package duel

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

// Outcome names the side that won the duel
type Outcome struct {
	Winner string `json:"winner"`
}

// GameKind returns the kind this outcome belongs to
func (o Outcome) GameKind() entities.GameKind {
	return entities.KindDuel
}

// Validate ensures the outcome is well formed before settlement
func (o Outcome) Validate() error {
	if o.Winner != SelectionHost && o.Winner != SelectionChallenger {
		return fmt.Errorf("winner must be %q or %q, got %q", SelectionHost, SelectionChallenger, o.Winner)
	}
	return nil
}

// Adapter specializes the lifecycle engine for duels
type Adapter struct{}

// New creates a duel adapter
func New() *Adapter {
	return &Adapter{}
}

// Kind returns the game kind this adapter handles
func (a *Adapter) Kind() entities.GameKind {
	return entities.KindDuel
}

// Capabilities returns the duel policy: any number of spectators, but
// the host may not bet on their own fight.
func (a *Adapter) Capabilities() games.Capabilities {
	return games.Capabilities{
		AllowSelfBet: false,
		MaxBettors:   0,
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

// ComputePayouts splits the pot per currency: winners get their stake
// back plus a pro-rata share of the losing stakes. If nobody backed the
// winning side, every bet is refunded; the pot never goes unclaimed.
// Integer division truncates, and the remainder goes to the earliest
// winning bet so the pot is conserved exactly.
func (a *Adapter) ComputePayouts(bets []*entities.Bet, outcome entities.Outcome) ([]games.Payout, error) {
	result, ok := outcome.(Outcome)
	if !ok {
		return nil, fmt.Errorf("expected duel outcome, got %T", outcome)
	}

	payouts := make([]games.Payout, 0, len(bets))

	// Each currency is its own independent pot.
	for _, currency := range entities.Currencies {
		var winners []*entities.Bet
		winnerTotal := decimal.Zero
		loserTotal := decimal.Zero

		for _, bet := range bets {
			if bet.Currency != currency {
				continue
			}
			if bet.Selection == result.Winner {
				winners = append(winners, bet)
				winnerTotal = winnerTotal.Add(bet.Amount)
			} else {
				loserTotal = loserTotal.Add(bet.Amount)
			}
		}

		if len(winners) == 0 {
			// No winning side backed; hand every stake back.
			for _, bet := range bets {
				if bet.Currency != currency {
					continue
				}
				payouts = append(payouts, games.Payout{
					AccountID: bet.BettorID,
					Currency:  currency,
					Amount:    bet.Amount,
				})
			}
			continue
		}

		distributed := decimal.Zero
		shares := make([]decimal.Decimal, len(winners))
		for i, bet := range winners {
			share := loserTotal.Mul(bet.Amount).Div(winnerTotal).Truncate(0)
			shares[i] = share
			distributed = distributed.Add(share)
		}
		// Truncation remainder goes to the first winner.
		shares[0] = shares[0].Add(loserTotal.Sub(distributed))

		for i, bet := range winners {
			payouts = append(payouts, games.Payout{
				AccountID: bet.BettorID,
				Currency:  currency,
				Amount:    bet.Amount.Add(shares[i]),
			})
		}
	}

	return payouts, nil
}
