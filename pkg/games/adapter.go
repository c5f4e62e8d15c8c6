// Package games defines the contract between the lifecycle engine and
// the kind-specific adapters. Adapters contribute bet validation and
// payout policy only; they never touch the ledger themselves, so money
// conservation is enforced in exactly one place.
package games

import (
	"github.com/fadedpez/sentenza/pkg/entities"
	"github.com/shopspring/decimal"
)

// Payout is one credit owed to an account at settlement.
type Payout struct {
	AccountID string
	Currency  entities.CurrencyCode
	Amount    decimal.Decimal
}

// Capabilities is the per-kind policy the engine consults instead of
// branching on kind. DiceDuel, for example, is inherently two-party.
type Capabilities struct {
	// AllowSelfBet permits the host to bet on their own game
	AllowSelfBet bool

	// MaxBettors caps the number of bets; 0 means unlimited
	MaxBettors int
}

// Adapter specializes the generic game lifecycle for one kind.
type Adapter interface {
	// Kind returns the game kind this adapter handles
	Kind() entities.GameKind

	// Capabilities returns the kind's policy configuration
	Capabilities() Capabilities

	// ValidateSelection checks a bet's selection tag before any money moves
	ValidateSelection(selection string) error

	// ComputePayouts turns an outcome and the bet list into the credits
	// owed back to bettors. Pure; no side effects.
	ComputePayouts(bets []*entities.Bet, outcome entities.Outcome) ([]Payout, error)
}
