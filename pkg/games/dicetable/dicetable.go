// Package dicetable implements the house dice table: the host banks the
// game, bettors pick a range word or an exact number, and a single
// 1-100 roll decides every bet. Winning multipliers are policy knobs on
// the adapter, not engine logic.
package dicetable

import (
	"fmt"
	"strconv"

	"github.com/fadedpez/sentenza/internal/types"
	"github.com/fadedpez/sentenza/pkg/entities"
	"github.com/fadedpez/sentenza/pkg/games"
	"github.com/shopspring/decimal"
)

const (
	SelectionHigher = "higher"
	SelectionLower  = "lower"
	SelectionOver   = "over"
	SelectionUnder  = "under"
)

// Config holds the table's odds and range boundaries. The exact
// multipliers are product policy; these defaults are placeholders the
// caller is expected to override once the odds table is confirmed.
type Config struct {
	HigherLowerMultiplier int64 // higher: 51-100, lower: 1-50
	OverUnderMultiplier   int64 // over: 76-100, under: 1-25
	ExactMultiplier       int64 // exact number match
}

// DefaultConfig returns the default odds table
func DefaultConfig() Config {
	return Config{
		HigherLowerMultiplier: 2,
		OverUnderMultiplier:   4,
		ExactMultiplier:       50,
	}
}

// Outcome is the table's single roll
type Outcome struct {
	Roll int `json:"roll"`
}

// GameKind returns the kind this outcome belongs to
func (o Outcome) GameKind() entities.GameKind {
	return entities.KindDiceTable
}

// Validate ensures the outcome is well formed before settlement
func (o Outcome) Validate() error {
	if o.Roll < 1 || o.Roll > 100 {
		return fmt.Errorf("roll must be between 1 and 100, got %d", o.Roll)
	}
	return nil
}

// Adapter specializes the lifecycle engine for the dice table
type Adapter struct {
	config Config
}

// New creates a dice table adapter with the default odds
func New() *Adapter {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a dice table adapter with custom odds
func NewWithConfig(config Config) *Adapter {
	return &Adapter{config: config}
}

// Kind returns the game kind this adapter handles
func (a *Adapter) Kind() entities.GameKind {
	return entities.KindDiceTable
}

// Capabilities returns the table policy: the host banks the table and
// cannot bet against themselves.
func (a *Adapter) Capabilities() games.Capabilities {
	return games.Capabilities{
		AllowSelfBet: false,
		MaxBettors:   0,
	}
}

// ValidateSelection accepts one of the range words or an exact number
// between 1 and 100.
func (a *Adapter) ValidateSelection(selection string) error {
	switch selection {
	case SelectionHigher, SelectionLower, SelectionOver, SelectionUnder:
		return nil
	}

	n, err := strconv.Atoi(selection)
	if err != nil || n < 1 || n > 100 {
		return types.NewCoreError(types.ErrInvalidSelection,
			"pick higher, lower, over, under, or a number between 1 and 100")
	}
	return nil
}

// ComputePayouts pays each winning bet its stake times the configured
// multiplier. Losing stakes stay with the bank.
func (a *Adapter) ComputePayouts(bets []*entities.Bet, outcome entities.Outcome) ([]games.Payout, error) {
	result, ok := outcome.(Outcome)
	if !ok {
		return nil, fmt.Errorf("expected dice table outcome, got %T", outcome)
	}

	payouts := make([]games.Payout, 0, len(bets))

	for _, bet := range bets {
		multiplier := a.multiplierFor(bet.Selection, result.Roll)
		if multiplier == 0 {
			continue
		}

		payouts = append(payouts, games.Payout{
			AccountID: bet.BettorID,
			Currency:  bet.Currency,
			Amount:    bet.Amount.Mul(decimal.NewFromInt(multiplier)),
		})
	}

	return payouts, nil
}

// multiplierFor returns the winning multiplier for a selection against a
// roll, zero when the bet lost.
func (a *Adapter) multiplierFor(selection string, roll int) int64 {
	switch selection {
	case SelectionHigher:
		if roll >= 51 {
			return a.config.HigherLowerMultiplier
		}
	case SelectionLower:
		if roll <= 50 {
			return a.config.HigherLowerMultiplier
		}
	case SelectionOver:
		if roll >= 76 {
			return a.config.OverUnderMultiplier
		}
	case SelectionUnder:
		if roll <= 25 {
			return a.config.OverUnderMultiplier
		}
	default:
		if n, err := strconv.Atoi(selection); err == nil && n == roll {
			return a.config.ExactMultiplier
		}
	}
	return 0
}
