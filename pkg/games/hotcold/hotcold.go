// Package hotcold implements the hot/cold color game: the host banks the
// game, bettors pick an exact color or the hot/cold category, and a
// single drawn color decides every bet.
package hotcold

import (
	"fmt"

	"github.com/fadedpez/sentenza/internal/types"
	"github.com/fadedpez/sentenza/pkg/entities"
	"github.com/fadedpez/sentenza/pkg/games"
	"github.com/shopspring/decimal"
)

const (
	CategoryHot  = "hot"
	CategoryCold = "cold"
)

// hot colors burn, cold colors chill
var categories = map[string]string{
	"red":    CategoryHot,
	"orange": CategoryHot,
	"yellow": CategoryHot,
	"blue":   CategoryCold,
	"green":  CategoryCold,
	"purple": CategoryCold,
}

// Config holds the game's odds. Exact multipliers are product policy;
// override the defaults once the odds table is confirmed.
type Config struct {
	ColorMultiplier    int64 // exact color match
	CategoryMultiplier int64 // hot/cold category match
}

// DefaultConfig returns the default odds
func DefaultConfig() Config {
	return Config{
		ColorMultiplier:    5,
		CategoryMultiplier: 2,
	}
}

// Outcome is the drawn color
type Outcome struct {
	Color string `json:"color"`
}

// GameKind returns the kind this outcome belongs to
func (o Outcome) GameKind() entities.GameKind {
	return entities.KindHotCold
}

// Validate ensures the outcome is well formed before settlement
func (o Outcome) Validate() error {
	if _, ok := categories[o.Color]; !ok {
		return fmt.Errorf("unknown color %q", o.Color)
	}
	return nil
}

// Adapter specializes the lifecycle engine for the hot/cold game
type Adapter struct {
	config Config
}

// New creates a hot/cold adapter with the default odds
func New() *Adapter {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a hot/cold adapter with custom odds
func NewWithConfig(config Config) *Adapter {
	return &Adapter{config: config}
}

// Kind returns the game kind this adapter handles
func (a *Adapter) Kind() entities.GameKind {
	return entities.KindHotCold
}

// Capabilities returns the game policy: the host banks the game and
// cannot bet against themselves.
func (a *Adapter) Capabilities() games.Capabilities {
	return games.Capabilities{
		AllowSelfBet: false,
		MaxBettors:   0,
	}
}

// ValidateSelection accepts an exact color or the hot/cold category
func (a *Adapter) ValidateSelection(selection string) error {
	if selection == CategoryHot || selection == CategoryCold {
		return nil
	}
	if _, ok := categories[selection]; ok {
		return nil
	}
	return types.NewCoreError(types.ErrInvalidSelection,
		"pick hot, cold, or a color (red, orange, yellow, blue, green, purple)")
}

// ComputePayouts pays exact color matches at the color multiplier and
// category matches at the category multiplier. Losing stakes stay with
// the bank.
func (a *Adapter) ComputePayouts(bets []*entities.Bet, outcome entities.Outcome) ([]games.Payout, error) {
	result, ok := outcome.(Outcome)
	if !ok {
		return nil, fmt.Errorf("expected hot/cold outcome, got %T", outcome)
	}

	category := categories[result.Color]
	payouts := make([]games.Payout, 0, len(bets))

	for _, bet := range bets {
		var multiplier int64
		switch bet.Selection {
		case result.Color:
			multiplier = a.config.ColorMultiplier
		case category:
			multiplier = a.config.CategoryMultiplier
		default:
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
