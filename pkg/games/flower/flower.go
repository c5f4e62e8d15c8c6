// Package flower implements the flower-pattern game: each bettor's
// five-flower arrangement is read as a poker hand and compared against
// the host's. Hand strength comes from the paulhankin/poker evaluator;
// a stronger hand doubles the stake, a tie refunds it.
package flower

import (
	"fmt"
	"strings"

	"github.com/fadedpez/sentenza/internal/types"
	"github.com/fadedpez/sentenza/pkg/entities"
	"github.com/fadedpez/sentenza/pkg/games"
	"github.com/paulhankin/poker"
	"github.com/shopspring/decimal"
)

const handSize = 5

// SelectionPlay is the only selection a flower bet carries; the hands
// are dealt at settlement time.
const SelectionPlay = "play"

// Config holds the game's odds
type Config struct {
	WinMultiplier int64 // paid when the bettor's hand beats the host's
}

// DefaultConfig returns the default odds
func DefaultConfig() Config {
	return Config{WinMultiplier: 2}
}

// Outcome carries the dealt hands: the host's and one per bettor.
// Cards are two-character codes, rank then suit ("AS", "TD", "7H").
type Outcome struct {
	HostHand []string            `json:"host_hand"`
	Hands    map[string][]string `json:"hands"` // bettor account ID -> hand
}

// GameKind returns the kind this outcome belongs to
func (o Outcome) GameKind() entities.GameKind {
	return entities.KindFlower
}

// Validate ensures every hand parses and has exactly five cards
func (o Outcome) Validate() error {
	if _, err := parseHand(o.HostHand); err != nil {
		return fmt.Errorf("host hand: %w", err)
	}
	for bettorID, hand := range o.Hands {
		if _, err := parseHand(hand); err != nil {
			return fmt.Errorf("hand for %s: %w", bettorID, err)
		}
	}
	return nil
}

// Adapter specializes the lifecycle engine for the flower game
type Adapter struct {
	config Config
}

// New creates a flower adapter with the default odds
func New() *Adapter {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a flower adapter with custom odds
func NewWithConfig(config Config) *Adapter {
	return &Adapter{config: config}
}

// Kind returns the game kind this adapter handles
func (a *Adapter) Kind() entities.GameKind {
	return entities.KindFlower
}

// Capabilities returns the game policy: the host banks the game and
// cannot bet against themselves.
func (a *Adapter) Capabilities() games.Capabilities {
	return games.Capabilities{
		AllowSelfBet: false,
		MaxBettors:   0,
	}
}

// ValidateSelection accepts only the play selection; flower bets carry
// no choice beyond the stake.
func (a *Adapter) ValidateSelection(selection string) error {
	if selection != SelectionPlay && selection != "" {
		return types.NewCoreError(types.ErrInvalidSelection, "flower bets take no selection")
	}
	return nil
}

// ComputePayouts compares each bettor's hand against the host's. A
// missing hand for any bettor makes the whole outcome malformed so the
// game stays settleable with a corrected one.
func (a *Adapter) ComputePayouts(bets []*entities.Bet, outcome entities.Outcome) ([]games.Payout, error) {
	result, ok := outcome.(Outcome)
	if !ok {
		return nil, fmt.Errorf("expected flower outcome, got %T", outcome)
	}

	hostHand, err := parseHand(result.HostHand)
	if err != nil {
		return nil, fmt.Errorf("host hand: %w", err)
	}
	hostScore := poker.Eval5(&hostHand)

	payouts := make([]games.Payout, 0, len(bets))

	for _, bet := range bets {
		cards, exists := result.Hands[bet.BettorID]
		if !exists {
			return nil, fmt.Errorf("outcome is missing a hand for bettor %s", bet.BettorID)
		}

		hand, err := parseHand(cards)
		if err != nil {
			return nil, fmt.Errorf("hand for %s: %w", bet.BettorID, err)
		}

		score := poker.Eval5(&hand)
		switch {
		case score > hostScore:
			payouts = append(payouts, games.Payout{
				AccountID: bet.BettorID,
				Currency:  bet.Currency,
				Amount:    bet.Amount.Mul(decimal.NewFromInt(a.config.WinMultiplier)),
			})
		case score == hostScore:
			// A push hands the stake back.
			payouts = append(payouts, games.Payout{
				AccountID: bet.BettorID,
				Currency:  bet.Currency,
				Amount:    bet.Amount,
			})
		}
	}

	return payouts, nil
}

// Suits 0-3 clubs through spades, ranks 1-13 ace through king, matching
// the evaluator's encoding.
var suitLetters = map[byte]poker.Suit{
	'C': poker.Suit(0),
	'D': poker.Suit(1),
	'H': poker.Suit(2),
	'S': poker.Suit(3),
}

var rankLetters = map[byte]poker.Rank{
	'A': poker.Rank(1),
	'T': poker.Rank(10),
	'J': poker.Rank(11),
	'Q': poker.Rank(12),
	'K': poker.Rank(13),
}

// parseCard reads a two-character card code, rank then suit
func parseCard(code string) (poker.Card, error) {
	var zero poker.Card

	c := strings.ToUpper(strings.TrimSpace(code))
	if len(c) != 2 {
		return zero, fmt.Errorf("invalid card %q", code)
	}

	rank, ok := rankLetters[c[0]]
	if !ok {
		if c[0] < '2' || c[0] > '9' {
			return zero, fmt.Errorf("invalid card rank in %q", code)
		}
		rank = poker.Rank(c[0] - '0')
	}

	suit, ok := suitLetters[c[1]]
	if !ok {
		return zero, fmt.Errorf("invalid card suit in %q", code)
	}

	return poker.MakeCard(suit, rank)
}

func parseHand(codes []string) ([handSize]poker.Card, error) {
	var hand [handSize]poker.Card
	if len(codes) != handSize {
		return hand, fmt.Errorf("a hand needs %d cards, got %d", handSize, len(codes))
	}

	seen := make(map[poker.Card]bool, handSize)
	for i, code := range codes {
		card, err := parseCard(code)
		if err != nil {
			return hand, err
		}
		if seen[card] {
			return hand, fmt.Errorf("duplicate card %q", code)
		}
		seen[card] = true
		hand[i] = card
	}

	return hand, nil
}
