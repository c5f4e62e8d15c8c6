package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// GameKind identifies one of the wagering instruments.
type GameKind string

const (
	KindDuel      GameKind = "DUEL"
	KindDiceTable GameKind = "DICE_TABLE"
	KindDiceDuel  GameKind = "DICE_DUEL"
	KindFlower    GameKind = "FLOWER"
	KindHotCold   GameKind = "HOT_COLD"
)

// Kinds lists every game kind.
var Kinds = []GameKind{KindDuel, KindDiceTable, KindDiceDuel, KindFlower, KindHotCold}

// Valid reports whether the kind is known.
func (k GameKind) Valid() bool {
	for _, kind := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// GameStatus is the lifecycle state of a game.
type GameStatus string

const (
	StatusOpen      GameStatus = "OPEN"
	StatusClosed    GameStatus = "CLOSED"
	StatusSettled   GameStatus = "SETTLED"
	StatusCancelled GameStatus = "CANCELLED"
)

// IsTerminal reports whether the status can never change again.
func (s GameStatus) IsTerminal() bool {
	return s == StatusSettled || s == StatusCancelled
}

// Bet is one participant's stake on a game. A Bet only exists after the
// matching debit has been committed to the bettor's account.
type Bet struct {
	ID        string
	GameID    string
	BettorID  string
	Currency  CurrencyCode
	Amount    decimal.Decimal // positive, integer-valued
	Selection string          // kind-specific tag (side, color, number)
	PlacedAt  time.Time
}

// Outcome is the kind-specific result a game settles against.
// Each adapter defines its own concrete outcome type.
type Outcome interface {
	// GameKind returns the kind this outcome belongs to
	GameKind() GameKind
	// Validate ensures the outcome is well formed before settlement
	Validate() error
}

// Game is one running instance of a wagering instrument. It exclusively
// owns its Bets; they never outlive it.
type Game struct {
	ID        string
	HostID    string
	Kind      GameKind
	Status    GameStatus
	Bets      []*Bet // in placement order
	Result    Outcome
	CreatedAt time.Time
}

// NewGame creates an open game with no bets.
func NewGame(id, hostID string, kind GameKind) *Game {
	return &Game{
		ID:        id,
		HostID:    hostID,
		Kind:      kind,
		Status:    StatusOpen,
		Bets:      make([]*Bet, 0),
		CreatedAt: time.Now(),
	}
}

// Clone returns a deep copy of the game and its bets.
func (g *Game) Clone() *Game {
	cp := *g
	cp.Bets = make([]*Bet, len(g.Bets))
	for i, b := range g.Bets {
		bet := *b
		cp.Bets[i] = &bet
	}
	return &cp
}

// TotalStaked sums the bet amounts currently held by the game, per currency.
func (g *Game) TotalStaked() map[CurrencyCode]decimal.Decimal {
	totals := make(map[CurrencyCode]decimal.Decimal)
	for _, b := range g.Bets {
		totals[b.Currency] = totals[b.Currency].Add(b.Amount)
	}
	return totals
}
