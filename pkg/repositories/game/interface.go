package game

import (
	"context"
	"errors"

	"github.com/fadedpez/sentenza/pkg/entities"
)

var (
	ErrGameNotFound = errors.New("game not found")
)

//go:generate mockgen -source=$GOFILE -destination=mock/mock.go -package=mock_game

// Repository defines storage operations for games and their bets.
// A game row always carries its full ordered bet list; bets never
// outlive their game.
type Repository interface {
	// SaveGame creates or updates a game together with its bets
	SaveGame(ctx context.Context, game *entities.Game) error

	// GetGame retrieves a game by ID
	GetGame(ctx context.Context, id string) (*entities.Game, error)

	// GetActiveGame retrieves the host's non-terminal game of a kind,
	// if any
	GetActiveGame(ctx context.Context, hostID string, kind entities.GameKind) (*entities.Game, error)
}
