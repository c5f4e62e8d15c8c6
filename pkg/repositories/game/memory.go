package game

import (
	"context"
	"sync"

	"github.com/fadedpez/sentenza/pkg/entities"
)

// MemoryRepository implements Repository using in-memory storage
type MemoryRepository struct {
	games map[string]*entities.Game
	mu    sync.RWMutex
}

// NewMemoryRepository creates a new in-memory game repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		games: make(map[string]*entities.Game),
	}
}

// SaveGame creates or updates a game together with its bets
func (r *MemoryRepository) SaveGame(ctx context.Context, g *entities.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.games[g.ID] = g.Clone()
	return nil
}

// GetGame retrieves a game by ID
func (r *MemoryRepository) GetGame(ctx context.Context, id string) (*entities.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, exists := r.games[id]
	if !exists {
		return nil, ErrGameNotFound
	}

	return g.Clone(), nil
}

// GetActiveGame retrieves the host's non-terminal game of a kind, if any
func (r *MemoryRepository) GetActiveGame(ctx context.Context, hostID string, kind entities.GameKind) (*entities.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var newest *entities.Game
	for _, g := range r.games {
		if g.HostID != hostID || g.Kind != kind || g.Status.IsTerminal() {
			continue
		}
		if newest == nil || g.CreatedAt.After(newest.CreatedAt) {
			newest = g
		}
	}

	if newest == nil {
		return nil, ErrGameNotFound
	}

	return newest.Clone(), nil
}
