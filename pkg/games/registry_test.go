package games

import (
	"testing"

	"github.com/fadedpez/sentenza/internal/types"
	"github.com/fadedpez/sentenza/pkg/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	kind entities.GameKind
}

func (a *stubAdapter) Kind() entities.GameKind        { return a.kind }
func (a *stubAdapter) Capabilities() Capabilities     { return Capabilities{} }
func (a *stubAdapter) ValidateSelection(string) error { return nil }
func (a *stubAdapter) ComputePayouts([]*entities.Bet, entities.Outcome) ([]Payout, error) {
	return nil, nil
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	adapter := &stubAdapter{kind: entities.KindDuel}

	require.NoError(t, registry.Register(adapter))

	got, err := registry.Get(entities.KindDuel)
	require.NoError(t, err)
	assert.Same(t, adapter, got)

	assert.Equal(t, []entities.GameKind{entities.KindDuel}, registry.Kinds())
}

func TestRegistryRejectsDuplicateKind(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(&stubAdapter{kind: entities.KindDuel}))

	err := registry.Register(&stubAdapter{kind: entities.KindDuel})
	assert.True(t, types.IsCode(err, types.ErrInternalError))
}

func TestRegistryGetUnknownKind(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Get(entities.KindFlower)
	assert.True(t, types.IsCode(err, types.ErrGameNotFound))
}
