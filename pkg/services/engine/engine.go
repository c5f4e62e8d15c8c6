// Package engine implements the shared bet/game lifecycle shared by every
// game kind:
//
//	Open --close--> Closed --settle--> Settled
//	Open|Closed --cancel--> Cancelled
//
// All balance movement flows through the ledger service; adapters only
// supply validation and payout policy at the state machine's edges.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fadedpez/sentenza/internal/logging"
	"github.com/fadedpez/sentenza/internal/types"
	"github.com/fadedpez/sentenza/pkg/entities"
	"github.com/fadedpez/sentenza/pkg/games"
	gameRepo "github.com/fadedpez/sentenza/pkg/repositories/game"
	"github.com/fadedpez/sentenza/pkg/services/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditFailure reports one credit that could not be applied during a
// refund loop or settlement. Failures are per-item so one bettor's
// storage hiccup never strands the others.
type CreditFailure struct {
	BetID     string
	AccountID string
	Err       error
}

// Service runs the generic game lifecycle
type Service struct {
	repo     gameRepo.Repository
	ledger   *ledger.Service
	registry *games.Registry
	locks    *keyedMutex
	logger   *logging.Logger
}

// NewService creates a new lifecycle engine over the given adapters
func NewService(repo gameRepo.Repository, ledgerSvc *ledger.Service, registry *games.Registry) *Service {
	return &Service{
		repo:     repo,
		ledger:   ledgerSvc,
		registry: registry,
		locks:    newKeyedMutex(),
		logger:   logging.Default,
	}
}

// CreateGame opens a new game for the host. A host may only have one
// non-terminal game per kind.
func (s *Service) CreateGame(ctx context.Context, hostID string, kind entities.GameKind) (*entities.Game, error) {
	if _, err := s.registry.Get(kind); err != nil {
		return nil, err
	}

	// Serialize per host+kind so two concurrent creates can't both pass
	// the duplicate check.
	unlock := s.locks.lock(string(kind) + "/" + hostID)
	defer unlock()

	existing, err := s.repo.GetActiveGame(ctx, hostID, kind)
	if err != nil && !errors.Is(err, gameRepo.ErrGameNotFound) {
		return nil, types.WrapError(types.ErrPersistenceFailure, "error checking active games", err)
	}
	if existing != nil {
		return nil, types.NewCoreError(types.ErrDuplicateActiveGame,
			fmt.Sprintf("host %s already has an active %s game", hostID, kind))
	}

	g := entities.NewGame(uuid.New().String(), hostID, kind)
	if err := s.repo.SaveGame(ctx, g); err != nil {
		return nil, types.WrapError(types.ErrPersistenceFailure, "error saving game", err)
	}

	s.logger.Info("[ENGINE] Host %s opened %s game %s", hostID, kind, g.ID)
	return g, nil
}

// GetGame retrieves a game by ID
func (s *Service) GetGame(ctx context.Context, gameID string) (*entities.Game, error) {
	g, err := s.repo.GetGame(ctx, gameID)
	if err != nil {
		if errors.Is(err, gameRepo.ErrGameNotFound) {
			return nil, types.NewCoreError(types.ErrGameNotFound, fmt.Sprintf("game %s not found", gameID))
		}
		return nil, types.WrapError(types.ErrPersistenceFailure, "error loading game", err)
	}
	return g, nil
}

// GetActiveGame retrieves the host's non-terminal game of a kind
func (s *Service) GetActiveGame(ctx context.Context, hostID string, kind entities.GameKind) (*entities.Game, error) {
	g, err := s.repo.GetActiveGame(ctx, hostID, kind)
	if err != nil {
		if errors.Is(err, gameRepo.ErrGameNotFound) {
			return nil, types.NewCoreError(types.ErrGameNotFound,
				fmt.Sprintf("host %s has no active %s game", hostID, kind))
		}
		return nil, types.WrapError(types.ErrPersistenceFailure, "error loading game", err)
	}
	return g, nil
}

// PlaceBet stakes an amount on an open game. The debit is committed
// before the bet is recorded; a bet can never exist without funds
// already removed from the bettor.
func (s *Service) PlaceBet(ctx context.Context, gameID, bettorID string, currency entities.CurrencyCode, amount decimal.Decimal, selection string) (*entities.Bet, error) {
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if g.Status != entities.StatusOpen {
		return nil, types.NewCoreError(types.ErrBettingClosed, fmt.Sprintf("game %s is not accepting bets", gameID))
	}

	adapter, err := s.registry.Get(g.Kind)
	if err != nil {
		return nil, err
	}
	caps := adapter.Capabilities()

	if bettorID == g.HostID && !caps.AllowSelfBet {
		return nil, types.NewCoreError(types.ErrSelfBetForbidden, "the host cannot bet on their own game")
	}

	if caps.MaxBettors > 0 && len(g.Bets) >= caps.MaxBettors {
		return nil, types.NewCoreError(types.ErrBettingClosed,
			fmt.Sprintf("game %s already has its %d bet(s)", gameID, caps.MaxBettors))
	}

	if err := adapter.ValidateSelection(selection); err != nil {
		return nil, err
	}

	if !amount.IsPositive() || !amount.IsInteger() {
		return nil, types.NewCoreError(types.ErrInvalidFormat, "bet amount must be a positive whole number")
	}

	// Money moves first. Only a committed debit earns a bet record.
	description := fmt.Sprintf("bet on %s game %s", g.Kind, gameID)
	if err := s.ledger.Debit(ctx, bettorID, currency, amount, gameID, description); err != nil {
		return nil, err
	}

	bet := &entities.Bet{
		ID:        uuid.New().String(),
		GameID:    gameID,
		BettorID:  bettorID,
		Currency:  currency,
		Amount:    amount,
		Selection: selection,
		PlacedAt:  time.Now(),
	}
	g.Bets = append(g.Bets, bet)

	if err := s.repo.SaveGame(ctx, g); err != nil {
		// The debit is committed but the bet is not; compensate so the
		// two never exist apart.
		if rbErr := s.ledger.Credit(ctx, bettorID, currency, amount, gameID, "bet rollback"); rbErr != nil {
			s.logger.Error("[ENGINE] Bet rollback failed for %s on game %s: %v", bettorID, gameID, rbErr)
		}
		return nil, types.WrapError(types.ErrPersistenceFailure, "error saving bet", err)
	}

	return bet, nil
}

// CloseBetting transitions a game from Open to Closed
func (s *Service) CloseBetting(ctx context.Context, gameID string) (*entities.Game, error) {
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if g.Status != entities.StatusOpen {
		return nil, types.NewCoreError(types.ErrInvalidTransition,
			fmt.Sprintf("cannot close betting on a %s game", g.Status))
	}

	g.Status = entities.StatusClosed
	if err := s.repo.SaveGame(ctx, g); err != nil {
		return nil, types.WrapError(types.ErrPersistenceFailure, "error saving game", err)
	}

	return g, nil
}

// CancelGame refunds every bet and marks the game Cancelled. Refunds are
// best-effort per bet: one failure never blocks the rest, and each is
// reported individually. Cancelling an already-terminal game is a no-op
// error, never a double refund.
func (s *Service) CancelGame(ctx context.Context, gameID string) ([]CreditFailure, error) {
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if g.Status.IsTerminal() {
		return nil, types.NewCoreError(types.ErrInvalidTransition,
			fmt.Sprintf("game %s is already %s", gameID, g.Status))
	}

	var failures []CreditFailure
	for _, bet := range g.Bets {
		description := fmt.Sprintf("refund for cancelled %s game %s", g.Kind, gameID)
		if err := s.ledger.Credit(ctx, bet.BettorID, bet.Currency, bet.Amount, gameID, description); err != nil {
			s.logger.Warn("[ENGINE] Refund failed for %s on game %s: %v", bet.BettorID, gameID, err)
			failures = append(failures, CreditFailure{BetID: bet.ID, AccountID: bet.BettorID, Err: err})
		}
	}

	g.Status = entities.StatusCancelled
	if err := s.repo.SaveGame(ctx, g); err != nil {
		return failures, types.WrapError(types.ErrPersistenceFailure, "error saving cancelled game", err)
	}

	s.logger.Info("[ENGINE] Cancelled %s game %s, refunded %d of %d bets",
		g.Kind, gameID, len(g.Bets)-len(failures), len(g.Bets))
	return failures, nil
}

// Settle resolves a Closed game against an outcome. The adapter's payout
// policy decides the credits; if the policy rejects the outcome the game
// stays Closed so settlement can be retried with a corrected input.
func (s *Service) Settle(ctx context.Context, gameID string, outcome entities.Outcome) ([]CreditFailure, error) {
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if g.Status != entities.StatusClosed {
		return nil, types.NewCoreError(types.ErrInvalidTransition,
			fmt.Sprintf("cannot settle a %s game", g.Status))
	}

	adapter, err := s.registry.Get(g.Kind)
	if err != nil {
		return nil, err
	}

	if outcome == nil || outcome.GameKind() != g.Kind {
		return nil, types.NewCoreError(types.ErrInvalidOutcome,
			fmt.Sprintf("outcome does not belong to a %s game", g.Kind))
	}
	if err := outcome.Validate(); err != nil {
		return nil, types.WrapError(types.ErrInvalidOutcome, "malformed outcome", err)
	}

	payouts, err := adapter.ComputePayouts(g.Bets, outcome)
	if err != nil {
		return nil, types.WrapError(types.ErrInvalidOutcome, "payout policy rejected outcome", err)
	}

	var failures []CreditFailure
	for _, p := range payouts {
		description := fmt.Sprintf("payout from %s game %s", g.Kind, gameID)
		if err := s.ledger.Credit(ctx, p.AccountID, p.Currency, p.Amount, gameID, description); err != nil {
			s.logger.Warn("[ENGINE] Payout failed for %s on game %s: %v", p.AccountID, gameID, err)
			failures = append(failures, CreditFailure{AccountID: p.AccountID, Err: err})
		}
	}

	g.Status = entities.StatusSettled
	g.Result = outcome
	if err := s.repo.SaveGame(ctx, g); err != nil {
		return failures, types.WrapError(types.ErrPersistenceFailure, "error saving settled game", err)
	}

	s.logger.Info("[ENGINE] Settled %s game %s with %d payout(s)", g.Kind, gameID, len(payouts))
	return failures, nil
}
