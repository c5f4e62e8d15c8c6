package engine

import (
	"context"
	"testing"

	"github.com/fadedpez/sentenza/internal/types"
	"github.com/fadedpez/sentenza/pkg/entities"
	"github.com/fadedpez/sentenza/pkg/games"
	"github.com/fadedpez/sentenza/pkg/games/diceduel"
	"github.com/fadedpez/sentenza/pkg/games/dicetable"
	"github.com/fadedpez/sentenza/pkg/games/duel"
	"github.com/fadedpez/sentenza/pkg/games/flower"
	"github.com/fadedpez/sentenza/pkg/games/hotcold"
	accountRepo "github.com/fadedpez/sentenza/pkg/repositories/account"
	gameRepo "github.com/fadedpez/sentenza/pkg/repositories/game"
	"github.com/fadedpez/sentenza/pkg/services/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type EngineSuite struct {
	suite.Suite
	accounts *accountRepo.MemoryRepository
	games    *gameRepo.MemoryRepository
	ledger   *ledger.Service
	service  *Service
	ctx      context.Context
}

func (s *EngineSuite) SetupTest() {
	s.accounts = accountRepo.NewMemoryRepository()
	s.games = gameRepo.NewMemoryRepository()
	s.ledger = ledger.NewService(s.accounts, 100)

	registry := games.NewRegistry()
	for _, adapter := range []games.Adapter{
		duel.New(),
		dicetable.New(),
		diceduel.New(),
		flower.New(),
		hotcold.New(),
	} {
		s.Require().NoError(registry.Register(adapter))
	}

	s.service = NewService(s.games, s.ledger, registry)
	s.ctx = context.Background()
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) amount(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

func (s *EngineSuite) fund(id string, n int64) {
	s.Require().NoError(s.ledger.Credit(s.ctx, id, entities.CurrencyCoin, s.amount(n), "test", "seed funds"))
}

func (s *EngineSuite) coins(id string) decimal.Decimal {
	acct, err := s.ledger.GetAccount(s.ctx, id)
	s.Require().NoError(err)
	return acct.Balance(entities.CurrencyCoin)
}

func (s *EngineSuite) openDuel(hostID string) *entities.Game {
	g, err := s.service.CreateGame(s.ctx, hostID, entities.KindDuel)
	s.Require().NoError(err)
	return g
}

func (s *EngineSuite) bet(gameID, bettorID string, n int64, selection string) {
	_, err := s.service.PlaceBet(s.ctx, gameID, bettorID, entities.CurrencyCoin, s.amount(n), selection)
	s.Require().NoError(err)
}

func (s *EngineSuite) TestCreateGame() {
	g := s.openDuel("host")
	s.Equal(entities.StatusOpen, g.Status)
	s.Equal(entities.KindDuel, g.Kind)
	s.Empty(g.Bets)
}

func (s *EngineSuite) TestCreateGameUnknownKind() {
	_, err := s.service.CreateGame(s.ctx, "host", entities.GameKind("ROULETTE"))
	s.True(types.IsCode(err, types.ErrGameNotFound))
}

func (s *EngineSuite) TestDuplicateActiveGame() {
	s.openDuel("host")

	_, err := s.service.CreateGame(s.ctx, "host", entities.KindDuel)
	s.True(types.IsCode(err, types.ErrDuplicateActiveGame))

	// A different kind is fine; the one-game rule is per kind.
	_, err = s.service.CreateGame(s.ctx, "host", entities.KindHotCold)
	s.NoError(err)
}

func (s *EngineSuite) TestCreateAfterTerminalGame() {
	g := s.openDuel("host")
	_, err := s.service.CancelGame(s.ctx, g.ID)
	s.Require().NoError(err)

	// Cancelled games don't count against the active-game limit.
	s.openDuel("host")
}

func (s *EngineSuite) TestPlaceBetDebitsBettor() {
	g := s.openDuel("host")
	s.fund("alice", 500)

	bet, err := s.service.PlaceBet(s.ctx, g.ID, "alice", entities.CurrencyCoin, s.amount(100), duel.SelectionHost)
	s.Require().NoError(err)
	s.Equal("alice", bet.BettorID)
	s.True(s.coins("alice").Equal(s.amount(400)))

	stored, err := s.service.GetGame(s.ctx, g.ID)
	s.Require().NoError(err)
	s.Require().Len(stored.Bets, 1)
	s.Equal(bet.ID, stored.Bets[0].ID)
}

func (s *EngineSuite) TestFailedDebitLeavesNoBet() {
	g := s.openDuel("host")
	s.fund("alice", 50)

	_, err := s.service.PlaceBet(s.ctx, g.ID, "alice", entities.CurrencyCoin, s.amount(100), duel.SelectionHost)
	s.True(types.IsCode(err, types.ErrInsufficientFunds))

	stored, err := s.service.GetGame(s.ctx, g.ID)
	s.Require().NoError(err)
	s.Empty(stored.Bets)
	s.True(s.coins("alice").Equal(s.amount(50)))
}

func (s *EngineSuite) TestInvalidSelectionRejectedBeforeMoneyMoves() {
	g := s.openDuel("host")
	s.fund("alice", 500)

	_, err := s.service.PlaceBet(s.ctx, g.ID, "alice", entities.CurrencyCoin, s.amount(100), "sideways")
	s.True(types.IsCode(err, types.ErrInvalidSelection))
	s.True(s.coins("alice").Equal(s.amount(500)))
}

func (s *EngineSuite) TestSelfBetForbiddenOnDuel() {
	g := s.openDuel("host")
	s.fund("host", 500)

	_, err := s.service.PlaceBet(s.ctx, g.ID, "host", entities.CurrencyCoin, s.amount(100), duel.SelectionHost)
	s.True(types.IsCode(err, types.ErrSelfBetForbidden))
	s.True(s.coins("host").Equal(s.amount(500)))
}

func (s *EngineSuite) TestDiceDuelAllowsSelfBetAndCapsAtTwo() {
	g, err := s.service.CreateGame(s.ctx, "host", entities.KindDiceDuel)
	s.Require().NoError(err)
	s.fund("host", 500)
	s.fund("rival", 500)
	s.fund("latecomer", 500)

	s.bet(g.ID, "host", 100, diceduel.SelectionHost)
	s.bet(g.ID, "rival", 100, diceduel.SelectionChallenger)

	_, err = s.service.PlaceBet(s.ctx, g.ID, "latecomer", entities.CurrencyCoin, s.amount(100), diceduel.SelectionHost)
	s.True(types.IsCode(err, types.ErrBettingClosed))
	s.True(s.coins("latecomer").Equal(s.amount(500)))
}

func (s *EngineSuite) TestBetAfterCloseRejected() {
	g := s.openDuel("host")
	s.fund("alice", 500)

	_, err := s.service.CloseBetting(s.ctx, g.ID)
	s.Require().NoError(err)

	_, err = s.service.PlaceBet(s.ctx, g.ID, "alice", entities.CurrencyCoin, s.amount(100), duel.SelectionHost)
	s.True(types.IsCode(err, types.ErrBettingClosed))
}

func (s *EngineSuite) TestCloseTwiceRejected() {
	g := s.openDuel("host")

	_, err := s.service.CloseBetting(s.ctx, g.ID)
	s.Require().NoError(err)

	_, err = s.service.CloseBetting(s.ctx, g.ID)
	s.True(types.IsCode(err, types.ErrInvalidTransition))
}

func (s *EngineSuite) TestCancelRefundsEveryBet() {
	g := s.openDuel("host")
	for _, bettor := range []string{"alice", "bob", "carol"} {
		s.fund(bettor, 500)
		s.bet(g.ID, bettor, 100, duel.SelectionHost)
	}

	failures, err := s.service.CancelGame(s.ctx, g.ID)
	s.NoError(err)
	s.Empty(failures)

	for _, bettor := range []string{"alice", "bob", "carol"} {
		s.True(s.coins(bettor).Equal(s.amount(500)), "bettor %s should be made whole", bettor)
	}

	stored, err := s.service.GetGame(s.ctx, g.ID)
	s.Require().NoError(err)
	s.Equal(entities.StatusCancelled, stored.Status)
}

func (s *EngineSuite) TestCancelIsNotRepeatable() {
	g := s.openDuel("host")
	s.fund("alice", 500)
	s.bet(g.ID, "alice", 100, duel.SelectionHost)

	_, err := s.service.CancelGame(s.ctx, g.ID)
	s.Require().NoError(err)

	// The second cancel is rejected and must not refund again.
	_, err = s.service.CancelGame(s.ctx, g.ID)
	s.True(types.IsCode(err, types.ErrInvalidTransition))
	s.True(s.coins("alice").Equal(s.amount(500)))
}

func (s *EngineSuite) TestCancelReportsRefundFailuresIndividually() {
	g := s.openDuel("host")
	s.fund("alice", 500)
	s.fund("bob", 500)
	s.bet(g.ID, "alice", 100, duel.SelectionHost)
	s.bet(g.ID, "bob", 100, duel.SelectionChallenger)

	// Alice's account is frozen; her refund bounces but bob still gets his.
	s.Require().NoError(s.ledger.SetLock(s.ctx, "alice", true, nil))

	failures, err := s.service.CancelGame(s.ctx, g.ID)
	s.NoError(err)
	s.Require().Len(failures, 1)
	s.Equal("alice", failures[0].AccountID)
	s.True(types.IsCode(failures[0].Err, types.ErrAccountLocked))

	s.True(s.coins("bob").Equal(s.amount(500)))

	stored, err := s.service.GetGame(s.ctx, g.ID)
	s.Require().NoError(err)
	s.Equal(entities.StatusCancelled, stored.Status)
}

func (s *EngineSuite) TestSettleRequiresClosedGame() {
	g := s.openDuel("host")

	_, err := s.service.Settle(s.ctx, g.ID, duel.Outcome{Winner: duel.SelectionHost})
	s.True(types.IsCode(err, types.ErrInvalidTransition))
}

func (s *EngineSuite) TestSettleDuelConservesMoney() {
	g := s.openDuel("host")
	s.fund("alice", 500)
	s.fund("bob", 500)
	s.fund("carol", 500)

	s.bet(g.ID, "alice", 100, duel.SelectionHost)
	s.bet(g.ID, "bob", 100, duel.SelectionChallenger)
	s.bet(g.ID, "carol", 60, duel.SelectionChallenger)

	_, err := s.service.CloseBetting(s.ctx, g.ID)
	s.Require().NoError(err)

	failures, err := s.service.Settle(s.ctx, g.ID, duel.Outcome{Winner: duel.SelectionHost})
	s.NoError(err)
	s.Empty(failures)

	// Alice backed the winner alone: her stake plus the full losing pot.
	s.True(s.coins("alice").Equal(s.amount(660)))
	s.True(s.coins("bob").Equal(s.amount(400)))
	s.True(s.coins("carol").Equal(s.amount(440)))

	total := s.coins("alice").Add(s.coins("bob")).Add(s.coins("carol"))
	s.True(total.Equal(s.amount(1500)), "settlement must conserve the total supply")

	stored, err := s.service.GetGame(s.ctx, g.ID)
	s.Require().NoError(err)
	s.Equal(entities.StatusSettled, stored.Status)
	s.NotNil(stored.Result)
}

func (s *EngineSuite) TestSettleTwiceRejected() {
	g := s.openDuel("host")
	s.fund("alice", 500)
	s.bet(g.ID, "alice", 100, duel.SelectionHost)

	_, err := s.service.CloseBetting(s.ctx, g.ID)
	s.Require().NoError(err)
	_, err = s.service.Settle(s.ctx, g.ID, duel.Outcome{Winner: duel.SelectionChallenger})
	s.Require().NoError(err)

	_, err = s.service.Settle(s.ctx, g.ID, duel.Outcome{Winner: duel.SelectionHost})
	s.True(types.IsCode(err, types.ErrInvalidTransition))
}

func (s *EngineSuite) TestSettleRejectsWrongKindOutcome() {
	g := s.openDuel("host")
	_, err := s.service.CloseBetting(s.ctx, g.ID)
	s.Require().NoError(err)

	_, err = s.service.Settle(s.ctx, g.ID, hotcold.Outcome{Color: "red"})
	s.True(types.IsCode(err, types.ErrInvalidOutcome))
}

func (s *EngineSuite) TestBadOutcomeLeavesGameClosedForRetry() {
	g := s.openDuel("host")
	s.fund("alice", 500)
	s.bet(g.ID, "alice", 100, duel.SelectionHost)

	_, err := s.service.CloseBetting(s.ctx, g.ID)
	s.Require().NoError(err)

	_, err = s.service.Settle(s.ctx, g.ID, duel.Outcome{Winner: "nobody"})
	s.True(types.IsCode(err, types.ErrInvalidOutcome))

	stored, err := s.service.GetGame(s.ctx, g.ID)
	s.Require().NoError(err)
	s.Equal(entities.StatusClosed, stored.Status)
	s.True(s.coins("alice").Equal(s.amount(400)), "no payout may land before a valid outcome")

	// The corrected outcome settles cleanly on the second attempt.
	failures, err := s.service.Settle(s.ctx, g.ID, duel.Outcome{Winner: duel.SelectionHost})
	s.NoError(err)
	s.Empty(failures)
	s.True(s.coins("alice").Equal(s.amount(500)))
}

func (s *EngineSuite) TestGetActiveGame() {
	g := s.openDuel("host")

	found, err := s.service.GetActiveGame(s.ctx, "host", entities.KindDuel)
	s.NoError(err)
	s.Equal(g.ID, found.ID)

	_, err = s.service.GetActiveGame(s.ctx, "stranger", entities.KindDuel)
	s.True(types.IsCode(err, types.ErrGameNotFound))
}
