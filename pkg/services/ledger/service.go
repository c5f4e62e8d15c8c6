package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fadedpez/sentenza/internal/logging"
	"github.com/fadedpez/sentenza/internal/types"
	"github.com/fadedpez/sentenza/pkg/entities"
	accountRepo "github.com/fadedpez/sentenza/pkg/repositories/account"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNonPositiveAmount = errors.New("amount must be a positive whole number")
	ErrSameCurrency      = errors.New("swap requires two different currencies")
	ErrIndivisibleSwap   = errors.New("swap amount is not divisible by the exchange rate")
)

// Service owns account balances. Every mutation on an account is
// serialized through a per-account mutex, checked against the lock and
// non-negativity rules, persisted, and recorded as a ledger entry.
type Service struct {
	repo     accountRepo.Repository
	locks    *keyedMutex
	swapRate decimal.Decimal // units of COIN per one GEM
	logger   *logging.Logger
}

// NewService creates a new ledger service
func NewService(repo accountRepo.Repository, swapRate int64) *Service {
	return &Service{
		repo:     repo,
		locks:    newKeyedMutex(),
		swapRate: decimal.NewFromInt(swapRate),
		logger:   logging.Default,
	}
}

// GetAccount retrieves an account, materializing a zero-balance one on
// first reference. It never errors for unknown participants.
func (s *Service) GetAccount(ctx context.Context, id string) (*entities.Account, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	return s.getOrCreate(ctx, id)
}

// Debit atomically subtracts from a balance. Fails with InsufficientFunds
// or AccountLocked; on success exactly one ledger entry is appended.
func (s *Service) Debit(ctx context.Context, id string, currency entities.CurrencyCode, amount decimal.Decimal, operationID, description string) error {
	unlock := s.locks.lock(id)
	defer unlock()

	return s.applyDebit(ctx, id, currency, amount, operationID, description)
}

// Credit atomically adds to a balance. A locked account accepts no
// mutation, incoming credits included.
func (s *Service) Credit(ctx context.Context, id string, currency entities.CurrencyCode, amount decimal.Decimal, operationID, description string) error {
	unlock := s.locks.lock(id)
	defer unlock()

	return s.applyCredit(ctx, id, currency, amount, operationID, description)
}

// Transfer moves funds between two accounts. Both account mutexes are
// held for the whole operation; if the credit fails after the debit
// succeeded, the debit is compensated so the transfer is all-or-nothing.
func (s *Service) Transfer(ctx context.Context, fromID, toID string, currency entities.CurrencyCode, amount decimal.Decimal) error {
	if fromID == toID {
		return nil
	}

	unlock := s.locks.lockAll(fromID, toID)
	defer unlock()

	operationID := uuid.New().String()

	if err := s.applyDebit(ctx, fromID, currency, amount, operationID, fmt.Sprintf("transfer to %s", toID)); err != nil {
		return err
	}

	if err := s.applyCredit(ctx, toID, currency, amount, operationID, fmt.Sprintf("transfer from %s", fromID)); err != nil {
		// Compensate the committed debit so the caller sees all-or-nothing.
		if rbErr := s.applyCredit(ctx, fromID, currency, amount, operationID, "transfer rollback"); rbErr != nil {
			s.logger.Error("[LEDGER] Transfer rollback failed for %s: %v", fromID, rbErr)
			return types.WrapError(types.ErrPersistenceFailure, "transfer rollback failed", rbErr)
		}
		return err
	}

	return nil
}

// Swap exchanges between the two currencies on one account at the fixed
// configured rate. Converting COIN to GEM requires the amount to divide
// evenly by the rate; no fraction of a GEM exists.
func (s *Service) Swap(ctx context.Context, id string, from, to entities.CurrencyCode, amount decimal.Decimal) error {
	if from == to {
		return ErrSameCurrency
	}

	var converted decimal.Decimal
	switch {
	case from == entities.CurrencyCoin && to == entities.CurrencyGem:
		if !amount.Mod(s.swapRate).IsZero() {
			return ErrIndivisibleSwap
		}
		converted = amount.Div(s.swapRate)
	case from == entities.CurrencyGem && to == entities.CurrencyCoin:
		converted = amount.Mul(s.swapRate)
	default:
		return fmt.Errorf("unknown currency pair %s/%s", from, to)
	}

	unlock := s.locks.lock(id)
	defer unlock()

	operationID := uuid.New().String()

	if err := s.applyDebit(ctx, id, from, amount, operationID, fmt.Sprintf("swap %s to %s", from, to)); err != nil {
		return err
	}

	if err := s.applyCredit(ctx, id, to, converted, operationID, fmt.Sprintf("swap %s to %s", from, to)); err != nil {
		if rbErr := s.applyCredit(ctx, id, from, amount, operationID, "swap rollback"); rbErr != nil {
			s.logger.Error("[LEDGER] Swap rollback failed for %s: %v", id, rbErr)
			return types.WrapError(types.ErrPersistenceFailure, "swap rollback failed", rbErr)
		}
		return err
	}

	return nil
}

// SetLock locks or unlocks an account, optionally until an expiry time.
// Lock expiry is evaluated lazily on the next balance access.
func (s *Service) SetLock(ctx context.Context, id string, locked bool, expiresAt *time.Time) error {
	unlock := s.locks.lock(id)
	defer unlock()

	acct, err := s.getOrCreate(ctx, id)
	if err != nil {
		return err
	}

	acct.Locked = locked
	acct.LockExpiresAt = nil
	if locked && expiresAt != nil {
		t := *expiresAt
		acct.LockExpiresAt = &t
	}
	acct.LastUpdated = time.Now()

	return s.save(ctx, acct)
}

// SetPrivacy flips the account's private display flag.
func (s *Service) SetPrivacy(ctx context.Context, id string, private bool) error {
	unlock := s.locks.lock(id)
	defer unlock()

	acct, err := s.getOrCreate(ctx, id)
	if err != nil {
		return err
	}

	acct.Private = private
	acct.LastUpdated = time.Now()

	return s.save(ctx, acct)
}

// History retrieves the account's recent ledger entries, newest first.
func (s *Service) History(ctx context.Context, id string, limit int) ([]*entities.LedgerEntry, error) {
	entries, err := s.repo.GetEntries(ctx, id, limit)
	if err != nil {
		return nil, types.WrapError(types.ErrPersistenceFailure, "error loading ledger history", err)
	}
	return entries, nil
}

// getOrCreate loads an account, creating and persisting a zero-balance
// one on first reference, and clears any expired lock. Caller must hold
// the account mutex.
func (s *Service) getOrCreate(ctx context.Context, id string) (*entities.Account, error) {
	acct, err := s.repo.GetAccount(ctx, id)
	if err == nil {
		// Expired locks fall off on access rather than via a timer.
		if acct.Locked && !acct.LockActive(time.Now()) {
			acct.Locked = false
			acct.LockExpiresAt = nil
			if err := s.save(ctx, acct); err != nil {
				return nil, err
			}
		}
		return acct, nil
	}

	if !errors.Is(err, accountRepo.ErrAccountNotFound) {
		return nil, types.WrapError(types.ErrPersistenceFailure, "error loading account", err)
	}

	acct = entities.NewAccount(id)
	if err := s.save(ctx, acct); err != nil {
		return nil, err
	}

	s.logger.Info("[LEDGER] Materialized new account for %s", id)
	return acct, nil
}

// applyDebit subtracts from a balance. Caller must hold the account mutex.
func (s *Service) applyDebit(ctx context.Context, id string, currency entities.CurrencyCode, amount decimal.Decimal, operationID, description string) error {
	if err := validateAmount(currency, amount); err != nil {
		return err
	}

	acct, err := s.getOrCreate(ctx, id)
	if err != nil {
		return err
	}

	if acct.LockActive(time.Now()) {
		return types.NewCoreError(types.ErrAccountLocked, fmt.Sprintf("account %s is locked", id))
	}

	balance := acct.Balance(currency)
	if balance.LessThan(amount) {
		return types.NewCoreError(types.ErrInsufficientFunds,
			fmt.Sprintf("balance %s is less than %s %s", balance, amount, currency))
	}

	acct.Balances[currency] = balance.Sub(amount)
	acct.LastUpdated = time.Now()

	if err := s.save(ctx, acct); err != nil {
		return err
	}

	s.appendEntry(ctx, acct, currency, amount.Neg(), operationID, description)
	return nil
}

// applyCredit adds to a balance. Caller must hold the account mutex.
func (s *Service) applyCredit(ctx context.Context, id string, currency entities.CurrencyCode, amount decimal.Decimal, operationID, description string) error {
	if err := validateAmount(currency, amount); err != nil {
		return err
	}

	acct, err := s.getOrCreate(ctx, id)
	if err != nil {
		return err
	}

	if acct.LockActive(time.Now()) {
		return types.NewCoreError(types.ErrAccountLocked, fmt.Sprintf("account %s is locked", id))
	}

	acct.Balances[currency] = acct.Balance(currency).Add(amount)
	acct.LastUpdated = time.Now()

	if err := s.save(ctx, acct); err != nil {
		return err
	}

	s.appendEntry(ctx, acct, currency, amount, operationID, description)
	return nil
}

func (s *Service) save(ctx context.Context, acct *entities.Account) error {
	if err := s.repo.SaveAccount(ctx, acct); err != nil {
		return types.WrapError(types.ErrPersistenceFailure, "error saving account", err)
	}
	return nil
}

// appendEntry records the audit row for a committed balance change. A
// failed append must not strand the already-committed mutation, so it is
// logged rather than returned.
func (s *Service) appendEntry(ctx context.Context, acct *entities.Account, currency entities.CurrencyCode, delta decimal.Decimal, operationID, description string) {
	entry := &entities.LedgerEntry{
		ID:           uuid.New().String(),
		AccountID:    acct.ID,
		Currency:     currency,
		Delta:        delta,
		BalanceAfter: acct.Balance(currency),
		OperationID:  operationID,
		Description:  description,
		Timestamp:    time.Now(),
	}

	if err := s.repo.AddEntry(ctx, entry); err != nil {
		s.logger.Warn("[LEDGER] Failed to append audit entry for %s: %v", acct.ID, err)
	}
}

func validateAmount(currency entities.CurrencyCode, amount decimal.Decimal) error {
	if !currency.Valid() {
		return fmt.Errorf("unknown currency %q", currency)
	}
	if !amount.IsPositive() || !amount.IsInteger() {
		return ErrNonPositiveAmount
	}
	return nil
}
