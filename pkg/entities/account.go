package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyCode identifies one of the two independent ledgers.
type CurrencyCode string

const (
	CurrencyCoin CurrencyCode = "COIN"
	CurrencyGem  CurrencyCode = "GEM"
)

// Currencies lists every valid currency code.
var Currencies = []CurrencyCode{CurrencyCoin, CurrencyGem}

// Valid reports whether the code is a known currency.
func (c CurrencyCode) Valid() bool {
	return c == CurrencyCoin || c == CurrencyGem
}

// Account holds a participant's balances, one per currency.
// Balances are integer-valued decimals in minor units and never negative.
type Account struct {
	ID            string // participant ID, opaque to the core
	Balances      map[CurrencyCode]decimal.Decimal
	Locked        bool
	LockExpiresAt *time.Time // nil means the lock never expires on its own
	Private       bool       // hide balances from public display
	LastUpdated   time.Time
}

// NewAccount materializes a zero-balance account for a participant.
func NewAccount(id string) *Account {
	balances := make(map[CurrencyCode]decimal.Decimal, len(Currencies))
	for _, c := range Currencies {
		balances[c] = decimal.Zero
	}
	return &Account{
		ID:          id,
		Balances:    balances,
		LastUpdated: time.Now(),
	}
}

// Balance returns the balance for a currency, zero if never touched.
func (a *Account) Balance(currency CurrencyCode) decimal.Decimal {
	if b, ok := a.Balances[currency]; ok {
		return b
	}
	return decimal.Zero
}

// LockActive reports whether the account lock is in force at the given
// time. An expired lock is treated as no lock; callers clear it lazily.
func (a *Account) LockActive(now time.Time) bool {
	if !a.Locked {
		return false
	}
	if a.LockExpiresAt != nil && !now.Before(*a.LockExpiresAt) {
		return false
	}
	return true
}

// Clone returns a deep copy so callers can't mutate shared state.
func (a *Account) Clone() *Account {
	cp := *a
	cp.Balances = make(map[CurrencyCode]decimal.Decimal, len(a.Balances))
	for c, b := range a.Balances {
		cp.Balances[c] = b
	}
	if a.LockExpiresAt != nil {
		t := *a.LockExpiresAt
		cp.LockExpiresAt = &t
	}
	return &cp
}

// LedgerEntry is one append-only audit record for a balance mutation.
type LedgerEntry struct {
	ID           string
	AccountID    string
	Currency     CurrencyCode
	Delta        decimal.Decimal // positive for credits, negative for debits
	BalanceAfter decimal.Decimal
	OperationID  string // game ID, transfer ID, or other causing operation
	Description  string
	Timestamp    time.Time
}
