package papertrading

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// Ledger owns the cash movements of accounts.
//
// Every operation is a single read-modify-write against the Store: the
// account is validated first, then mutated on a copy, then saved once. A
// rejected operation never reaches the Store.
type Ledger struct {
	mu    sync.Mutex // serializes read-modify-write cycles
	store Store
	cfg   Config
}

// NewLedger creates a ledger on store.
func NewLedger(store Store, cfg Config) *Ledger {
	return &Ledger{store: store, cfg: cfg}
}

// ParseAmount parses a user supplied amount. It must be a strictly positive
// number.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: missing amount", ErrInvalidAmount)
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, s)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be positive, got %v", ErrInvalidAmount, amount)
	}
	return amount, nil
}

// Register creates the account of userID with the configured initial balance.
// An empty displayName defaults to a name derived from userID.
func (l *Ledger) Register(userID, displayName string) (Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, exists, err := l.store.Account(userID)
	if err != nil {
		return Account{}, err
	}
	if exists {
		return Account{}, fmt.Errorf("register %q: %w", userID, ErrAlreadyRegistered)
	}
	if displayName == "" {
		displayName = "用户" + userID
	}

	now := NewTimestamp(l.cfg.now())
	a := Account{
		UserID:       userID,
		Username:     displayName,
		Balance:      l.cfg.InitialBalance,
		TotalAssets:  l.cfg.InitialBalance,
		RegisterTime: now,
		LastLogin:    now,
	}
	if err := l.store.SaveAccount(userID, a); err != nil {
		return Account{}, fmt.Errorf("register %q: %w", userID, err)
	}
	log.Printf("register user=%q balance=%v", userID, a.Balance)
	return a, nil
}

// Account returns the account of userID.
func (l *Ledger) Account(userID string) (Account, error) {
	a, exists, err := l.store.Account(userID)
	if err != nil {
		return Account{}, err
	}
	if !exists {
		return Account{}, fmt.Errorf("account %q: %w", userID, ErrNotRegistered)
	}
	return a, nil
}

// Deposit adds amount to the balance and the total assets of userID.
func (l *Ledger) Deposit(userID string, amount decimal.Decimal) (Account, error) {
	if !amount.IsPositive() {
		return Account{}, fmt.Errorf("deposit %q: %w: amount must be positive, got %v", userID, ErrInvalidAmount, amount)
	}
	return l.move("deposit", userID, amount)
}

// Withdraw removes amount from the balance and the total assets of userID.
// Only the balance is checked: the total assets may become negative.
func (l *Ledger) Withdraw(userID string, amount decimal.Decimal) (Account, error) {
	if !amount.IsPositive() {
		return Account{}, fmt.Errorf("withdraw %q: %w: amount must be positive, got %v", userID, ErrInvalidAmount, amount)
	}
	return l.move("withdraw", userID, amount.Neg())
}

// move applies a signed cash delta to an account, the same on balance and total assets.
func (l *Ledger) move(op, userID string, delta decimal.Decimal) (Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, exists, err := l.store.Account(userID)
	if err != nil {
		return Account{}, err
	}
	if !exists {
		return Account{}, fmt.Errorf("%s %q: %w", op, userID, ErrNotRegistered)
	}
	if delta.IsNegative() && delta.Neg().GreaterThan(current.Balance) {
		return Account{}, fmt.Errorf("%s %q: %w: balance %v, requested %v", op, userID, ErrInsufficientFunds, current.Balance, delta.Neg())
	}

	next := current.clone()
	next.Balance = current.Balance.Add(delta)
	next.TotalAssets = current.TotalAssets.Add(delta)
	if err := l.store.SaveAccount(userID, next); err != nil {
		return Account{}, fmt.Errorf("%s %q: %w", op, userID, err)
	}
	log.Printf("%s user=%q amount=%v balance=%v", op, userID, delta.Abs(), next.Balance)
	return next, nil
}

// Reset deletes the account of userID and its positions, once c confirmed it.
//
// It returns ErrCancelled if the user declines or ctx is done while waiting,
// and ErrConfirmation if the confirmation itself failed. In both cases
// nothing is modified.
func (l *Ledger) Reset(ctx context.Context, userID string, c Confirmer) error {
	if _, err := l.Account(userID); err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	// The lock is not held while waiting for the user.
	ok, err := c.Confirm(ctx)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("reset %q: %w: %v", userID, ErrCancelled, err)
	case err != nil:
		return fmt.Errorf("reset %q: %w: %w", userID, ErrConfirmation, err)
	case ctx.Err() != nil:
		return fmt.Errorf("reset %q: %w: %v", userID, ErrCancelled, ctx.Err())
	case !ok:
		return fmt.Errorf("reset %q: %w", userID, ErrCancelled)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// The account may have been reset while waiting for confirmation.
	if _, exists, err := l.store.Account(userID); err != nil {
		return err
	} else if !exists {
		return fmt.Errorf("reset %q: %w", userID, ErrNotRegistered)
	}
	if err := l.store.DeleteAccountAndPositions(userID); err != nil {
		return fmt.Errorf("reset %q: %w", userID, err)
	}
	log.Printf("reset user=%q", userID)
	return nil
}
