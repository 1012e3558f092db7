package papertrading

import "errors"

// Ledger errors. They are returned wrapped, test them with errors.Is.
var (
	ErrNotRegistered     = errors.New("account not registered")
	ErrAlreadyRegistered = errors.New("account already registered")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrCancelled         = errors.New("operation cancelled")
	ErrConfirmation      = errors.New("confirmation failed")
)
