package educoinerrors

import "errors"

// Validation errors, rejected before touching the ledger
var (
	ErrInvalidInput = errors.New("invalid input")
)

// Business rule errors: expected, user-facing, non-retryable without
// different input
var (
	ErrBidTooLow          = errors.New("bid amount too low")
	ErrInsufficientFunds  = errors.New("insufficient available balance")
	ErrInsufficientLocked = errors.New("insufficient locked balance")
	ErrAuctionClosed      = errors.New("auction is closed")
)

// Lookup errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrWalletNotFound  = errors.New("wallet not found")
)

// ErrConflict means the caller lost an atomic race and may retry with
// fresh state
var ErrConflict = errors.New("concurrent update conflict")

// ErrWalletCorrupt means the locked <= balance invariant no longer holds.
// Writes to the wallet are halted until manual reconciliation; this is
// never retried or auto-corrected.
var ErrWalletCorrupt = errors.New("wallet ledger invariant violated")
