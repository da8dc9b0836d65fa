package services

import (
	"errors"
	"fmt"
)

var (
	ErrGameNotFound = errors.New("game not found")

	// Settlement preconditions. These short-circuit a settlement attempt
	// without touching state; the cycle stays retryable.
	ErrPotEmpty            = errors.New("pot is empty")
	ErrNoActivePlayers     = errors.New("no active players")
	ErrNoScores            = errors.New("no live scores")
	ErrInsufficientBalance = errors.New("escrow balance insufficient")
	ErrFeeTooLow           = errors.New("computed fee is zero or negative")

	// ErrKeyMismatch means the stored escrow secret does not derive the
	// stored public key. Data corruption; never retried blindly.
	ErrKeyMismatch = errors.New("escrow keypair mismatch")

	// ErrGameLocked means another settlement or sweep holds the game's
	// advisory lock.
	ErrGameLocked = errors.New("game is locked by another settlement")
)

// LedgerError wraps any failure talking to the settlement rail, always
// carrying the underlying cause.
type LedgerError struct {
	Op  string
	Err error
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("ledger %s: %v", e.Op, e.Err)
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

func ledgerErr(op string, err error) error {
	return &LedgerError{Op: op, Err: err}
}

// IsPrecondition reports whether err is one of the settlement precondition
// failures that settle as a silent no-op.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrPotEmpty) ||
		errors.Is(err, ErrNoActivePlayers) ||
		errors.Is(err, ErrNoScores) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrFeeTooLow)
}
