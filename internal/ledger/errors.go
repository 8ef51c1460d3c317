package ledger

import "errors"

var (
	// ErrAccountNotFound indicates the referenced account does not exist.
	ErrAccountNotFound = errors.New("ledger: account not found")
	// ErrZeroDelta rejects no-op adjustments; a zero change is not loggable.
	ErrZeroDelta = errors.New("ledger: delta must be non-zero")
	// ErrInsufficientFunds indicates the debit would drive the balance negative.
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")
	// ErrVideoLimitReached indicates the account hit the lifetime creation cap.
	ErrVideoLimitReached = errors.New("ledger: video limit reached")
	// ErrInvalidPrice rejects non-positive charge prices.
	ErrInvalidPrice = errors.New("ledger: price must be positive")
	// ErrTransactionFailed indicates the store-level atomic write did not commit.
	// The balance is unchanged and no ledger entry was written.
	ErrTransactionFailed = errors.New("ledger: transaction failed")
)
