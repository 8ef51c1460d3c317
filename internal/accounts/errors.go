package accounts

import "errors"

var (
	// ErrNotFound indicates the referenced account does not exist.
	ErrNotFound = errors.New("accounts: account not found")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("accounts: email already registered")
)
