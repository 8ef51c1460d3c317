package auth

import (
	"errors"

	"github.com/vidspark/vidspark/internal/accounts"
)

// Claims is the verified identity extracted from a bearer token. Claims are
// trusted for the lifetime of the token; the store is not re-checked on every
// request.
type Claims struct {
	AccountID int64
	Email     string
	Role      accounts.Role
}

// IsAdmin reports whether the identity carries the privileged role claim.
func (c Claims) IsAdmin() bool {
	return c.Role == accounts.RoleAdmin
}

var (
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrInvalidToken indicates a malformed or tampered token.
	ErrInvalidToken = errors.New("auth: invalid token")
	// ErrTokenExpired indicates the token is past its expiry.
	ErrTokenExpired = errors.New("auth: token expired")
)
