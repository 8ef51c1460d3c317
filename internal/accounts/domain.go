package accounts

import "time"

// Role controls access to administrative ledger operations.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Account represents one registered identity with a spendable credit balance.
type Account struct {
	ID            int64
	Email         string
	PasswordHash  string
	Role          Role
	Balance       int64
	VideosCreated int
	CreatedAt     time.Time
	LastLoginAt   *time.Time
}

// SafeAccount is the outward-facing view of an Account. The credential hash
// never leaves the accounts package through it.
type SafeAccount struct {
	ID            int64      `json:"id"`
	Email         string     `json:"email"`
	Role          Role       `json:"role"`
	Balance       int64      `json:"credits"`
	VideosCreated int        `json:"videosCreated"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastLoginAt   *time.Time `json:"lastLoginAt"`
}

// Safe strips the credential secret from the account.
func (a Account) Safe() SafeAccount {
	return SafeAccount{
		ID:            a.ID,
		Email:         a.Email,
		Role:          a.Role,
		Balance:       a.Balance,
		VideosCreated: a.VideosCreated,
		CreatedAt:     a.CreatedAt,
		LastLoginAt:   a.LastLoginAt,
	}
}
