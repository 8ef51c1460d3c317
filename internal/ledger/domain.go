package ledger

import "time"

// Pricing and lifetime limits for the credit system.
const (
	// SignupBalance is the starting balance granted on registration.
	SignupBalance int64 = 1000
	// VideoPrice is the fixed price of one video creation.
	VideoPrice int64 = 100
	// VideoLimit caps how many videos an account may ever create.
	VideoLimit = 10
)

// Entry is an immutable, append-only audit record of one balance change.
// A positive delta is a credit, a negative delta a debit.
type Entry struct {
	ID              int64     `json:"id"`
	AccountID       int64     `json:"accountId"`
	AccountEmail    string    `json:"accountEmail,omitempty"`
	Delta           int64     `json:"delta"`
	Reason          string    `json:"reason"`
	AuthorizedBy    *int64    `json:"authorizedBy,omitempty"`
	AuthorizedEmail *string   `json:"authorizedByEmail,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Balance is the committed spendable state of one account.
type Balance struct {
	Balance       int64 `json:"credits"`
	VideosCreated int   `json:"videosCreated"`
}

// VideoCharge is the result of a committed charge-and-log transaction.
type VideoCharge struct {
	VideoLogID    int64 `json:"videoLogId"`
	NewBalance    int64 `json:"newBalance"`
	VideosCreated int   `json:"videosCreated"`
}
