package admin

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/vidspark/vidspark/internal/accounts"
	"github.com/vidspark/vidspark/internal/ledger"
	"github.com/vidspark/vidspark/internal/shared"
)

// ErrSelfRoleChange blocks an admin from changing their own role.
var ErrSelfRoleChange = errors.New("admin: cannot change own role")

// ErrInvalidRole rejects unknown role values.
var ErrInvalidRole = errors.New("admin: invalid role")

// Adjuster is the slice of the ledger the admin surface drives.
type Adjuster interface {
	AdjustBalance(ctx context.Context, accountID, delta int64, reason string, authorizedBy *int64) (int64, error)
	ListEntries(ctx context.Context, limit int) ([]ledger.Entry, error)
}

// Directory is the account store view the admin surface needs.
type Directory interface {
	List(ctx context.Context) ([]accounts.Account, error)
	Get(ctx context.Context, id int64) (*accounts.Account, error)
	UpdateRole(ctx context.Context, id int64, role accounts.Role) error
}

// Auditor records privileged mutations.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service implements the privileged operations. Every mutation is written to
// the audit trail; audit failures are logged, not surfaced, so the mutation
// outcome stays authoritative.
type Service struct {
	ledger    Adjuster
	directory Directory
	audit     Auditor
	logger    *slog.Logger
}

func NewService(ledger Adjuster, directory Directory, audit Auditor, logger *slog.Logger) *Service {
	return &Service{ledger: ledger, directory: directory, audit: audit, logger: logger}
}

// ListUsers returns every account, newest first, without credential hashes.
func (s *Service) ListUsers(ctx context.Context) ([]accounts.SafeAccount, error) {
	all, err := s.directory.List(ctx)
	if err != nil {
		return nil, err
	}
	safe := make([]accounts.SafeAccount, 0, len(all))
	for _, account := range all {
		safe = append(safe, account.Safe())
	}
	return safe, nil
}

// GetUser returns one account without its credential hash.
func (s *Service) GetUser(ctx context.Context, id int64) (accounts.SafeAccount, error) {
	account, err := s.directory.Get(ctx, id)
	if err != nil {
		return accounts.SafeAccount{}, err
	}
	return account.Safe(), nil
}

// UpdateCredits moves a user's balance by amount on the actor's authority.
func (s *Service) UpdateCredits(ctx context.Context, actorID, userID, amount int64, reason string) (int64, error) {
	newBalance, err := s.ledger.AdjustBalance(ctx, userID, amount, reason, &actorID)
	if err != nil {
		return 0, err
	}
	s.recordAudit(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   "credits.update",
		Entity:   "account",
		EntityID: strconv.FormatInt(userID, 10),
		Meta:     map[string]any{"amount": amount, "reason": reason, "new_balance": newBalance},
	})
	return newBalance, nil
}

// ChangeRole sets a user's role. Actors cannot change their own.
func (s *Service) ChangeRole(ctx context.Context, actorID, userID int64, role accounts.Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	if actorID == userID {
		return ErrSelfRoleChange
	}
	if err := s.directory.UpdateRole(ctx, userID, role); err != nil {
		return err
	}
	s.recordAudit(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   "role.change",
		Entity:   "account",
		EntityID: strconv.FormatInt(userID, 10),
		Meta:     map[string]any{"role": string(role)},
	})
	return nil
}

// CreditLogs returns the most recent ledger entries across all accounts.
func (s *Service) CreditLogs(ctx context.Context) ([]ledger.Entry, error) {
	return s.ledger.ListEntries(ctx, 100)
}

func (s *Service) recordAudit(ctx context.Context, log shared.AuditLog) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, log); err != nil {
		s.logger.Error("audit write failed", slog.String("action", log.Action), slog.Any("error", err))
	}
}
