package auth

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/vidspark/vidspark/internal/accounts"
	"github.com/vidspark/vidspark/internal/ledger"
)

// AccountStore defines the credential-store access the auth flows need.
type AccountStore interface {
	Create(ctx context.Context, email, passwordHash string, role accounts.Role, balance int64) (*accounts.Account, error)
	FindByEmail(ctx context.Context, email string) (*accounts.Account, error)
	Get(ctx context.Context, id int64) (*accounts.Account, error)
	TouchLastLogin(ctx context.Context, id int64) error
}

// Service wraps registration and authentication business rules.
type Service struct {
	store  AccountStore
	tokens *TokenManager
	logger *slog.Logger
}

// NewService constructs a new Service.
func NewService(store AccountStore, tokens *TokenManager, logger *slog.Logger) *Service {
	return &Service{store: store, tokens: tokens, logger: logger}
}

// Signup registers a new account with the starting balance and issues a token.
func (s *Service) Signup(ctx context.Context, email, password string) (string, *accounts.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, err
	}
	account, err := s.store.Create(ctx, email, string(hash), accounts.RoleUser, ledger.SignupBalance)
	if err != nil {
		return "", nil, err
	}
	token, err := s.tokens.Issue(account)
	if err != nil {
		return "", nil, err
	}
	s.logger.Info("account registered", slog.Int64("account_id", account.ID))
	return token, account, nil
}

// Login validates email/password credentials and issues a token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *accounts.Account, error) {
	account, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := s.store.TouchLastLogin(ctx, account.ID); err != nil {
		s.logger.Warn("touch last login", slog.Any("error", err))
	}
	token, err := s.tokens.Issue(account)
	if err != nil {
		return "", nil, err
	}
	return token, account, nil
}

// Account returns the fresh account record for an authenticated identity.
func (s *Service) Account(ctx context.Context, id int64) (*accounts.Account, error) {
	return s.store.Get(ctx, id)
}
