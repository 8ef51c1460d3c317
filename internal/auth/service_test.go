package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidspark/vidspark/internal/accounts"
	"github.com/vidspark/vidspark/internal/ledger"
)

type stubAccountStore struct {
	byEmail     map[string]*accounts.Account
	byID        map[int64]*accounts.Account
	nextID      int64
	lastTouched int64
}

func newStubAccountStore() *stubAccountStore {
	return &stubAccountStore{
		byEmail: make(map[string]*accounts.Account),
		byID:    make(map[int64]*accounts.Account),
		nextID:  1,
	}
}

func (s *stubAccountStore) Create(ctx context.Context, email, passwordHash string, role accounts.Role, balance int64) (*accounts.Account, error) {
	if _, ok := s.byEmail[email]; ok {
		return nil, accounts.ErrEmailTaken
	}
	account := &accounts.Account{
		ID:           s.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Balance:      balance,
		CreatedAt:    time.Now(),
	}
	s.nextID++
	s.byEmail[email] = account
	s.byID[account.ID] = account
	return account, nil
}

func (s *stubAccountStore) FindByEmail(ctx context.Context, email string) (*accounts.Account, error) {
	account, ok := s.byEmail[email]
	if !ok {
		return nil, accounts.ErrNotFound
	}
	return account, nil
}

func (s *stubAccountStore) Get(ctx context.Context, id int64) (*accounts.Account, error) {
	account, ok := s.byID[id]
	if !ok {
		return nil, accounts.ErrNotFound
	}
	return account, nil
}

func (s *stubAccountStore) TouchLastLogin(ctx context.Context, id int64) error {
	s.lastTouched = id
	return nil
}

func newTestAuthService(store AccountStore) *Service {
	tokens := NewTokenManager("test-secret", time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(store, tokens, logger)
}

func TestSignupGrantsStartingBalance(t *testing.T) {
	store := newStubAccountStore()
	svc := newTestAuthService(store)

	token, account, err := svc.Signup(context.Background(), "a@example.com", "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, ledger.SignupBalance, account.Balance)
	assert.Equal(t, 0, account.VideosCreated)
	assert.Equal(t, accounts.RoleUser, account.Role)
	assert.NotEqual(t, "hunter22", account.PasswordHash, "secret must be stored hashed")
}

func TestSignupDuplicateEmail(t *testing.T) {
	store := newStubAccountStore()
	svc := newTestAuthService(store)
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, "a@example.com", "hunter22")
	require.NoError(t, err)

	_, _, err = svc.Signup(ctx, "a@example.com", "hunter22")
	require.ErrorIs(t, err, accounts.ErrEmailTaken)
}

func TestLoginRoundTrip(t *testing.T) {
	store := newStubAccountStore()
	svc := newTestAuthService(store)
	ctx := context.Background()

	_, created, err := svc.Signup(ctx, "a@example.com", "hunter22")
	require.NoError(t, err)

	token, account, err := svc.Login(ctx, "a@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, created.ID, account.ID)
	assert.Equal(t, created.ID, store.lastTouched)

	claims, err := svc.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.AccountID)
}

func TestLoginWrongPassword(t *testing.T) {
	store := newStubAccountStore()
	svc := newTestAuthService(store)
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, "a@example.com", "hunter22")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "a@example.com", "wrong-secret")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	store := newStubAccountStore()
	svc := newTestAuthService(store)

	_, _, err := svc.Login(context.Background(), "ghost@example.com", "whatever")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
