package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockVideoLog struct {
	id        int64
	accountID int64
	keyword   string
	price     int64
	status    string
	result    json.RawMessage
}

// mockRepository serializes transactions with a mutex, mirroring the per-row
// lock the SQL store takes, and restores a snapshot when the closure fails so
// rollback semantics hold.
type mockRepository struct {
	mu          sync.Mutex
	accounts    map[int64]*Balance
	entries     []Entry
	videoLogs   []mockVideoLog
	nextEntryID int64
	nextVideoID int64

	// Error injection
	txBeginError   error
	insertEntryErr error
	insertVideoErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		accounts:    make(map[int64]*Balance),
		nextEntryID: 1,
		nextVideoID: 1,
	}
}

func (m *mockRepository) addAccount(id int64, balance int64, videos int) {
	m.accounts[id] = &Balance{Balance: balance, VideosCreated: videos}
}

func (m *mockRepository) GetBalance(ctx context.Context, accountID int64) (Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.accounts[accountID]
	if !ok {
		return Balance{}, ErrAccountNotFound
	}
	return *state, nil
}

func (m *mockRepository) ListEntries(ctx context.Context, limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []Entry
	for i := len(m.entries) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, m.entries[i])
	}
	return result, nil
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if m.txBeginError != nil {
		return m.txBeginError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.clone()
	if err := fn(ctx, &mockTxRepo{mock: m}); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

func (m *mockRepository) clone() *mockRepository {
	c := &mockRepository{
		accounts:    make(map[int64]*Balance, len(m.accounts)),
		entries:     append([]Entry(nil), m.entries...),
		videoLogs:   append([]mockVideoLog(nil), m.videoLogs...),
		nextEntryID: m.nextEntryID,
		nextVideoID: m.nextVideoID,
	}
	for id, state := range m.accounts {
		copied := *state
		c.accounts[id] = &copied
	}
	return c
}

func (m *mockRepository) restore(snapshot *mockRepository) {
	m.accounts = snapshot.accounts
	m.entries = snapshot.entries
	m.videoLogs = snapshot.videoLogs
	m.nextEntryID = snapshot.nextEntryID
	m.nextVideoID = snapshot.nextVideoID
}

type mockTxRepo struct {
	mock *mockRepository
}

func (t *mockTxRepo) GetAccountForUpdate(ctx context.Context, accountID int64) (Balance, error) {
	state, ok := t.mock.accounts[accountID]
	if !ok {
		return Balance{}, ErrAccountNotFound
	}
	return *state, nil
}

func (t *mockTxRepo) ApplyDelta(ctx context.Context, accountID, delta int64) (int64, error) {
	state, ok := t.mock.accounts[accountID]
	if !ok {
		return 0, ErrAccountNotFound
	}
	if state.Balance+delta < 0 {
		return 0, ErrInsufficientFunds
	}
	state.Balance += delta
	return state.Balance, nil
}

func (t *mockTxRepo) ChargeAccount(ctx context.Context, accountID, price int64) (Balance, error) {
	state, ok := t.mock.accounts[accountID]
	if !ok {
		return Balance{}, ErrAccountNotFound
	}
	if state.Balance-price < 0 || state.VideosCreated >= VideoLimit {
		return Balance{}, ErrInsufficientFunds
	}
	state.Balance -= price
	state.VideosCreated++
	return *state, nil
}

func (t *mockTxRepo) InsertEntry(ctx context.Context, accountID, delta int64, reason string, authorizedBy *int64) (int64, error) {
	if t.mock.insertEntryErr != nil {
		return 0, t.mock.insertEntryErr
	}
	id := t.mock.nextEntryID
	t.mock.nextEntryID++
	t.mock.entries = append(t.mock.entries, Entry{
		ID:           id,
		AccountID:    accountID,
		Delta:        delta,
		Reason:       reason,
		AuthorizedBy: authorizedBy,
		CreatedAt:    time.Now(),
	})
	return id, nil
}

func (t *mockTxRepo) InsertVideoLog(ctx context.Context, accountID int64, keyword string, price int64, status string, result json.RawMessage) (int64, error) {
	if t.mock.insertVideoErr != nil {
		return 0, t.mock.insertVideoErr
	}
	id := t.mock.nextVideoID
	t.mock.nextVideoID++
	t.mock.videoLogs = append(t.mock.videoLogs, mockVideoLog{
		id:        id,
		accountID: accountID,
		keyword:   keyword,
		price:     price,
		status:    status,
		result:    result,
	})
	return id, nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// ledgerSum verifies the reconciliation invariant: starting balance plus the
// sum of all entry deltas must equal the committed balance.
func ledgerSum(repo *mockRepository, accountID, initial int64) int64 {
	sum := initial
	for _, e := range repo.entries {
		if e.AccountID == accountID {
			sum += e.Delta
		}
	}
	return sum
}

// ============================================================================
// ADJUST BALANCE
// ============================================================================

func TestAdjustBalanceZeroDeltaRejected(t *testing.T) {
	repo := newMockRepository()
	repo.addAccount(1, 500, 0)
	svc := newTestService(repo)

	_, err := svc.AdjustBalance(context.Background(), 1, 0, "noop", nil)
	require.ErrorIs(t, err, ErrZeroDelta)
	assert.Empty(t, repo.entries)
	assert.Equal(t, int64(500), repo.accounts[1].Balance)
}

func TestAdjustBalanceAccountNotFound(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	_, err := svc.AdjustBalance(context.Background(), 99, 100, "bonus", nil)
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestAdjustBalanceOverdraftLeavesStateUntouched(t *testing.T) {
	repo := newMockRepository()
	repo.addAccount(1, 30, 0)
	svc := newTestService(repo)

	_, err := svc.AdjustBalance(context.Background(), 1, -50, "penalty", nil)
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, int64(30), repo.accounts[1].Balance)
	assert.Empty(t, repo.entries)
}

func TestAdjustBalanceAppendsEntryAndReconciles(t *testing.T) {
	repo := newMockRepository()
	repo.addAccount(1, SignupBalance, 0)
	svc := newTestService(repo)
	ctx := context.Background()

	admin := int64(7)
	newBalance, err := svc.AdjustBalance(ctx, 1, 250, "promo credit", &admin)
	require.NoError(t, err)
	assert.Equal(t, int64(1250), newBalance)

	newBalance, err = svc.AdjustBalance(ctx, 1, -400, "correction", &admin)
	require.NoError(t, err)
	assert.Equal(t, int64(850), newBalance)

	require.Len(t, repo.entries, 2)
	assert.Equal(t, int64(250), repo.entries[0].Delta)
	require.NotNil(t, repo.entries[0].AuthorizedBy)
	assert.Equal(t, admin, *repo.entries[0].AuthorizedBy)

	assert.Equal(t, repo.accounts[1].Balance, ledgerSum(repo, 1, SignupBalance))
}

func TestAdjustBalanceRollsBackWhenEntryInsertFails(t *testing.T) {
	repo := newMockRepository()
	repo.addAccount(1, 500, 0)
	repo.insertEntryErr = fmt.Errorf("disk full")
	svc := newTestService(repo)

	_, err := svc.AdjustBalance(context.Background(), 1, -100, "debit", nil)
	require.ErrorIs(t, err, ErrTransactionFailed)
	assert.Equal(t, int64(500), repo.accounts[1].Balance, "partial debit must not survive")
	assert.Empty(t, repo.entries)
}

// ============================================================================
// CHARGE FOR VIDEO
// ============================================================================

func TestChargeForVideoCommitsAllFourWrites(t *testing.T) {
	repo := newMockRepository()
	repo.addAccount(1, SignupBalance, 0)
	svc := newTestService(repo)

	charge, err := svc.ChargeForVideo(context.Background(), 1, VideoPrice, "mechanical keyboards", json.RawMessage(`{"ok":true}`))
	require.NoError(t, err)
	assert.Equal(t, int64(900), charge.NewBalance)
	assert.Equal(t, 1, charge.VideosCreated)

	require.Len(t, repo.entries, 1)
	assert.Equal(t, -VideoPrice, repo.entries[0].Delta)
	assert.Contains(t, repo.entries[0].Reason, "mechanical keyboards")

	require.Len(t, repo.videoLogs, 1)
	assert.Equal(t, "completed", repo.videoLogs[0].status)
	assert.Equal(t, charge.VideoLogID, repo.videoLogs[0].id)

	assert.Equal(t, repo.accounts[1].Balance, ledgerSum(repo, 1, SignupBalance))
}

func TestChargeForVideoInvalidPrice(t *testing.T) {
	repo := newMockRepository()
	repo.addAccount(1, SignupBalance, 0)
	svc := newTestService(repo)

	_, err := svc.ChargeForVideo(context.Background(), 1, 0, "kw", nil)
	require.ErrorIs(t, err, ErrInvalidPrice)
}

func TestChargeForVideoSequentialLimit(t *testing.T) {
	repo := newMockRepository()
	repo.addAccount(1, SignupBalance, 0)
	svc := newTestService(repo)
	ctx := context.Background()

	for i := 0; i < VideoLimit; i++ {
		_, err := svc.ChargeForVideo(ctx, 1, VideoPrice, "kw", nil)
		require.NoError(t, err, "charge %d", i+1)
	}

	// The 11th attempt hits the cap, not the balance check, even though the
	// balance is exhausted too.
	_, err := svc.ChargeForVideo(ctx, 1, VideoPrice, "kw", nil)
	require.ErrorIs(t, err, ErrVideoLimitReached)
	assert.Equal(t, int64(0), repo.accounts[1].Balance)
	assert.Equal(t, VideoLimit, repo.accounts[1].VideosCreated)
}

func TestChargeForVideoLimitBeatsBalanceWithFundsLeft(t *testing.T) {
	repo := newMockRepository()
	repo.addAccount(1, 5000, VideoLimit)
	svc := newTestService(repo)

	_, err := svc.ChargeForVideo(context.Background(), 1, VideoPrice, "kw", nil)
	require.ErrorIs(t, err, ErrVideoLimitReached)
	assert.Equal(t, int64(5000), repo.accounts[1].Balance)
}

func TestChargeForVideoConcurrentCannotOverdraw(t *testing.T) {
	const workers = 4
	// Funds for exactly three charges plus half a price: floor(350/100) = 3
	// must succeed, the rest must fail without driving the balance negative.
	repo := newMockRepository()
	repo.addAccount(1, VideoPrice*(workers-1)+VideoPrice/2, 0)
	svc := newTestService(repo)

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ChargeForVideo(context.Background(), 1, VideoPrice, "kw", nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded, insufficient := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, ErrInsufficientFunds):
			insufficient++
		}
	}
	assert.Equal(t, workers-1, succeeded)
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, VideoPrice/2, repo.accounts[1].Balance)
	assert.GreaterOrEqual(t, repo.accounts[1].Balance, int64(0))
	assert.Equal(t, repo.accounts[1].Balance, ledgerSum(repo, 1, VideoPrice*(workers-1)+VideoPrice/2))
}

func TestChargeForVideoRollsBackWhenLogInsertFails(t *testing.T) {
	repo := newMockRepository()
	repo.addAccount(1, SignupBalance, 0)
	repo.insertVideoErr = fmt.Errorf("constraint violation")
	svc := newTestService(repo)

	_, err := svc.ChargeForVideo(context.Background(), 1, VideoPrice, "kw", nil)
	require.ErrorIs(t, err, ErrTransactionFailed)
	assert.Equal(t, SignupBalance, repo.accounts[1].Balance, "charge must not survive a failed log write")
	assert.Equal(t, 0, repo.accounts[1].VideosCreated)
	assert.Empty(t, repo.entries, "no orphan ledger entry")
}

// ============================================================================
// READS
// ============================================================================

func TestGetBalance(t *testing.T) {
	repo := newMockRepository()
	repo.addAccount(1, 730, 4)
	svc := newTestService(repo)

	balance, err := svc.GetBalance(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(730), balance.Balance)
	assert.Equal(t, 4, balance.VideosCreated)

	_, err = svc.GetBalance(context.Background(), 2)
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestListEntriesNewestFirstBounded(t *testing.T) {
	repo := newMockRepository()
	repo.addAccount(1, SignupBalance, 0)
	svc := newTestService(repo)
	ctx := context.Background()

	for _, reason := range []string{"E1", "E2", "E3"} {
		_, err := svc.AdjustBalance(ctx, 1, 10, reason, nil)
		require.NoError(t, err)
	}

	entries, err := svc.ListEntries(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "E3", entries[0].Reason)
	assert.Equal(t, "E2", entries[1].Reason)
}

func TestListEntriesDefaultLimit(t *testing.T) {
	repo := newMockRepository()
	repo.addAccount(1, SignupBalance, 0)
	svc := newTestService(repo)

	_, err := svc.AdjustBalance(context.Background(), 1, 10, "E1", nil)
	require.NoError(t, err)

	entries, err := svc.ListEntries(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
