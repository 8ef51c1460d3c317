package ledger

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidspark/vidspark/internal/platform/db"
)

// Repository encapsulates DB operations for the credit ledger.
type Repository interface {
	GetBalance(ctx context.Context, accountID int64) (Balance, error)
	ListEntries(ctx context.Context, limit int) ([]Entry, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the writes available within one ledger transaction.
// Every mutating operation starts by locking the account row so that
// concurrent check-then-write sequences serialize per account.
type TxRepository interface {
	GetAccountForUpdate(ctx context.Context, accountID int64) (Balance, error)
	ApplyDelta(ctx context.Context, accountID, delta int64) (int64, error)
	ChargeAccount(ctx context.Context, accountID, price int64) (Balance, error)
	InsertEntry(ctx context.Context, accountID, delta int64, reason string, authorizedBy *int64) (int64, error)
	InsertVideoLog(ctx context.Context, accountID int64, keyword string, price int64, status string, result json.RawMessage) (int64, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed ledger repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) GetBalance(ctx context.Context, accountID int64) (Balance, error) {
	var b Balance
	err := r.db.QueryRow(ctx, `SELECT balance, videos_created FROM accounts WHERE id = $1`, accountID).
		Scan(&b.Balance, &b.VideosCreated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Balance{}, ErrAccountNotFound
		}
		return Balance{}, err
	}
	return b, nil
}

func (r *repository) ListEntries(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := r.db.Query(ctx, `SELECT le.id, le.account_id, acc.email, le.delta, le.reason, le.authorized_by, adm.email, le.created_at
FROM ledger_entries le
LEFT JOIN accounts acc ON acc.id = le.account_id
LEFT JOIN accounts adm ON adm.id = le.authorized_by
ORDER BY le.id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.AccountEmail, &e.Delta, &e.Reason, &e.AuthorizedBy, &e.AuthorizedEmail, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

// GetAccountForUpdate locks the account row for the rest of the transaction.
func (r *txRepository) GetAccountForUpdate(ctx context.Context, accountID int64) (Balance, error) {
	var b Balance
	err := r.tx.QueryRow(ctx, `SELECT balance, videos_created FROM accounts WHERE id = $1 FOR UPDATE`, accountID).
		Scan(&b.Balance, &b.VideosCreated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Balance{}, ErrAccountNotFound
		}
		return Balance{}, err
	}
	return b, nil
}

// ApplyDelta moves the balance by delta. The non-negative guard is repeated in
// SQL so the store enforces the invariant even without the preceding lock.
func (r *txRepository) ApplyDelta(ctx context.Context, accountID, delta int64) (int64, error) {
	var balance int64
	err := r.tx.QueryRow(ctx, `UPDATE accounts SET balance = balance + $2
WHERE id = $1 AND balance + $2 >= 0 RETURNING balance`, accountID, delta).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrInsufficientFunds
		}
		return 0, err
	}
	return balance, nil
}

// ChargeAccount debits the price and bumps the creation counter in one guarded
// statement.
func (r *txRepository) ChargeAccount(ctx context.Context, accountID, price int64) (Balance, error) {
	var b Balance
	err := r.tx.QueryRow(ctx, `UPDATE accounts SET balance = balance - $2, videos_created = videos_created + 1
WHERE id = $1 AND balance - $2 >= 0 AND videos_created < $3 RETURNING balance, videos_created`,
		accountID, price, VideoLimit).Scan(&b.Balance, &b.VideosCreated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Balance{}, ErrInsufficientFunds
		}
		return Balance{}, err
	}
	return b, nil
}

func (r *txRepository) InsertEntry(ctx context.Context, accountID, delta int64, reason string, authorizedBy *int64) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO ledger_entries (account_id, delta, reason, authorized_by)
VALUES ($1, $2, $3, $4) RETURNING id`, accountID, delta, reason, authorizedBy).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *txRepository) InsertVideoLog(ctx context.Context, accountID int64, keyword string, price int64, status string, result json.RawMessage) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO video_logs (account_id, keyword, price, status, result)
VALUES ($1, $2, $3, $4, $5) RETURNING id`, accountID, keyword, price, status, result).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}
