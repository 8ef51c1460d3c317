package videos

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrLogNotFound signals an update against a missing video log row.
var ErrLogNotFound = errors.New("videos: log not found")

// Repository encapsulates DB operations for video logs. Rows are created by
// the ledger charge transaction; this repository reads them and records
// production outcomes.
type Repository interface {
	ListByAccount(ctx context.Context, accountID int64) ([]VideoLog, error)
	UpdateResult(ctx context.Context, id int64, status string, result json.RawMessage) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed video log repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) ListByAccount(ctx context.Context, accountID int64) ([]VideoLog, error) {
	rows, err := r.db.Query(ctx, `SELECT id, account_id, keyword, price, status, result, created_at
FROM video_logs WHERE account_id = $1 ORDER BY created_at DESC, id DESC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var logs []VideoLog
	for rows.Next() {
		var l VideoLog
		if err := rows.Scan(&l.ID, &l.AccountID, &l.Keyword, &l.Price, &l.Status, &l.Result, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (r *repository) UpdateResult(ctx context.Context, id int64, status string, result json.RawMessage) error {
	tag, err := r.db.Exec(ctx, `UPDATE video_logs SET status = $2, result = $3 WHERE id = $1`, id, status, result)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLogNotFound
	}
	return nil
}
