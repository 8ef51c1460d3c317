package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// Service performs balance-changing operations as all-or-nothing units and
// keeps the ledger-sum invariant intact: an account's balance always equals
// its starting balance plus the sum of its ledger entry deltas.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// AdjustBalance applies a non-zero delta to the account balance and appends
// one ledger entry, atomically. A debit that would drive the balance negative
// fails with ErrInsufficientFunds and writes nothing. Ledger failures are
// surfaced verbatim and never retried.
func (s *Service) AdjustBalance(ctx context.Context, accountID, delta int64, reason string, authorizedBy *int64) (int64, error) {
	if delta == 0 {
		return 0, ErrZeroDelta
	}
	var newBalance int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		state, err := tx.GetAccountForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if state.Balance+delta < 0 {
			return ErrInsufficientFunds
		}
		balance, err := tx.ApplyDelta(ctx, accountID, delta)
		if err != nil {
			return err
		}
		if _, err := tx.InsertEntry(ctx, accountID, delta, reason, authorizedBy); err != nil {
			return err
		}
		newBalance = balance
		return nil
	})
	if err != nil {
		return 0, s.classify(err)
	}
	s.logger.Info("balance adjusted",
		slog.Int64("account_id", accountID),
		slog.Int64("delta", delta),
		slog.Int64("new_balance", newBalance))
	return newBalance, nil
}

// ChargeForVideo verifies balance and creation cap against a single locked
// read, then commits four writes as one unit: the debit, the counter bump,
// the ledger entry and the video log row.
func (s *Service) ChargeForVideo(ctx context.Context, accountID, price int64, keyword string, result json.RawMessage) (VideoCharge, error) {
	if price <= 0 {
		return VideoCharge{}, ErrInvalidPrice
	}
	var charge VideoCharge
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		state, err := tx.GetAccountForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if state.VideosCreated >= VideoLimit {
			return ErrVideoLimitReached
		}
		if state.Balance < price {
			return ErrInsufficientFunds
		}
		after, err := tx.ChargeAccount(ctx, accountID, price)
		if err != nil {
			return err
		}
		reason := fmt.Sprintf("Video creation for keyword: %s", keyword)
		if _, err := tx.InsertEntry(ctx, accountID, -price, reason, nil); err != nil {
			return err
		}
		logID, err := tx.InsertVideoLog(ctx, accountID, keyword, price, "completed", result)
		if err != nil {
			return err
		}
		charge = VideoCharge{VideoLogID: logID, NewBalance: after.Balance, VideosCreated: after.VideosCreated}
		return nil
	})
	if err != nil {
		return VideoCharge{}, s.classify(err)
	}
	s.logger.Info("video charged",
		slog.Int64("account_id", accountID),
		slog.Int64("video_log_id", charge.VideoLogID),
		slog.Int64("new_balance", charge.NewBalance))
	return charge, nil
}

// GetBalance returns the latest committed balance and creation count.
func (s *Service) GetBalance(ctx context.Context, accountID int64) (Balance, error) {
	return s.repo.GetBalance(ctx, accountID)
}

// ListEntries returns ledger entries in commit order, newest first, bounded
// by limit. Limits outside 1..100 fall back to 100.
func (s *Service) ListEntries(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return s.repo.ListEntries(ctx, limit)
}

// classify keeps domain errors intact and wraps everything else as a failed
// store transaction.
func (s *Service) classify(err error) error {
	switch {
	case errors.Is(err, ErrAccountNotFound),
		errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrVideoLimitReached),
		errors.Is(err, ErrZeroDelta),
		errors.Is(err, ErrInvalidPrice):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
}
