package videos

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/vidspark/vidspark/internal/ledger"
)

// Charger is the slice of the ledger the video workflow spends through.
type Charger interface {
	ChargeForVideo(ctx context.Context, accountID, price int64, keyword string, result json.RawMessage) (ledger.VideoCharge, error)
	GetBalance(ctx context.Context, accountID int64) (ledger.Balance, error)
}

// ChargeObserver counts committed charges for monitoring.
type ChargeObserver interface {
	RecordVideoCharge(price int64)
}

// Service runs the paid creation workflow. The charge commits before the
// producer is called: a failed production marks the log row failed and the
// charge stands, so the books never show an artifact that was not paid for.
type Service struct {
	charger  Charger
	repo     Repository
	producer Producer
	observer ChargeObserver
	logger   *slog.Logger
}

func NewService(charger Charger, repo Repository, producer Producer, logger *slog.Logger) *Service {
	return &Service{charger: charger, repo: repo, producer: producer, logger: logger}
}

// WithObserver attaches a charge observer.
func (s *Service) WithObserver(observer ChargeObserver) *Service {
	s.observer = observer
	return s
}

// Create charges the account and produces the artifact.
func (s *Service) Create(ctx context.Context, accountID int64, keyword string, analysis json.RawMessage) (CreateResult, error) {
	charge, err := s.charger.ChargeForVideo(ctx, accountID, ledger.VideoPrice, keyword, analysis)
	if err != nil {
		return CreateResult{}, err
	}
	if s.observer != nil {
		s.observer.RecordVideoCharge(ledger.VideoPrice)
	}

	video, err := s.producer.Produce(ctx, keyword, analysis)
	if err != nil {
		s.logger.Error("production failed after charge",
			slog.Int64("account_id", accountID),
			slog.Int64("video_log_id", charge.VideoLogID),
			slog.Any("error", err))
		if updateErr := s.repo.UpdateResult(ctx, charge.VideoLogID, StatusFailed, analysis); updateErr != nil {
			s.logger.Error("marking log failed", slog.Int64("video_log_id", charge.VideoLogID), slog.Any("error", updateErr))
		}
		return CreateResult{}, fmt.Errorf("%w: %v", ErrProductionFailed, err)
	}

	merged, err := mergeVideo(analysis, video)
	if err == nil {
		err = s.repo.UpdateResult(ctx, charge.VideoLogID, StatusCompleted, merged)
	}
	if err != nil {
		// The artifact exists and the charge is committed; losing the URL
		// merge is not worth failing the request over.
		s.logger.Warn("storing production result", slog.Int64("video_log_id", charge.VideoLogID), slog.Any("error", err))
	}

	return CreateResult{
		VideoLogID:       charge.VideoLogID,
		Video:            video,
		CreditsRemaining: charge.NewBalance,
		VideosCreated:    charge.VideosCreated,
	}, nil
}

// ListForAccount returns the caller's creation history, newest first.
func (s *Service) ListForAccount(ctx context.Context, accountID int64) ([]VideoLog, error) {
	return s.repo.ListByAccount(ctx, accountID)
}

// Credits reports the account's spendable state.
func (s *Service) Credits(ctx context.Context, accountID int64) (CreditInfo, error) {
	balance, err := s.charger.GetBalance(ctx, accountID)
	if err != nil {
		return CreditInfo{}, err
	}
	return CreditInfo{
		Credits:        balance.Balance,
		VideosCreated:  balance.VideosCreated,
		CanCreateVideo: balance.Balance >= ledger.VideoPrice && balance.VideosCreated < ledger.VideoLimit,
	}, nil
}

// mergeVideo embeds the artifact URLs into the stored analysis payload.
func mergeVideo(analysis json.RawMessage, video ProducedVideo) (json.RawMessage, error) {
	result := make(map[string]json.RawMessage)
	if len(analysis) > 0 {
		if err := json.Unmarshal(analysis, &result); err != nil {
			return nil, err
		}
	}
	encoded, err := json.Marshal(video)
	if err != nil {
		return nil, err
	}
	result["video"] = encoded
	return json.Marshal(result)
}
