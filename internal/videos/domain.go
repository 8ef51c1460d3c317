package videos

import (
	"encoding/json"
	"errors"
	"time"
)

// Video log statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// VideoLog records one paid creation attempt.
type VideoLog struct {
	ID        int64           `json:"id"`
	AccountID int64           `json:"accountId"`
	Keyword   string          `json:"keyword"`
	Price     int64           `json:"price"`
	Status    string          `json:"status"`
	Result    json.RawMessage `json:"result,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ProducedVideo is the artifact the external producer hands back.
type ProducedVideo struct {
	VideoURL     string `json:"videoUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// CreateResult is what a successful paid creation returns to the caller.
type CreateResult struct {
	VideoLogID       int64         `json:"videoLogId"`
	Video            ProducedVideo `json:"video"`
	CreditsRemaining int64         `json:"creditsRemaining"`
	VideosCreated    int           `json:"videosCreated"`
}

// CreditInfo summarises an account's spending capacity.
type CreditInfo struct {
	Credits        int64 `json:"credits"`
	VideosCreated  int   `json:"videosCreated"`
	CanCreateVideo bool  `json:"canCreateVideo"`
}

// ErrProductionFailed is returned when the charge committed but the producer
// could not deliver. The charge is not reversed; the log row records the
// failure.
var ErrProductionFailed = errors.New("videos: production failed")
