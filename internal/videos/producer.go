package videos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Producer turns an approved keyword and its analysis into a video artifact.
type Producer interface {
	Produce(ctx context.Context, keyword string, analysis json.RawMessage) (ProducedVideo, error)
}

// ProducerClient calls the external generation endpoint. Each request carries
// a fresh job reference so the provider can de-duplicate resubmissions.
type ProducerClient struct {
	endpoint string
	client   *http.Client
	newJobID func() string
}

// NewProducerClient constructs a client for the given endpoint.
func NewProducerClient(endpoint string, timeout time.Duration) *ProducerClient {
	return &ProducerClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
		newJobID: func() string { return uuid.NewString() },
	}
}

type produceRequest struct {
	JobID    string          `json:"jobId"`
	Keyword  string          `json:"keyword"`
	Analysis json.RawMessage `json:"analysis"`
}

// Produce submits the job and waits for the artifact URLs.
func (c *ProducerClient) Produce(ctx context.Context, keyword string, analysis json.RawMessage) (ProducedVideo, error) {
	payload, err := json.Marshal(produceRequest{
		JobID:    c.newJobID(),
		Keyword:  keyword,
		Analysis: analysis,
	})
	if err != nil {
		return ProducedVideo{}, fmt.Errorf("videos: marshal job: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/generate", bytes.NewReader(payload))
	if err != nil {
		return ProducedVideo{}, fmt.Errorf("videos: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return ProducedVideo{}, fmt.Errorf("videos: producer call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return ProducedVideo{}, fmt.Errorf("videos: producer status %d: %s", resp.StatusCode, body)
	}

	var video ProducedVideo
	if err := json.NewDecoder(resp.Body).Decode(&video); err != nil {
		return ProducedVideo{}, fmt.Errorf("videos: decode producer response: %w", err)
	}
	if video.VideoURL == "" {
		return ProducedVideo{}, fmt.Errorf("videos: producer returned no video url")
	}
	return video, nil
}
