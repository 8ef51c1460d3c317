package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const judgmentModel = "gemini-2.5-flash"

// JudgmentClient asks the LLM provider whether a keyword is worth producing
// for. Overloaded-provider responses are retried a bounded number of times
// with increasing backoff before the caller falls back to a safe default.
type JudgmentClient struct {
	baseURL     string
	apiKey      string
	client      *http.Client
	maxAttempts int
	backoffUnit time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewJudgmentClient constructs a client against the given API base URL.
func NewJudgmentClient(baseURL, apiKey string, timeout time.Duration) *JudgmentClient {
	return &JudgmentClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		client:      &http.Client{Timeout: timeout},
		maxAttempts: 3,
		backoffUnit: 2 * time.Second,
		sleep:       sleepCtx,
	}
}

type promptPart struct {
	Text string `json:"text"`
}

type promptContent struct {
	Parts []promptPart `json:"parts"`
}

type generateRequest struct {
	Contents         []promptContent `json:"contents"`
	GenerationConfig map[string]any  `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content promptContent `json:"content"`
	} `json:"candidates"`
}

// Judge evaluates the keyword against the competition metrics.
func (c *JudgmentClient) Judge(ctx context.Context, keyword string, competition Competition) (Judgment, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		judgment, retryable, err := c.call(ctx, keyword, competition)
		if err == nil {
			return judgment, nil
		}
		lastErr = err
		if !retryable || attempt == c.maxAttempts {
			break
		}
		if err := c.sleep(ctx, time.Duration(attempt)*c.backoffUnit); err != nil {
			return Judgment{}, err
		}
	}
	return Judgment{}, lastErr
}

func (c *JudgmentClient) call(ctx context.Context, keyword string, competition Competition) (Judgment, bool, error) {
	prompt := fmt.Sprintf(`Evaluate whether to create a short video for this keyword.

Keyword: %q
Search results: %d
Average views: %d
Recent videos (30 days): %d

Analyze the competition and opportunity.
If not worth creating, set worthCreating to false, videoConcepts to [], hookLine to "".`,
		keyword, competition.TotalResults, competition.AvgViews, competition.RecentVideos)

	reqBody := generateRequest{
		Contents: []promptContent{{Parts: []promptPart{{Text: prompt}}}},
	}
	reqBody.GenerationConfig = map[string]any{
		"temperature":      0.7,
		"maxOutputTokens":  1024,
		"responseMimeType": "application/json",
		"responseSchema": map[string]any{
			"type": "OBJECT",
			"properties": map[string]any{
				"worthCreating": map[string]any{"type": "BOOLEAN"},
				"reasoning":     map[string]any{"type": "STRING"},
				"videoConcepts": map[string]any{"type": "ARRAY", "items": map[string]any{"type": "STRING"}},
				"hookLine":      map[string]any{"type": "STRING"},
			},
			"required": []string{"worthCreating", "reasoning", "videoConcepts", "hookLine"},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return Judgment{}, false, fmt.Errorf("analysis: marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, judgmentModel, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Judgment{}, false, fmt.Errorf("analysis: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Judgment{}, false, fmt.Errorf("analysis: judgment call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		retryable := resp.StatusCode == http.StatusServiceUnavailable
		return Judgment{}, retryable, fmt.Errorf("analysis: judgment status %d: %s", resp.StatusCode, body)
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Judgment{}, false, fmt.Errorf("analysis: decode response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return Judgment{}, false, fmt.Errorf("analysis: empty judgment response")
	}

	text := parsed.Candidates[0].Content.Parts[0].Text
	// Providers occasionally wrap the JSON in markdown fences.
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")

	var judgment Judgment
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &judgment); err != nil {
		return Judgment{}, false, fmt.Errorf("analysis: malformed judgment payload: %w", err)
	}
	if judgment.VideoConcepts == nil {
		judgment.VideoConcepts = []string{}
	}
	return judgment, false, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
