package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// CompetitionClient measures keyword competition through the video-search
// API: one search call for result volume, one stats call for views and
// recency.
type CompetitionClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewCompetitionClient constructs a client against the given API base URL.
func NewCompetitionClient(baseURL, apiKey string, timeout time.Duration) *CompetitionClient {
	return &CompetitionClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type searchResponse struct {
	PageInfo struct {
		TotalResults int `json:"totalResults"`
	} `json:"pageInfo"`
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

type videosResponse struct {
	Items []struct {
		Statistics struct {
			ViewCount string `json:"viewCount"`
		} `json:"statistics"`
		Snippet struct {
			PublishedAt time.Time `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
}

// Analyze returns competition metrics for the keyword. No retries: a failure
// here degrades into a zeroed half at the orchestrator.
func (c *CompetitionClient) Analyze(ctx context.Context, keyword string) (Competition, error) {
	query := url.Values{}
	query.Set("part", "id")
	query.Set("q", keyword)
	query.Set("type", "video")
	query.Set("maxResults", "50")
	query.Set("key", c.apiKey)

	var search searchResponse
	if err := c.getJSON(ctx, c.baseURL+"/search?"+query.Encode(), &search); err != nil {
		return Competition{}, err
	}
	if len(search.Items) == 0 {
		return Competition{TotalResults: 0, AvgViews: 0, RecentVideos: 0}, nil
	}

	ids := make([]string, 0, len(search.Items))
	for _, item := range search.Items {
		ids = append(ids, item.ID.VideoID)
	}
	query = url.Values{}
	query.Set("part", "statistics,snippet")
	query.Set("id", strings.Join(ids, ","))
	query.Set("key", c.apiKey)

	var videos videosResponse
	if err := c.getJSON(ctx, c.baseURL+"/videos?"+query.Encode(), &videos); err != nil {
		return Competition{}, err
	}

	totalViews := 0
	recent := 0
	cutoff := time.Now().AddDate(0, 0, -30)
	for _, video := range videos.Items {
		views, _ := strconv.Atoi(video.Statistics.ViewCount)
		totalViews += views
		if video.Snippet.PublishedAt.After(cutoff) {
			recent++
		}
	}
	avgViews := 0
	if len(videos.Items) > 0 {
		avgViews = totalViews / len(videos.Items)
	}

	return Competition{
		TotalResults: search.PageInfo.TotalResults,
		AvgViews:     avgViews,
		RecentVideos: recent,
	}, nil
}

func (c *CompetitionClient) getJSON(ctx context.Context, rawURL string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("analysis: build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("analysis: video search call: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("analysis: video search status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("analysis: decode response: %w", err)
	}
	return nil
}
