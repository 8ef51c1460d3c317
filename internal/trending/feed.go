package trending

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

// FeedClient pulls the most-popular chart from the video platform.
type FeedClient struct {
	baseURL string
	apiKey  string
	region  string
	client  *http.Client
}

// NewFeedClient constructs a client against the given API base URL.
func NewFeedClient(baseURL, apiKey, region string, timeout time.Duration) *FeedClient {
	if region == "" {
		region = "US"
	}
	return &FeedClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		region:  region,
		client:  &http.Client{Timeout: timeout},
	}
}

type feedResponse struct {
	Items []struct {
		Snippet struct {
			Title      string `json:"title"`
			CategoryID string `json:"categoryId"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// Fetch returns up to max most-popular videos for the configured region.
func (c *FeedClient) Fetch(ctx context.Context, max int) ([]Video, error) {
	query := url.Values{}
	query.Set("part", "snippet,statistics")
	query.Set("chart", "mostPopular")
	query.Set("regionCode", c.region)
	query.Set("maxResults", strconv.Itoa(max))
	query.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/videos?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("trending: build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trending: feed call: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trending: feed status %d", resp.StatusCode)
	}

	var parsed feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("trending: decode response: %w", err)
	}

	videos := make([]Video, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		views, _ := strconv.Atoi(item.Statistics.ViewCount)
		videos = append(videos, Video{
			Title:      item.Snippet.Title,
			CategoryID: item.Snippet.CategoryID,
			ViewCount:  views,
		})
	}
	return videos, nil
}
