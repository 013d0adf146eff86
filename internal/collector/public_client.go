package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/ychia112/DSCI560-Lab5/internal/domain"
	"github.com/ychia112/DSCI560-Lab5/internal/normalize"
)

// PublicClient fetches listings through the unauthenticated *.json
// endpoints. Slower limits apply, but it exposes flair, which the
// authenticated client's post type lacks.
type PublicClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	baseURL    string
}

type redditJSONResponse struct {
	Data struct {
		Children []struct {
			Data struct {
				ID            string  `json:"id"`
				Name          string  `json:"name"`
				Title         string  `json:"title"`
				Selftext      string  `json:"selftext"`
				Subreddit     string  `json:"subreddit"`
				LinkFlairText string  `json:"link_flair_text"`
				Stickied      bool    `json:"stickied"`
				Permalink     string  `json:"permalink"`
				CreatedUTC    float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func NewPublicClient(userAgent string) (*PublicClient, error) {
	return &PublicClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		// Public JSON Limit: 1 req / 2 seconds (Stricter)
		limiter:   rate.NewLimiter(rate.Every(2*time.Second), 1),
		userAgent: userAgent,
		baseURL:   "https://www.reddit.com",
	}, nil
}

func (pc *PublicClient) ListPosts(ctx context.Context, sub string, strategy domain.Strategy, after string, limit int) ([]domain.RawPost, error) {
	if err := pc.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if after != "" {
		q.Set("after", after)
	}
	if strategy.Period != "" {
		q.Set("t", strategy.Period)
	}
	endpoint := fmt.Sprintf("%s/r/%s/%s.json?%s", pc.baseURL, sub, strategy.Sort, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", pc.userAgent)

	resp, err := pc.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%s listing: %w", strategy.Name, domain.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit public access status: %d", resp.StatusCode)
	}

	var rResp redditJSONResponse
	if err := json.NewDecoder(resp.Body).Decode(&rResp); err != nil {
		return nil, err
	}

	posts := make([]domain.RawPost, 0, len(rResp.Data.Children))
	for _, child := range rResp.Data.Children {
		d := child.Data
		posts = append(posts, domain.RawPost{
			ID:         d.ID,
			FullName:   d.Name,
			Subreddit:  d.Subreddit,
			Title:      d.Title,
			Selftext:   d.Selftext,
			Flair:      d.LinkFlairText,
			Stickied:   d.Stickied,
			Permalink:  d.Permalink,
			CreatedUTC: normalize.ParseCreated(d.CreatedUTC),
		})
	}
	return posts, nil
}
