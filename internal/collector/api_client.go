package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/loganintech/go-reddit/v2/reddit"
	"golang.org/x/time/rate"

	"github.com/ychia112/DSCI560-Lab5/internal/domain"
)

// APIClient fetches listings through the authenticated Reddit API.
type APIClient struct {
	client  *reddit.Client
	limiter *rate.Limiter
}

func NewAPIClient(id, secret, user, pass, userAgent string) (*APIClient, error) {
	creds := reddit.Credentials{ID: id, Secret: secret, Username: user, Password: pass}

	client, err := reddit.NewClient(creds, reddit.WithUserAgent(userAgent))
	if err != nil {
		return nil, err
	}

	// API Rate Limit: ~60 reqs/min (safe buffer)
	limiter := rate.NewLimiter(rate.Every(1*time.Second), 1)

	return &APIClient{client: client, limiter: limiter}, nil
}

func (ac *APIClient) ListPosts(ctx context.Context, sub string, strategy domain.Strategy, after string, limit int) ([]domain.RawPost, error) {
	if err := ac.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	opts := &reddit.ListOptions{Limit: limit, After: after}

	var posts []*reddit.Post
	var err error
	switch strategy.Sort {
	case "hot":
		posts, _, err = ac.client.Subreddit.HotPosts(ctx, sub, opts)
	case "top":
		posts, _, err = ac.client.Subreddit.TopPosts(ctx, sub, &reddit.ListPostOptions{
			ListOptions: *opts,
			Time:        strategy.Period,
		})
	default:
		posts, _, err = ac.client.Subreddit.NewPosts(ctx, sub, opts)
	}
	if err != nil {
		if isRateLimited(err) {
			return nil, fmt.Errorf("%s listing: %w", strategy.Name, domain.ErrRateLimited)
		}
		return nil, fmt.Errorf("authenticated api error: %w", err)
	}

	result := make([]domain.RawPost, 0, len(posts))
	for _, p := range posts {
		raw := domain.RawPost{
			ID:        p.ID,
			FullName:  p.FullID,
			Subreddit: p.SubredditName,
			Title:     p.Title,
			Selftext:  p.Body,
			// The API client has no flair field on its post type; promo
			// classification falls back to the stickied flag.
			Stickied:  p.Stickied,
			Permalink: p.Permalink,
		}
		if p.Created != nil {
			raw.CreatedUTC = p.Created.Time.UTC()
		}
		result = append(result, raw)
	}
	return result, nil
}

func isRateLimited(err error) bool {
	var rle *reddit.RateLimitError
	if errors.As(err, &rle) {
		return true
	}
	var resp *reddit.ErrorResponse
	if errors.As(err, &resp) && resp.Response != nil {
		return resp.Response.StatusCode == http.StatusTooManyRequests
	}
	return false
}
