package domain

import (
	"context"
	"errors"
	"time"
)

// ErrRateLimited marks a fetch failure caused by the remote rate limiter.
// It is the only failure class the stream retries.
var ErrRateLimited = errors.New("rate limited by reddit")

// AuthorMask replaces every author name; real identities are never retained.
const AuthorMask = "u_user"

// Strategy is one retrieval ordering offered by the listing API.
type Strategy struct {
	Name   string // label used in logs and cursor state
	Sort   string // listing sort: new, hot, top
	Period string // time window for top listings (week, month), empty otherwise
}

// DefaultStrategies is the rotation order used by the stream: newest first,
// then trending, then two top-over-period windows for backfill coverage.
var DefaultStrategies = []Strategy{
	{Name: "new", Sort: "new"},
	{Name: "hot", Sort: "hot"},
	{Name: "top-week", Sort: "top", Period: "week"},
	{Name: "top-month", Sort: "top", Period: "month"},
}

// RawPost is one item as returned by the listing API. Never mutated after
// receipt; missing upstream fields arrive as zero values.
type RawPost struct {
	ID         string
	FullName   string // typed reference, e.g. "t3_abc123"
	Subreddit  string
	Title      string
	Selftext   string
	Flair      string
	Stickied   bool
	Permalink  string
	CreatedUTC time.Time
}

// Record is the normalized, privacy-scrubbed representation of one post,
// ready for the persistence sink. PlatformID is the upsert key.
type Record struct {
	PlatformID string    `json:"platform_id"`
	Subreddit  string    `json:"subreddit"`
	AuthorMask string    `json:"author_mask"`
	Title      string    `json:"title"`
	Selftext   string    `json:"selftext"`
	CreatedUTC time.Time `json:"created_utc"`
	URL        string    `json:"url"`
	IsAd       bool      `json:"is_ad"`
	CleanText  string    `json:"clean_text"`
	Keywords   []string  `json:"keywords"`
}

// Target represents one community to harvest.
type Target struct {
	Subreddit string
}

// Collector defines the interface for data fetching. An empty after token
// means the start of the strategy's ordering.
type Collector interface {
	ListPosts(ctx context.Context, subreddit string, strategy Strategy, after string, limit int) ([]RawPost, error)
}

// Sink accepts normalized records. Upsert must be idempotent under the
// platform ID: re-running the harvester over the same posts is expected.
type Sink interface {
	Upsert(ctx context.Context, rec Record) error
	Close()
}
