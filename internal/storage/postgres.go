package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ychia112/DSCI560-Lab5/internal/domain"
)

// upsertSQL overwrites only the fields whose upstream value can change on
// re-fetch; everything else keeps its first-seen value.
const upsertSQL = `
INSERT INTO reddit_posts
(platform_id, subreddit, author_mask, title, selftext, created_utc, url, is_ad, keywords, clean_text)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (platform_id) DO UPDATE SET
  title = EXCLUDED.title,
  selftext = EXCLUDED.selftext,
  clean_text = EXCLUDED.clean_text,
  is_ad = EXCLUDED.is_ad,
  keywords = EXCLUDED.keywords`

// pgxPool is the slice of pgxpool.Pool the sink needs; pgxmock satisfies it
// in tests.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresSink persists records with an idempotent upsert keyed by the
// platform ID.
type PostgresSink struct {
	pool pgxPool
}

func NewPostgresSink(ctx context.Context, dsn string) (*PostgresSink, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresSink{pool: pool}, nil
}

func (s *PostgresSink) Upsert(ctx context.Context, rec domain.Record) error {
	keywords, err := json.Marshal(rec.Keywords)
	if err != nil {
		return fmt.Errorf("marshal keywords: %w", err)
	}

	_, err = s.pool.Exec(ctx, upsertSQL,
		rec.PlatformID,
		rec.Subreddit,
		rec.AuthorMask,
		rec.Title,
		rec.Selftext,
		rec.CreatedUTC,
		rec.URL,
		rec.IsAd,
		keywords,
		rec.CleanText,
	)
	if err != nil {
		// Duplicate keys are expected on re-runs and are not errors.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil
		}
		return fmt.Errorf("upsert %s: %w", rec.PlatformID, err)
	}
	return nil
}

func (s *PostgresSink) Close() {
	s.pool.Close()
}
