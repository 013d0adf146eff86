package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ychia112/DSCI560-Lab5/internal/domain"
)

func testRecord() domain.Record {
	return domain.Record{
		PlatformID: "abc123",
		Subreddit:  "tech",
		AuthorMask: domain.AuthorMask,
		Title:      "A Title",
		Selftext:   "some body",
		CreatedUTC: time.Unix(1_700_000_000, 0).UTC(),
		URL:        "https://www.reddit.com/r/tech/comments/abc123/",
		IsAd:       false,
		CleanText:  "a title some body",
		Keywords:   []string{"title", "body"},
	}
}

func TestPostgresSinkUpsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rec := testRecord()
	mock.ExpectExec("INSERT INTO reddit_posts").
		WithArgs(rec.PlatformID, rec.Subreddit, rec.AuthorMask, rec.Title, rec.Selftext,
			rec.CreatedUTC, rec.URL, rec.IsAd, []byte(`["title","body"]`), rec.CleanText).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	sink := &PostgresSink{pool: mock}
	require.NoError(t, sink.Upsert(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSinkIgnoresDuplicateKey(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO reddit_posts").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	sink := &PostgresSink{pool: mock}
	assert.NoError(t, sink.Upsert(context.Background(), testRecord()))
}

func TestPostgresSinkReportsOtherErrors(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO reddit_posts").
		WillReturnError(errors.New("connection reset"))

	sink := &PostgresSink{pool: mock}
	assert.Error(t, sink.Upsert(context.Background(), testRecord()))
}
