package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ychia112/DSCI560-Lab5/internal/domain"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases and strips punctuation", "Hello, World!", "hello world"},
		{"removes urls", "read this https://example.com/x?y=1 now", "read this now"},
		{"masks user mentions", "thanks u/Some_User-99 for the tip", "thanks u user for the tip"},
		{"collapses whitespace", "a\t b\n\n  c", "a b c"},
		{"empty input", "", ""},
		{"only noise", "!!! ???", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}

func TestNormalizeDeterminism(t *testing.T) {
	p := domain.RawPost{
		ID:         "abc123",
		Subreddit:  "tech",
		Title:      "Big News About Compilers",
		Selftext:   "compilers compilers everywhere, linkers too. See https://example.com",
		Permalink:  "/r/tech/comments/abc123/big_news/",
		CreatedUTC: time.Unix(1_700_000_000, 0),
	}

	first, ok := Normalize(p)
	require.True(t, ok)
	for i := 0; i < 5; i++ {
		again, ok := Normalize(p)
		require.True(t, ok)
		assert.Equal(t, first.CleanText, again.CleanText)
		assert.Equal(t, first.Keywords, again.Keywords)
	}
	assert.Equal(t, "https://www.reddit.com/r/tech/comments/abc123/big_news/", first.URL)
	assert.Equal(t, domain.AuthorMask, first.AuthorMask)
	assert.Equal(t, time.UTC, first.CreatedUTC.Location())
}

func TestTopKeywordsTieBreak(t *testing.T) {
	got := TopKeywordsOf("test test beta beta gamma", 10)
	assert.Equal(t, []string{"test", "beta", "gamma"}, got)
}

func TestTopKeywordsDropsShortTokensAndCaps(t *testing.T) {
	got := TopKeywordsOf("go go go the the cat compilers compilers linkers", 2)
	// "go", "the", "cat" are <= 3 chars and never counted
	assert.Equal(t, []string{"compilers", "linkers"}, got)
}

func TestMinimumContentFilter(t *testing.T) {
	tests := []struct {
		name  string
		title string
		body  string
		keep  bool
	}{
		{"too short", "hi", "", false},
		{"only a url", "", "https://example.com/post", false},
		{"exactly at threshold", "abcd efghi", "", true},
		{"normal post", "A reasonable title", "with body text", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Normalize(domain.RawPost{ID: "x", Title: tt.title, Selftext: tt.body})
			assert.Equal(t, tt.keep, ok)
		})
	}
}

func TestIsPromotional(t *testing.T) {
	tests := []struct {
		name string
		post domain.RawPost
		want bool
	}{
		{"promo flair", domain.RawPost{Flair: "Promo - sale"}, true},
		{"ad flair", domain.RawPost{Flair: "Paid AD"}, true},
		{"stickied", domain.RawPost{Stickied: true}, true},
		{"plain post", domain.RawPost{Flair: "Discussion"}, false},
		{"no flair", domain.RawPost{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPromotional(tt.post))
		})
	}
}

func TestParseCreated(t *testing.T) {
	assert.True(t, ParseCreated(0).IsZero())
	got := ParseCreated(1_700_000_000)
	assert.Equal(t, int64(1_700_000_000), got.Unix())
	assert.Equal(t, time.UTC, got.Location())
}
