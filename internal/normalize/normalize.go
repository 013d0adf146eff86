// Package normalize converts raw posts into canonical records: text
// cleaning, promotional classification, and lightweight keyword extraction.
// Everything here is deterministic; the same post always normalizes to the
// same record.
package normalize

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/ychia112/DSCI560-Lab5/internal/domain"
)

const (
	// MinCleanLength guards downstream stages from near-empty records.
	MinCleanLength = 10
	// TopKeywords caps the extracted keyword list.
	TopKeywords = 10
	// minTokenLength drops filler words before counting.
	minTokenLength = 4

	redditBase = "https://www.reddit.com"
)

var (
	urlRegex     = regexp.MustCompile(`http\S+`)
	userRegex    = regexp.MustCompile(`u/[A-Za-z0-9_-]+`)
	nonWordRegex = regexp.MustCompile(`[^a-z0-9\s]+`)
	spaceRegex   = regexp.MustCompile(`\s+`)
)

// Normalize produces the canonical record for one raw post. ok is false when
// the cleaned text is below the minimum-content threshold and the post must
// be discarded.
func Normalize(p domain.RawPost) (rec domain.Record, ok bool) {
	clean := CleanText(p.Title + " " + p.Selftext)
	if len(clean) < MinCleanLength {
		return domain.Record{}, false
	}

	return domain.Record{
		PlatformID: p.ID,
		Subreddit:  p.Subreddit,
		AuthorMask: domain.AuthorMask,
		Title:      p.Title,
		Selftext:   p.Selftext,
		CreatedUTC: p.CreatedUTC.UTC(),
		URL:        redditBase + p.Permalink,
		IsAd:       IsPromotional(p),
		CleanText:  clean,
		Keywords:   TopKeywordsOf(clean, TopKeywords),
	}, true
}

// CleanText lowercases, strips URLs, masks user mentions, removes
// non-alphanumeric characters, and collapses whitespace.
func CleanText(s string) string {
	s = strings.ToLower(s)
	s = urlRegex.ReplaceAllString(s, " ")
	s = userRegex.ReplaceAllString(s, domain.AuthorMask)
	s = nonWordRegex.ReplaceAllString(s, " ")
	s = spaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// IsPromotional flags sponsored or pinned content: a flair mentioning promo
// or ad, or a stickied post.
func IsPromotional(p domain.RawPost) bool {
	flair := strings.ToLower(p.Flair)
	return strings.Contains(flair, "promo") || strings.Contains(flair, "ad") || p.Stickied
}

// TopKeywordsOf returns up to topK tokens of the cleaned text ranked by
// descending frequency. Ties keep the order the tokens first appeared in,
// so repeated runs over the same text are byte-identical.
func TopKeywordsOf(clean string, topK int) []string {
	counts := make(map[string]int)
	var order []string
	for _, tok := range strings.Fields(clean) {
		if len(tok) < minTokenLength {
			continue
		}
		if _, seen := counts[tok]; !seen {
			order = append(order, tok)
		}
		counts[tok]++
	}

	// order holds tokens in first-occurrence order; a stable sort on
	// frequency alone preserves that order among ties.
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > topK {
		order = order[:topK]
	}
	return order
}

// ParseCreated converts a unix seconds timestamp (as the public JSON API
// reports it) into a UTC instant. Zero input yields the zero time.
func ParseCreated(unixSeconds float64) time.Time {
	if unixSeconds == 0 {
		return time.Time{}
	}
	return time.Unix(int64(unixSeconds), 0).UTC()
}
