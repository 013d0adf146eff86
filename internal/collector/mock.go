package collector

import (
	"context"

	"github.com/ychia112/DSCI560-Lab5/internal/domain"
)

// MockClient implements domain.Collector over scripted pages. Unscripted
// positions return an empty page, which the stream treats as strategy
// exhaustion.
type MockClient struct {
	pages map[string][]domain.RawPost
	errs  map[string]error
	calls []MockCall
}

// MockCall records one ListPosts invocation.
type MockCall struct {
	Strategy string
	After    string
}

func NewMockClient() *MockClient {
	return &MockClient{
		pages: make(map[string][]domain.RawPost),
		errs:  make(map[string]error),
	}
}

// Script sets the page returned for one (strategy, after) position.
func (mc *MockClient) Script(strategy, after string, posts []domain.RawPost) {
	mc.pages[strategy+"|"+after] = posts
}

// ScriptErr sets a one-shot error for one (strategy, after) position; the
// next fetch at that position sees the scripted page, so retry paths can be
// exercised.
func (mc *MockClient) ScriptErr(strategy, after string, err error) {
	mc.errs[strategy+"|"+after] = err
}

// Calls returns every invocation seen so far, in order.
func (mc *MockClient) Calls() []MockCall {
	return mc.calls
}

func (mc *MockClient) ListPosts(_ context.Context, _ string, strategy domain.Strategy, after string, limit int) ([]domain.RawPost, error) {
	mc.calls = append(mc.calls, MockCall{Strategy: strategy.Name, After: after})

	key := strategy.Name + "|" + after
	if err, ok := mc.errs[key]; ok {
		delete(mc.errs, key)
		return nil, err
	}

	page := mc.pages[key]
	if len(page) > limit {
		page = page[:limit]
	}
	return page, nil
}
