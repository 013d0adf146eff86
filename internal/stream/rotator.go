package stream

import "github.com/ychia112/DSCI560-Lab5/internal/domain"

// Rotator cycles through the configured retrieval orderings, tracking one
// cursor for the active strategy. The cursor resets whenever the rotation
// moves on, and a full pass over every strategy without new items marks the
// rotation exhausted for this invocation.
type Rotator struct {
	strategies []domain.Strategy
	idx        int
	cursor     string
	progressed bool
}

func NewRotator(strategies []domain.Strategy) *Rotator {
	return &Rotator{strategies: strategies}
}

// Current returns the active strategy.
func (r *Rotator) Current() domain.Strategy {
	return r.strategies[r.idx]
}

// Cursor returns the active strategy's continuation token; empty means the
// start of the ordering.
func (r *Rotator) Cursor() string {
	return r.cursor
}

// SetCursor records the token to resume after, derived from the last
// consumed item.
func (r *Rotator) SetCursor(token string) {
	r.cursor = token
}

// MarkProgress records that the current pass produced an item not seen
// before in this invocation.
func (r *Rotator) MarkProgress() {
	r.progressed = true
}

// Advance moves to the next strategy and resets the cursor. It returns
// false when the rotation is exhausted: a complete pass finished without
// any new item.
func (r *Rotator) Advance() bool {
	r.idx++
	r.cursor = ""
	if r.idx < len(r.strategies) {
		return true
	}
	r.idx = 0
	if !r.progressed {
		return false
	}
	r.progressed = false
	return true
}
