// Package stream drives the ingestion loop: strategy rotation, throttled
// page fetching, normalization, and the three stopping budgets, exposed to
// the caller as a pull-based record sequence.
package stream

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ychia112/DSCI560-Lab5/internal/domain"
	"github.com/ychia112/DSCI560-Lab5/internal/normalize"
	"github.com/ychia112/DSCI560-Lab5/internal/ratebudget"
)

// Config holds one stream invocation's parameters. Zero durations and
// counts fall back to the defaults below.
type Config struct {
	Subreddit     string
	TargetCount   int
	BatchBudget   time.Duration // max time spent consuming one page
	OverallBudget time.Duration // wall-clock limit for the whole stream
	PageSize      int

	Strategies        []domain.Strategy
	RateLimitCooldown time.Duration // back-off after a remote rate-limit signal
	StrategyCooldown  time.Duration // pause when rotating to the next strategy
}

const (
	defaultBatchBudget       = 60 * time.Second
	defaultOverallBudget     = 400 * time.Second
	defaultPageSize          = 100
	maxPageSize              = 100 // remote per-request cap
	defaultRateLimitCooldown = 60 * time.Second
	defaultStrategyCooldown  = 1500 * time.Millisecond
)

// Summary reports what one invocation did.
type Summary struct {
	Accepted     int
	PromoSkipped int
	TooShort     int
	Requests     int
}

// Stream is a single-pass, pull-based sequence of normalized records.
// Calling Next drives the state machine forward; once it reports done it
// stays done.
type Stream struct {
	cfg       Config
	collector domain.Collector
	budget    *ratebudget.Budget
	logger    *slog.Logger

	rot     *Rotator
	seen    map[string]struct{}
	pending []domain.Record
	start   time.Time
	done    bool
	sum     Summary

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// New prepares a stream. Nothing is fetched until the first Next call.
func New(c domain.Collector, budget *ratebudget.Budget, cfg Config, logger *slog.Logger) *Stream {
	if cfg.BatchBudget <= 0 {
		cfg.BatchBudget = defaultBatchBudget
	}
	if cfg.OverallBudget <= 0 {
		cfg.OverallBudget = defaultOverallBudget
	}
	if cfg.PageSize <= 0 || cfg.PageSize > maxPageSize {
		cfg.PageSize = defaultPageSize
	}
	if len(cfg.Strategies) == 0 {
		cfg.Strategies = domain.DefaultStrategies
	}
	if cfg.RateLimitCooldown <= 0 {
		cfg.RateLimitCooldown = defaultRateLimitCooldown
	}
	if cfg.StrategyCooldown <= 0 {
		cfg.StrategyCooldown = defaultStrategyCooldown
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Stream{
		cfg:       cfg,
		collector: c,
		budget:    budget,
		logger:    logger,
		rot:       NewRotator(cfg.Strategies),
		seen:      make(map[string]struct{}),
		start:     time.Now(),
		now:       time.Now,
		sleep:     sleepContext,
	}
}

// Next yields the next accepted record. ok is false once the stream has
// ended: target reached, overall budget spent, every strategy exhausted, or
// the context cancelled. A finished stream never restarts.
func (s *Stream) Next(ctx context.Context) (rec domain.Record, ok bool) {
	for {
		if s.done {
			return domain.Record{}, false
		}
		if ctx.Err() != nil {
			s.logger.Info("stream cancelled", "accepted", s.sum.Accepted)
			s.done = true
			continue
		}
		if s.sum.Accepted >= s.cfg.TargetCount {
			s.logger.Info("target count reached", "accepted", s.sum.Accepted)
			s.done = true
			continue
		}
		if s.now().Sub(s.start) >= s.cfg.OverallBudget {
			s.logger.Info("overall time budget spent", "accepted", s.sum.Accepted)
			s.done = true
			continue
		}
		if len(s.pending) > 0 {
			rec, s.pending = s.pending[0], s.pending[1:]
			s.sum.Accepted++
			return rec, true
		}
		s.fillPage(ctx)
	}
}

// Summary is valid at any point and final once Next has reported done.
func (s *Stream) Summary() Summary {
	return s.sum
}

// fillPage runs one FetchPage/EmitItems round: one throttled request on the
// active strategy, normalization of its items into the pending queue, and
// the error-class transitions (retry on rate limit, rotate otherwise).
func (s *Stream) fillPage(ctx context.Context) {
	strategy := s.rot.Current()
	if err := s.budget.Acquire(ctx); err != nil {
		s.done = true
		return
	}
	s.sum.Requests++

	items, err := s.collector.ListPosts(ctx, s.cfg.Subreddit, strategy, s.rot.Cursor(), s.cfg.PageSize)
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		s.logger.Warn("rate limited, backing off",
			"strategy", strategy.Name, "cooldown", s.cfg.RateLimitCooldown)
		if s.sleep(ctx, s.cfg.RateLimitCooldown) != nil {
			s.done = true
			return
		}
		s.budget.Reset()
		return // retry the same strategy and cursor
	case err != nil:
		s.logger.Warn("page fetch failed, rotating",
			"strategy", strategy.Name, "error", err)
		s.rotate(ctx)
		return
	case len(items) == 0:
		s.logger.Debug("strategy exhausted", "strategy", strategy.Name)
		s.rotate(ctx)
		return
	}

	batchStart := s.now()
	for _, item := range items {
		if s.now().Sub(batchStart) >= s.cfg.BatchBudget {
			s.logger.Debug("batch budget spent, truncating page",
				"strategy", strategy.Name)
			break
		}
		s.rot.SetCursor(cursorToken(item))
		if _, dup := s.seen[item.ID]; dup {
			continue
		}
		s.seen[item.ID] = struct{}{}
		s.rot.MarkProgress()

		rec, ok := normalize.Normalize(item)
		if !ok {
			s.sum.TooShort++
			continue
		}
		if rec.IsAd {
			s.sum.PromoSkipped++
			continue
		}
		s.pending = append(s.pending, rec)
		if s.sum.Accepted+len(s.pending) >= s.cfg.TargetCount {
			break
		}
	}
}

// rotate advances to the next strategy, ending the stream when the rotation
// is exhausted. The short pause keeps the crawler cooperative with the
// remote service.
func (s *Stream) rotate(ctx context.Context) {
	if !s.rot.Advance() {
		s.logger.Info("all strategies exhausted", "accepted", s.sum.Accepted)
		s.done = true
		return
	}
	if s.sleep(ctx, s.cfg.StrategyCooldown) != nil {
		s.done = true
	}
}

// cursorToken derives the continuation token from the last consumed item.
func cursorToken(p domain.RawPost) string {
	if p.FullName != "" {
		return p.FullName
	}
	return "t3_" + p.ID
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
