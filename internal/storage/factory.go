package storage

import (
	"context"
	"fmt"

	"github.com/ychia112/DSCI560-Lab5/internal/domain"
)

// NewSink selects the sink implementation for the configured mode.
func NewSink(ctx context.Context, mode, dsn, path string) (domain.Sink, error) {
	switch mode {
	case "postgres":
		if dsn == "" {
			return nil, fmt.Errorf("sink.dsn is required for postgres mode")
		}
		return NewPostgresSink(ctx, dsn)
	case "ndjson", "":
		return NewNDJSONSink(path)
	default:
		return nil, fmt.Errorf("unknown sink mode: %s (use 'postgres' or 'ndjson')", mode)
	}
}
