package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ychia112/DSCI560-Lab5/internal/domain"
)

// NDJSONSink appends one JSON line per record. The file is append-only, so
// idempotency is approximated with a per-run dedup set; re-runs rely on
// whatever consumes the file to collapse duplicates by platform ID.
type NDJSONSink struct {
	file    *os.File
	enc     *json.Encoder
	written map[string]struct{}
}

func NewNDJSONSink(path string) (*NDJSONSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sink dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open sink file: %w", err)
	}
	return &NDJSONSink{
		file:    f,
		enc:     json.NewEncoder(f),
		written: make(map[string]struct{}),
	}, nil
}

func (s *NDJSONSink) Upsert(_ context.Context, rec domain.Record) error {
	if _, dup := s.written[rec.PlatformID]; dup {
		return nil
	}
	if err := s.enc.Encode(rec); err != nil {
		return fmt.Errorf("write record %s: %w", rec.PlatformID, err)
	}
	s.written[rec.PlatformID] = struct{}{}
	return nil
}

func (s *NDJSONSink) Close() {
	s.file.Close()
}
