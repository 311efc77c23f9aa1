package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgallion1/docoutline/internal/output"
)

func TestBackoff_Bounds(t *testing.T) {
	tests := []struct {
		attempt  int
		min, max time.Duration
	}{
		{0, 100 * time.Millisecond, 150 * time.Millisecond},
		{1, 200 * time.Millisecond, 300 * time.Millisecond},
		{10, 2 * time.Second, 3 * time.Second},
	}
	for _, tt := range tests {
		for range 20 {
			d := Backoff(tt.attempt)
			if d < tt.min || d >= tt.max {
				t.Fatalf("Backoff(%d) = %v, want in [%v, %v)", tt.attempt, d, tt.min, tt.max)
			}
		}
	}
}

func TestIsRetryable(t *testing.T) {
	ioErr := &output.IOError{Path: "x.json", Err: os.ErrPermission}
	if !IsRetryable(ioErr) {
		t.Error("expected IOError to be retryable")
	}
	if !IsRetryable(fmt.Errorf("collection a: %w", ioErr)) {
		t.Error("expected wrapped IOError to be retryable")
	}
	if IsRetryable(errors.New("bad config")) {
		t.Error("expected plain error not to be retryable")
	}
}

func TestWriteWithRetry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "doc.json")
	if err := writeWithRetry(context.Background(), path, map[string]int{"a": 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected output file: %v", err)
	}

	// A regular file where the parent directory should be fails every attempt.
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	err := writeWithRetry(context.Background(), filepath.Join(blocker, "doc.json"), 1)
	var ioErr *output.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected IOError after retry, got %v", err)
	}
}

func TestWriteWithRetry_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if err := writeWithRetry(ctx, filepath.Join(blocker, "doc.json"), 1); err == nil {
		t.Fatal("expected error")
	}
	if elapsed := time.Since(start); elapsed > 90*time.Millisecond {
		t.Errorf("expected no backoff wait after cancel, took %v", elapsed)
	}
}
