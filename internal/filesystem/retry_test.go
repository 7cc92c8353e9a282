package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
)

func TestIsStale(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "ESTALE", err: syscall.ESTALE, want: true},
		{name: "wrapped ESTALE", err: &os.PathError{Op: "stat", Path: "/x", Err: syscall.ESTALE}, want: true},
		{name: "ENOENT", err: syscall.ENOENT, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isStale(tt.err); got != tt.want {
				t.Errorf("isStale(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestReadFileWithRetry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := ReadFileWithRetry(path, DefaultRetryConfig())
	if err != nil {
		t.Fatalf("ReadFileWithRetry failed: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("got %q, want %q", data, "hello")
	}
}

func TestReadFileWithRetryMissing(t *testing.T) {
	_, err := ReadFileWithRetry(filepath.Join(t.TempDir(), "missing"), DefaultRetryConfig())
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	// ENOENT is not retryable; the error should surface unchanged.
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("got %v, want not-exist error", err)
	}
}

func TestStatWithRetry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	info, err := StatWithRetry(path, DefaultRetryConfig())
	if err != nil {
		t.Fatalf("StatWithRetry failed: %v", err)
	}
	if info.Size() != 1 {
		t.Errorf("Size = %d, want 1", info.Size())
	}
}

func TestRetryGivesUpOnStale(t *testing.T) {
	config := RetryConfig{MaxRetries: 2, InitialBackoff: 1, MaxBackoff: 2}
	calls := 0
	err := retry("Op", "/fake", config, func() error {
		calls++
		return syscall.ESTALE
	})
	if !errors.Is(err, syscall.ESTALE) {
		t.Errorf("got %v, want ESTALE", err)
	}
	if calls != 3 {
		t.Errorf("op called %d times, want 3 (initial + 2 retries)", calls)
	}
}
