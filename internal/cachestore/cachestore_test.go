package cachestore

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return s
}

func TestPutGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	blob := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01, 0x02}
	if err := s.Put(ctx, "photos/a.jpg", blob); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok, err := s.Get(ctx, "photos/a.jpg")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("Get: blob not found after Put")
	}
	if !bytes.Equal(got, blob) {
		t.Errorf("Get returned %v, want %v", got, blob)
	}
}

func TestGetAbsent(t *testing.T) {
	s := newTestStore(t)

	blob, ok, err := s.Get(context.Background(), "photos/missing.jpg")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok || blob != nil {
		t.Errorf("Get(missing) = (%v, %v), want (nil, false)", blob, ok)
	}
}

func TestPutReplaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "photos/a.jpg", []byte("old")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Put(ctx, "photos/a.jpg", []byte("new")); err != nil {
		t.Fatalf("Put (replace) failed: %v", err)
	}

	got, ok, err := s.Get(ctx, "photos/a.jpg")
	if err != nil || !ok {
		t.Fatalf("Get failed: %v, ok=%v", err, ok)
	}
	if string(got) != "new" {
		t.Errorf("Get after replace = %q, want %q", got, "new")
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Count = %d after replace, want 1", n)
	}
}

func TestThumbKeySharesStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	path := "videos/clip.mp4"
	if err := s.Put(ctx, ThumbKey(path), []byte("frame")); err != nil {
		t.Fatalf("Put thumb failed: %v", err)
	}

	if ThumbKey(path) != path+"#thumb" {
		t.Errorf("ThumbKey = %q, want %q", ThumbKey(path), path+"#thumb")
	}

	// The video's own key stays independent of its thumbnail key.
	_, ok, err := s.Get(ctx, path)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("source key unexpectedly present after storing thumbnail")
	}

	_, ok, err = s.Get(ctx, ThumbKey(path))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Error("thumb key missing after Put")
	}
}

func TestSurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	s, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.Put(ctx, "photos/persist.jpg", []byte("payload")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Simulates a process restart.
	s2, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s2.Close()

	got, ok, err := s2.Get(ctx, "photos/persist.jpg")
	if err != nil || !ok {
		t.Fatalf("Get after reopen: %v, ok=%v", err, ok)
	}
	if string(got) != "payload" {
		t.Errorf("Get after reopen = %q, want %q", got, "payload")
	}
}

func TestWidgetState(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, ok, err := s.GetState(ctx, "widget-1")
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if ok {
		t.Error("GetState found value before PutState")
	}

	if err := s.PutState(ctx, "widget-1", `{"zoom":200}`); err != nil {
		t.Fatalf("PutState failed: %v", err)
	}
	if err := s.PutState(ctx, "widget-1", `{"zoom":350}`); err != nil {
		t.Fatalf("PutState (update) failed: %v", err)
	}

	v, ok, err := s.GetState(ctx, "widget-1")
	if err != nil || !ok {
		t.Fatalf("GetState failed: %v, ok=%v", err, ok)
	}
	if v != `{"zoom":350}` {
		t.Errorf("GetState = %q, want %q", v, `{"zoom":350}`)
	}
}
