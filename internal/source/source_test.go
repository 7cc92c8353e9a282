package source

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"photogrid/internal/mediatypes"
)

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestListFindsMediaOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.jpg")
	writeFile(t, dir, "sub/b.mp4")
	writeFile(t, dir, "notes.txt")
	writeFile(t, dir, ".hidden/c.jpg")
	writeFile(t, dir, ".dotfile.png")

	s := New(dir)
	items, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2: %+v", len(items), items)
	}

	byPath := map[string]mediatypes.Item{}
	for _, it := range items {
		byPath[it.Path] = it
	}

	img, ok := byPath["a.jpg"]
	if !ok || img.Kind != mediatypes.KindImage {
		t.Fatalf("a.jpg missing or wrong kind: %+v", byPath)
	}
	vid, ok := byPath["sub/b.mp4"]
	if !ok || vid.Kind != mediatypes.KindVideo {
		t.Fatalf("sub/b.mp4 missing or wrong kind: %+v", byPath)
	}
	if vid.URL != "/media/sub/b.mp4" {
		t.Fatalf("URL = %q, want /media/sub/b.mp4", vid.URL)
	}
	if img.Size != 1 || img.ModTime.IsZero() {
		t.Fatalf("metadata not populated: %+v", img)
	}
}

func TestResolveURLEscapes(t *testing.T) {
	s := New(t.TempDir())
	if got := s.ResolveURL("holiday photos/day 1.jpg"); got != "/media/holiday%20photos/day%201.jpg" {
		t.Fatalf("ResolveURL = %q", got)
	}
}

func TestFilePathRejectsEscape(t *testing.T) {
	s := New(t.TempDir())
	if _, err := s.FilePath("../../etc/passwd"); err == nil {
		t.Fatal("expected traversal rejection")
	}
	if _, err := s.FilePath("sub/ok.jpg"); err != nil {
		t.Fatalf("normal path rejected: %v", err)
	}
}

func TestTrashRemovesFromList(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.jpg")
	writeFile(t, dir, "sub/b.jpg")

	s := New(dir)
	if err := s.Trash("sub/b.jpg"); err != nil {
		t.Fatal(err)
	}

	items, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Path != "a.jpg" {
		t.Fatalf("trashed item still listed: %+v", items)
	}

	// The bytes survive under the trash directory.
	if _, err := os.Stat(filepath.Join(dir, TrashDir, "sub", "b.jpg")); err != nil {
		t.Fatalf("trashed file missing: %v", err)
	}
}

func TestTrashMissingFile(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Trash("ghost.jpg"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestWatcherTriggersRefresh(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping watcher test in short mode")
	}
	dir := t.TempDir()
	writeFile(t, dir, "a.jpg")

	s := New(dir)
	defer s.Stop()

	changed := make(chan struct{}, 1)
	s.SetOnChange(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err := s.Watch(); err != nil {
		t.Fatal(err)
	}

	writeFile(t, dir, "b.jpg")

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never fired")
	}
}
