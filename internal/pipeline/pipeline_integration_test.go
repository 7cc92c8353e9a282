package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"photogrid/internal/cachestore"
	"photogrid/internal/decode"
	"photogrid/internal/mediatypes"
)

// TestCacheRoundTrip verifies that once a load has populated the
// persistent store, a fresh pipeline (simulating a process restart)
// resolves the same path without touching the network.
func TestCacheRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 12, 12))); err != nil {
		t.Fatal(err)
	}

	var fetches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	item := mediatypes.Item{
		Path: "photos/rt.png",
		URL:  srv.URL + "/rt.png",
		Kind: mediatypes.KindImage,
	}

	load := func() Result {
		store, err := cachestore.Open(context.Background(), dbPath)
		if err != nil {
			t.Fatal(err)
		}
		defer store.Close()

		p := New(nil, decode.NewDecoder(store).Decode)
		defer p.Stop()

		results := make(chan Result, 1)
		p.Request(item, func(r Result) { results <- r })
		return awaitResult(t, results)
	}

	if r := load(); !r.OK || r.Width != 12 {
		t.Fatalf("first load = %+v, want OK 12x12", r)
	}
	if n := fetches.Load(); n != 1 {
		t.Fatalf("fetch count after first load = %d, want 1", n)
	}

	// Fresh pipeline and store handle over the same database file.
	if r := load(); !r.OK || r.Width != 12 {
		t.Fatalf("second load = %+v, want OK 12x12", r)
	}
	if n := fetches.Load(); n != 1 {
		t.Errorf("fetch count after warm-cache load = %d, want 1 (no refetch)", n)
	}
}
