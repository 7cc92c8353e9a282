package decode

import (
	"errors"
	"image"
	"testing"
	"time"
)

func testImage(w, h int) image.Image {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

func waitResponse(t *testing.T, p *Pool) Response {
	t.Helper()
	select {
	case resp := <-p.Responses():
		return resp
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for response")
		return Response{}
	}
}

func TestPoolCorrelatesByID(t *testing.T) {
	p := NewPool(2, func(req Request) (image.Image, error) {
		if req.Path == "a.jpg" {
			return testImage(100, 50), nil
		}
		return testImage(10, 10), nil
	}, nil)
	defer p.Stop()

	if !p.Submit(Request{ID: "req-1", Path: "a.jpg"}) {
		t.Fatal("Submit failed")
	}
	if !p.Submit(Request{ID: "req-2", Path: "b.jpg"}) {
		t.Fatal("Submit failed")
	}

	got := map[string]Response{}
	for i := 0; i < 2; i++ {
		resp := waitResponse(t, p)
		got[resp.ID] = resp
	}

	a, ok := got["req-1"]
	if !ok {
		t.Fatal("no response for req-1")
	}
	if a.Err {
		t.Error("req-1 unexpectedly failed")
	}
	if a.Width != 100 || a.Height != 50 {
		t.Errorf("req-1 dims = %dx%d, want 100x50", a.Width, a.Height)
	}
	if _, ok := got["req-2"]; !ok {
		t.Error("no response for req-2")
	}
}

func TestPoolErrorResponse(t *testing.T) {
	p := NewPool(1, func(req Request) (image.Image, error) {
		return nil, errors.New("corrupt file")
	}, nil)
	defer p.Stop()

	if !p.Submit(Request{ID: "req-err", Path: "bad.jpg"}) {
		t.Fatal("Submit failed")
	}

	resp := waitResponse(t, p)
	if resp.ID != "req-err" {
		t.Errorf("response ID = %q, want req-err", resp.ID)
	}
	if !resp.Err {
		t.Error("expected error response")
	}
	if resp.Image != nil {
		t.Error("error response carries an image")
	}
}

func TestPoolSubmitAfterStop(t *testing.T) {
	p := NewPool(1, func(req Request) (image.Image, error) {
		return testImage(1, 1), nil
	}, nil)
	p.Stop()

	if p.Submit(Request{ID: "late"}) {
		t.Error("Submit succeeded after Stop")
	}
	// Stop is idempotent.
	p.Stop()
}

type blockingGate struct {
	release chan struct{}
}

func (g *blockingGate) WaitIfPaused() bool {
	<-g.release
	return true
}

func TestPoolGateHoldsWork(t *testing.T) {
	gate := &blockingGate{release: make(chan struct{})}
	p := NewPool(1, func(req Request) (image.Image, error) {
		return testImage(1, 1), nil
	}, gate)
	defer p.Stop()

	if !p.Submit(Request{ID: "gated"}) {
		t.Fatal("Submit failed")
	}

	select {
	case <-p.Responses():
		t.Fatal("response arrived while gate held")
	case <-time.After(50 * time.Millisecond):
	}

	close(gate.release)
	if resp := waitResponse(t, p); resp.ID != "gated" {
		t.Errorf("response ID = %q, want gated", resp.ID)
	}
}

func TestPoolConcurrentLoad(t *testing.T) {
	p := NewPool(4, func(req Request) (image.Image, error) {
		return testImage(2, 2), nil
	}, nil)
	defer p.Stop()

	const n = 50
	for i := 0; i < n; i++ {
		if !p.Submit(Request{ID: string(rune('A' + i%26))}) {
			t.Fatalf("Submit %d failed", i)
		}
	}
	for i := 0; i < n; i++ {
		resp := waitResponse(t, p)
		if resp.Err {
			t.Errorf("response %d failed", i)
		}
	}
}
