package pipeline

import (
	"errors"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"photogrid/internal/decode"
	"photogrid/internal/mediatypes"
	"photogrid/internal/metrics"
)

type fakeChannel struct {
	mu        sync.Mutex
	submitted []decode.Request
	accept    bool
	responses chan decode.Response
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{accept: true, responses: make(chan decode.Response, 16)}
}

func (f *fakeChannel) Submit(r decode.Request) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.accept {
		return false
	}
	f.submitted = append(f.submitted, r)
	return true
}

func (f *fakeChannel) Responses() <-chan decode.Response { return f.responses }

func (f *fakeChannel) submitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.submitted)
}

func (f *fakeChannel) lastRequest() decode.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitted[len(f.submitted)-1]
}

func (f *fakeChannel) respond(resp decode.Response) {
	f.responses <- resp
}

func testItem(path string) mediatypes.Item {
	return mediatypes.Item{Path: path, Name: path, URL: "/media/" + path, Kind: mediatypes.KindImage}
}

func awaitResult(t *testing.T, ch <-chan Result) Result {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for load result")
		return Result{}
	}
}

func TestWorkerSuccess(t *testing.T) {
	ch := newFakeChannel()
	p := New(ch, nil)
	defer p.Stop()

	results := make(chan Result, 1)
	p.Request(testItem("a.jpg"), func(r Result) { results <- r })

	if ch.submitCount() != 1 {
		t.Fatalf("submit count = %d, want 1", ch.submitCount())
	}
	if e := p.Entry("a.jpg"); e.State != StatePending {
		t.Errorf("entry state = %v while in flight, want pending", e.State)
	}

	req := ch.lastRequest()
	img := image.NewRGBA(image.Rect(0, 0, 30, 20))
	ch.respond(decode.Response{ID: req.ID, Image: img, Width: 30, Height: 20})

	r := awaitResult(t, results)
	if !r.OK || r.Width != 30 || r.Height != 20 {
		t.Errorf("result = %+v, want OK 30x20", r)
	}

	e := p.Entry("a.jpg")
	if e.State != StateReady || e.Width != 30 {
		t.Errorf("entry after load = %+v, want ready 30x20", e)
	}
	if p.Version() == 0 {
		t.Error("layout version not bumped after successful decode")
	}
	// The version gauge is owned here; it must track this counter.
	if got := testutil.ToFloat64(metrics.LayoutVersion); got != float64(p.Version()) {
		t.Errorf("layout version gauge = %v, want %d", got, p.Version())
	}
}

func TestConcurrentRequestsShareOneDecode(t *testing.T) {
	ch := newFakeChannel()
	p := New(ch, nil)
	defer p.Stop()

	results := make(chan Result, 2)
	p.Request(testItem("dup.jpg"), func(r Result) { results <- r })
	p.Request(testItem("dup.jpg"), func(r Result) { results <- r })

	if ch.submitCount() != 1 {
		t.Fatalf("submit count = %d for two concurrent requests, want 1", ch.submitCount())
	}

	req := ch.lastRequest()
	ch.respond(decode.Response{ID: req.ID, Image: image.NewRGBA(image.Rect(0, 0, 5, 5)), Width: 5, Height: 5})

	a := awaitResult(t, results)
	b := awaitResult(t, results)
	if !a.OK || !b.OK {
		t.Errorf("outcomes differ or failed: %v, %v", a.OK, b.OK)
	}
	if a.Width != b.Width || a.Height != b.Height {
		t.Error("concurrent requesters observed different dimensions")
	}
}

func TestReadyEntryResolvesImmediately(t *testing.T) {
	ch := newFakeChannel()
	p := New(ch, nil)
	defer p.Stop()

	results := make(chan Result, 1)
	p.Request(testItem("x.jpg"), func(r Result) { results <- r })
	req := ch.lastRequest()
	ch.respond(decode.Response{ID: req.ID, Image: image.NewRGBA(image.Rect(0, 0, 1, 1)), Width: 1, Height: 1})
	awaitResult(t, results)

	// Second request: synchronous, no new submit.
	var got Result
	p.Request(testItem("x.jpg"), func(r Result) { got = r })
	if !got.OK {
		t.Error("ready entry did not resolve synchronously")
	}
	if ch.submitCount() != 1 {
		t.Errorf("submit count = %d after ready re-request, want 1", ch.submitCount())
	}
}

func TestWorkerErrorFallsBack(t *testing.T) {
	ch := newFakeChannel()
	fallbackCalls := atomic.Int32{}
	p := New(ch, func(req decode.Request) (image.Image, error) {
		fallbackCalls.Add(1)
		return image.NewRGBA(image.Rect(0, 0, 7, 7)), nil
	})
	defer p.Stop()

	results := make(chan Result, 1)
	p.Request(testItem("err.jpg"), func(r Result) { results <- r })
	ch.respond(decode.Response{ID: ch.lastRequest().ID, Err: true})

	r := awaitResult(t, results)
	if !r.OK || r.Width != 7 {
		t.Errorf("fallback result = %+v, want OK 7x7", r)
	}
	if fallbackCalls.Load() != 1 {
		t.Errorf("fallback calls = %d, want 1", fallbackCalls.Load())
	}
}

func TestChannelUnavailableFallsBack(t *testing.T) {
	ch := newFakeChannel()
	ch.accept = false

	p := New(ch, func(req decode.Request) (image.Image, error) {
		return image.NewRGBA(image.Rect(0, 0, 3, 3)), nil
	})
	defer p.Stop()

	results := make(chan Result, 1)
	p.Request(testItem("nochan.jpg"), func(r Result) { results <- r })

	if r := awaitResult(t, results); !r.OK || r.Width != 3 {
		t.Errorf("result = %+v, want OK 3x3", r)
	}
}

func TestNilChannelFallsBack(t *testing.T) {
	p := New(nil, func(req decode.Request) (image.Image, error) {
		return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
	})
	defer p.Stop()

	results := make(chan Result, 1)
	p.Request(testItem("direct.jpg"), func(r Result) { results <- r })
	if r := awaitResult(t, results); !r.OK {
		t.Errorf("result = %+v, want OK", r)
	}
}

func TestTimeoutTriggersFallback(t *testing.T) {
	const timeout = 60 * time.Millisecond
	ch := newFakeChannel() // accepts but never responds

	var fallbackAt atomic.Int64
	p := New(ch, func(req decode.Request) (image.Image, error) {
		fallbackAt.Store(time.Now().UnixNano())
		return image.NewRGBA(image.Rect(0, 0, 9, 9)), nil
	}, WithWorkerTimeout(timeout))
	defer p.Stop()

	start := time.Now()
	results := make(chan Result, 1)
	p.Request(testItem("slow.jpg"), func(r Result) { results <- r })

	r := awaitResult(t, results)
	if !r.OK {
		t.Fatalf("result = %+v, want OK via fallback", r)
	}

	elapsed := time.Duration(fallbackAt.Load() - start.UnixNano())
	if elapsed < timeout {
		t.Errorf("fallback ran after %v, before the %v timeout", elapsed, timeout)
	}
	if elapsed > timeout+100*time.Millisecond {
		t.Errorf("fallback ran after %v, too long past the %v timeout", elapsed, timeout)
	}
}

func TestLateReplyIsDiscarded(t *testing.T) {
	ch := newFakeChannel()
	p := New(ch, func(req decode.Request) (image.Image, error) {
		return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
	}, WithWorkerTimeout(30*time.Millisecond))
	defer p.Stop()

	results := make(chan Result, 1)
	p.Request(testItem("late.jpg"), func(r Result) { results <- r })
	req := ch.lastRequest()

	awaitResult(t, results) // resolved by the fallback after timeout

	// Out-of-band reply for the timed-out ID must not disturb the entry.
	ch.respond(decode.Response{ID: req.ID, Image: image.NewRGBA(image.Rect(0, 0, 99, 99)), Width: 99, Height: 99})
	time.Sleep(50 * time.Millisecond)

	if e := p.Entry("late.jpg"); e.Width != 4 {
		t.Errorf("late reply overwrote entry: %+v", e)
	}
}

func TestDefaultTimeoutIsFifteenSeconds(t *testing.T) {
	if DefaultWorkerTimeout != 15*time.Second {
		t.Errorf("DefaultWorkerTimeout = %v, want 15s", DefaultWorkerTimeout)
	}
}

func TestFailureRevertsToAbsent(t *testing.T) {
	item := mediatypes.Item{Path: "gone.mp4", URL: "/media/gone.mp4", Kind: mediatypes.KindVideo}

	p := New(nil, func(req decode.Request) (image.Image, error) {
		return nil, errors.New("no frame")
	})
	defer p.Stop()

	results := make(chan Result, 1)
	p.Request(item, func(r Result) { results <- r })

	if r := awaitResult(t, results); r.OK {
		t.Fatal("video with failing capture reported OK")
	}
	if e := p.Entry("gone.mp4"); e.State != StateAbsent {
		t.Errorf("entry state after failure = %v, want absent (retry eligible)", e.State)
	}

	// Retry is allowed immediately.
	p.Request(item, func(r Result) { results <- r })
	if r := awaitResult(t, results); r.OK {
		t.Fatal("retry unexpectedly succeeded")
	}
}

func TestImageDecodeFailureGoesNative(t *testing.T) {
	p := New(nil, func(req decode.Request) (image.Image, error) {
		return nil, errors.New("undecodable")
	})
	defer p.Stop()

	results := make(chan Result, 1)
	p.Request(testItem("odd.jpg"), func(r Result) { results <- r })

	r := awaitResult(t, results)
	if !r.OK || r.NativeURL != "/media/odd.jpg" {
		t.Errorf("result = %+v, want native URL hand-off", r)
	}
	if e := p.Entry("odd.jpg"); e.State != StateNative {
		t.Errorf("entry state = %v, want native", e.State)
	}
}

func TestPreloadBatches(t *testing.T) {
	ch := newFakeChannel()
	p := New(ch, nil)
	defer p.Stop()

	items := make([]mediatypes.Item, 7)
	for i := range items {
		items[i] = testItem(string(rune('a'+i)) + ".jpg")
	}
	p.Preload(items)

	// First batch of 3 goes out immediately.
	deadline := time.Now().Add(2 * time.Second)
	for ch.submitCount() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := ch.submitCount(); n < 3 {
		t.Fatalf("submit count = %d shortly after preload, want >= 3", n)
	}

	// Eventually all 7 are requested, in rate-limited batches.
	for ch.submitCount() < 7 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if n := ch.submitCount(); n != 7 {
		t.Errorf("submit count = %d after preload completes, want 7", n)
	}
}

func TestPreloadThrottleAbandonsPass(t *testing.T) {
	ch := newFakeChannel()
	var pressure atomic.Bool
	pressure.Store(true)
	p := New(ch, nil, WithPreloadThrottle(pressure.Load))
	defer p.Stop()

	items := make([]mediatypes.Item, 6)
	for i := range items {
		items[i] = testItem(string(rune('a'+i)) + ".jpg")
	}
	p.Preload(items)

	time.Sleep(300 * time.Millisecond)
	if n := ch.submitCount(); n != 0 {
		t.Fatalf("submit count = %d under pressure, want 0", n)
	}

	// A later pass after the pressure clears proceeds normally.
	pressure.Store(false)
	p.Preload(items)
	deadline := time.Now().Add(2 * time.Second)
	for ch.submitCount() < 6 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if n := ch.submitCount(); n != 6 {
		t.Errorf("submit count = %d after pressure cleared, want 6", n)
	}
}
