package pipeline

import (
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"photogrid/internal/decode"
	"photogrid/internal/logging"
	"photogrid/internal/mediatypes"
	"photogrid/internal/metrics"
)

// DefaultWorkerTimeout is how long a worker request may stay silent
// before it is treated as failed and the fallback path takes over.
const DefaultWorkerTimeout = 15 * time.Second

// State tags a per-path cache entry.
type State int

const (
	// StateAbsent means no load has happened (or the last one failed
	// and the path is eligible for retry).
	StateAbsent State = iota
	// StatePending means a load is in flight; further requests attach
	// to it instead of starting a duplicate.
	StatePending
	// StateReady means a decoded bitmap and its dimensions are held.
	StateReady
	// StateNative means blob decode failed but the content URL itself
	// may still be displayable by the platform (degraded, uncached).
	StateNative
)

// Entry is the renderer's view of one path.
type Entry struct {
	State         State
	Image         image.Image
	Width, Height int
	NativeURL     string
}

// Result is delivered to each requester exactly once.
type Result struct {
	OK            bool
	Image         image.Image
	Width, Height int
	// NativeURL is set instead of Image on the degraded native path.
	NativeURL string
}

// LoadFunc receives the outcome of a request.
type LoadFunc func(Result)

// Channel is the submit side of the decode worker pool.
type Channel interface {
	Submit(decode.Request) bool
	Responses() <-chan decode.Response
}

type inflight struct {
	path    string
	url     string
	video   bool
	kind    string
	id      string
	started time.Time
	timer   *time.Timer
	waiters []LoadFunc
}

// Pipeline orchestrates cache lookup, worker decode, main-context
// fallback decode and cache write per logical item, with per-path
// de-duplication and a worker timeout.
type Pipeline struct {
	ch        Channel
	fallback  decode.Func
	timeout   time.Duration
	throttled func() bool

	mu      sync.Mutex
	entries map[string]Entry
	pending map[string]*inflight // keyed by path
	byID    map[string]*inflight // keyed by request ID

	version atomic.Uint64

	preloadGen atomic.Uint64
	done       chan struct{}
	stopOnce   sync.Once
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWorkerTimeout overrides the 15 s worker silence timeout.
func WithWorkerTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.timeout = d }
}

// WithPreloadThrottle installs a pressure check consulted between
// preload batches. While fn reports true the remaining speculative
// loads of that pass are abandoned; visibility-driven requests are
// unaffected.
func WithPreloadThrottle(fn func() bool) Option {
	return func(p *Pipeline) { p.throttled = fn }
}

// New creates a Pipeline reading worker replies from ch and using
// fallback for main-context decoding. ch may be nil, in which case
// every load goes straight to the fallback path.
func New(ch Channel, fallback decode.Func, opts ...Option) *Pipeline {
	p := &Pipeline{
		ch:       ch,
		fallback: fallback,
		timeout:  DefaultWorkerTimeout,
		entries:  make(map[string]Entry),
		pending:  make(map[string]*inflight),
		byID:     make(map[string]*inflight),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if ch != nil {
		go p.drain()
	}
	return p
}

// Stop stops the response drain. In-flight fallbacks finish on their
// own goroutines; their results still land in the entry map, which is
// harmless after stop.
func (p *Pipeline) Stop() {
	p.stopOnce.Do(func() { close(p.done) })
}

// Version returns the layout version counter. It increases after every
// successful decode; callers recompute layout when it changes.
func (p *Pipeline) Version() uint64 {
	return p.version.Load()
}

// Entry returns the current cache entry for a path.
func (p *Pipeline) Entry(path string) Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.entries[path]
}

// Request asks for the item's bitmap. The callback fires exactly once,
// possibly synchronously when the entry is already ready. Concurrent
// requests for the same path share a single underlying decode.
func (p *Pipeline) Request(item mediatypes.Item, cb LoadFunc) {
	p.mu.Lock()

	if e, ok := p.entries[item.Path]; ok {
		switch e.State {
		case StateReady, StateNative:
			p.mu.Unlock()
			if cb != nil {
				cb(Result{OK: true, Image: e.Image, Width: e.Width, Height: e.Height, NativeURL: e.NativeURL})
			}
			return
		case StatePending:
			if fl := p.pending[item.Path]; fl != nil {
				if cb != nil {
					fl.waiters = append(fl.waiters, cb)
				}
				metrics.PipelineDedupedTotal.Inc()
				p.mu.Unlock()
				return
			}
		}
	}

	fl := &inflight{
		path:    item.Path,
		url:     item.URL,
		video:   item.Kind == mediatypes.KindVideo,
		kind:    string(item.Kind),
		id:      ulid.Make().String(),
		started: time.Now(),
	}
	if cb != nil {
		fl.waiters = append(fl.waiters, cb)
	}
	p.entries[item.Path] = Entry{State: StatePending}
	p.pending[item.Path] = fl
	metrics.PipelineInFlight.Inc()

	submitted := false
	if p.ch != nil {
		submitted = p.ch.Submit(decode.Request{ID: fl.id, URL: fl.url, Path: fl.path, Video: fl.video})
	}
	if submitted {
		p.byID[fl.id] = fl
		fl.timer = time.AfterFunc(p.timeout, func() { p.onTimeout(fl.id) })
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	// Channel unavailable: straight to the fallback path.
	go p.runFallback(fl)
}

// drain consumes worker responses and resolves the matching in-flight
// request. Replies whose ID is no longer registered (timed out, or the
// engine is gone) are discarded.
func (p *Pipeline) drain() {
	for {
		select {
		case <-p.done:
			return
		case resp := <-p.ch.Responses():
			p.mu.Lock()
			fl, ok := p.byID[resp.ID]
			if !ok {
				metrics.PipelineLateRepliesTotal.Inc()
				logging.Debug("pipeline: discarding late reply %s", resp.ID)
				p.mu.Unlock()
				continue
			}
			delete(p.byID, resp.ID)
			if fl.timer != nil {
				fl.timer.Stop()
			}
			p.mu.Unlock()

			if resp.Err {
				logging.Debug("pipeline: worker failed for %s, falling back", fl.path)
				go p.runFallback(fl)
				continue
			}
			p.resolve(fl, resp.Image, resp.Width, resp.Height, "worker")
		}
	}
}

// onTimeout fires when a worker request has been silent for the full
// timeout. The ID is unregistered first so a late reply is ignored.
func (p *Pipeline) onTimeout(id string) {
	p.mu.Lock()
	fl, ok := p.byID[id]
	if !ok {
		p.mu.Unlock()
		return
	}
	delete(p.byID, id)
	p.mu.Unlock()

	metrics.PipelineTimeoutsTotal.Inc()
	logging.Warn("pipeline: worker timed out for %s after %v, falling back", fl.path, p.timeout)
	go p.runFallback(fl)
}

// runFallback performs the main-context decode: persistent store blob,
// else fetch-store-decode, else hand the URL to the platform.
func (p *Pipeline) runFallback(fl *inflight) {
	if p.fallback != nil {
		img, err := p.fallback(decode.Request{ID: fl.id, URL: fl.url, Path: fl.path, Video: fl.video})
		if err == nil {
			b := img.Bounds()
			p.resolve(fl, img, b.Dx(), b.Dy(), "fallback")
			return
		}
		logging.Debug("pipeline: fallback decode failed for %s: %v", fl.path, err)
	}

	if !fl.video && fl.url != "" {
		// Degraded native path: let the platform decode the URL
		// directly. No caching benefit, but the item still displays.
		p.resolveNative(fl)
		return
	}
	p.fail(fl)
}

func (p *Pipeline) resolve(fl *inflight, img image.Image, w, h int, outcome string) {
	p.mu.Lock()
	delete(p.pending, fl.path)
	p.entries[fl.path] = Entry{State: StateReady, Image: img, Width: w, Height: h}
	waiters := fl.waiters
	p.mu.Unlock()

	p.version.Add(1)
	metrics.LayoutVersion.Set(float64(p.version.Load()))
	metrics.PipelineInFlight.Dec()
	metrics.PipelineLoadsTotal.WithLabelValues(fl.kind, outcome).Inc()
	metrics.PipelineLoadDuration.WithLabelValues(fl.kind).Observe(time.Since(fl.started).Seconds())

	for _, cb := range waiters {
		cb(Result{OK: true, Image: img, Width: w, Height: h})
	}
}

func (p *Pipeline) resolveNative(fl *inflight) {
	p.mu.Lock()
	delete(p.pending, fl.path)
	p.entries[fl.path] = Entry{State: StateNative, NativeURL: fl.url}
	waiters := fl.waiters
	p.mu.Unlock()

	p.version.Add(1)
	metrics.PipelineInFlight.Dec()
	metrics.PipelineLoadsTotal.WithLabelValues(fl.kind, "native").Inc()

	for _, cb := range waiters {
		cb(Result{OK: true, NativeURL: fl.url})
	}
}

// fail reverts the entry to absent: no negative caching, the path is
// retried the next time something still wants it.
func (p *Pipeline) fail(fl *inflight) {
	p.mu.Lock()
	delete(p.pending, fl.path)
	delete(p.entries, fl.path)
	waiters := fl.waiters
	p.mu.Unlock()

	metrics.PipelineInFlight.Dec()
	metrics.PipelineLoadsTotal.WithLabelValues(fl.kind, "failed").Inc()

	for _, cb := range waiters {
		cb(Result{OK: false})
	}
}
