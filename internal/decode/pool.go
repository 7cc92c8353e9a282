package decode

import (
	"image"
	"sync"
	"time"

	"photogrid/internal/logging"
	"photogrid/internal/metrics"
)

// Request is one unit of work for the pool. Requests are matched to
// responses by ID, never by path, so multiple in-flight requests do not
// collide.
type Request struct {
	ID   string
	URL  string
	Path string
	// Video selects the thumbnail capture path instead of image decode.
	Video bool
}

// Response carries the correlated result of a Request. On success Image
// is non-nil and Width/Height hold its intrinsic pixel dimensions; on
// failure Err is true and the rest is zero.
type Response struct {
	ID     string
	Image  image.Image
	Width  int
	Height int
	Err    bool
}

// Func produces a decoded bitmap for a request. It runs on a pool
// worker goroutine and must be safe for concurrent use.
type Func func(req Request) (image.Image, error)

// Gate blocks workers while the process is under memory pressure.
type Gate interface {
	// WaitIfPaused blocks until decoding may proceed. A false return
	// means shutdown; the worker drops the request.
	WaitIfPaused() bool
}

// Pool is the background decode context: a fixed set of workers
// consuming requests from a channel and emitting correlated responses.
// There is no shared memory with the caller; correlation is purely by
// request ID.
type Pool struct {
	requests  chan Request
	responses chan Response
	fn        Func
	gate      Gate
	done      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewPool starts workers goroutines executing fn. A non-nil gate is
// consulted before each decode so the pool backs off under memory
// pressure.
func NewPool(workers int, fn Func, gate Gate) *Pool {
	p := &Pool{
		requests:  make(chan Request, 64),
		responses: make(chan Response, 64),
		fn:        fn,
		gate:      gate,
		done:      make(chan struct{}),
	}

	metrics.DecodeWorkers.Set(float64(workers))
	logging.Debug("decode pool: starting %d workers", workers)

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			return
		case req := <-p.requests:
			if p.gate != nil && !p.gate.WaitIfPaused() {
				continue
			}
			start := time.Now()
			img, err := p.fn(req)

			resp := Response{ID: req.ID}
			if err != nil {
				logging.Debug("decode worker %d: %s failed: %v", id, req.Path, err)
				metrics.DecodeRequestsTotal.WithLabelValues("error").Inc()
				resp.Err = true
			} else {
				b := img.Bounds()
				resp.Image = img
				resp.Width = b.Dx()
				resp.Height = b.Dy()
				metrics.DecodeRequestsTotal.WithLabelValues("success").Inc()
				logging.Debug("decode worker %d: %s done in %v (%dx%d)",
					id, req.Path, time.Since(start), resp.Width, resp.Height)
			}

			select {
			case p.responses <- resp:
			case <-p.done:
				return
			}
		}
	}
}

// Submit enqueues a request. It returns false when the pool is stopped
// or saturated; the caller treats that as a channel failure and falls
// back to main-context decoding.
func (p *Pool) Submit(req Request) bool {
	select {
	case <-p.done:
		return false
	default:
	}
	select {
	case p.requests <- req:
		return true
	default:
		return false
	}
}

// Responses is the stream of correlated results. Consumers must drain
// it; responses for requests nobody waits on anymore are simply
// discarded by the consumer.
func (p *Pool) Responses() <-chan Response {
	return p.responses
}

// Stop shuts the pool down and waits for workers to exit. In-flight
// work is abandoned; any caller still waiting observes a timeout.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		close(p.done)
		p.wg.Wait()
		logging.Debug("decode pool: stopped")
	})
}
