// Package gallery is the engine tying the parts together: it owns the
// item list, the layout, the load pipeline, scroll/zoom, selection,
// and slideshow state, and steps them once per frame.
//
// All mutation goes through Engine methods under a single mutex, so
// pointer, wheel, and key input from handler goroutines and the frame
// ticker never race. The render loop itself stays pure; Step collects
// state under the lock, calls render.BuildFrame, and forwards the
// frame's load requests to the pipeline.
package gallery

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"photogrid/internal/layout"
	"photogrid/internal/logging"
	"photogrid/internal/mediatypes"
	"photogrid/internal/metrics"
	"photogrid/internal/pipeline"
	"photogrid/internal/render"
	"photogrid/internal/selection"
	"photogrid/internal/settings"
	"photogrid/internal/slideshow"
	"photogrid/internal/source"
	"photogrid/internal/view"
)

const (
	// Gap is the fixed spacing between tiles.
	Gap = 10.0
	// CaptionHeight is reserved below each tile when captions are on.
	CaptionHeight = 24.0
)

// Engine drives one gallery instance.
type Engine struct {
	src   *source.Source
	pipe  *pipeline.Pipeline
	saver *settings.Saver

	mu      sync.Mutex
	state   settings.State
	all     []mediatypes.Item
	items   []mediatypes.Item // filtered + sorted
	result  layout.Result
	scroll  *view.ScrollZoomState
	sel     *selection.Tracker
	show    *slideshow.Controller
	vw, vh  float64
	seenVer uint64 // pipeline version the current layout was built from

	stopChan chan struct{}
	stopOnce sync.Once
}

// New builds an engine, loads the persisted view state, and performs
// the initial refresh.
func New(ctx context.Context, src *source.Source, pipe *pipeline.Pipeline, saver *settings.Saver) (*Engine, error) {
	e := &Engine{
		src:      src,
		pipe:     pipe,
		saver:    saver,
		scroll:   view.NewScrollZoomState(),
		sel:      selection.New(),
		show:     slideshow.New(),
		vw:       1280,
		vh:       720,
		stopChan: make(chan struct{}),
	}

	st := settings.Default()
	if saver != nil {
		loaded, err := saver.Load(ctx)
		if err != nil {
			logging.Warn("Loading view state failed, using defaults: %v", err)
		} else {
			st = loaded
		}
	}
	e.state = st
	e.scroll.SetLevel(float64(st.ZoomLevel))

	if err := e.Refresh(); err != nil {
		return nil, err
	}

	src.SetOnChange(func() {
		if err := e.Refresh(); err != nil {
			logging.Error("Refresh after filesystem change failed: %v", err)
		}
	})
	return e, nil
}

// Stop shuts the frame loop down.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stopChan) })
}

// Run steps the engine on a ticker until Stop. It keeps slideshow
// timing and eased scrolling moving even when no client is pulling
// frames.
func (e *Engine) Run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			e.Step(now)
		case <-e.stopChan:
			return
		}
	}
}

// Refresh rescans the item source and rebuilds the filtered, sorted
// sequence and its layout. Invoked on start, after destructive edits,
// and by the filesystem watcher.
func (e *Engine) Refresh() error {
	items, err := e.src.List()
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	e.mu.Lock()
	e.all = items
	e.applyFilterLocked()
	e.relayoutLocked()
	filtered := append([]mediatypes.Item(nil), e.items...)
	e.mu.Unlock()

	logging.Info("Refreshed collection: %d items (%d after filter)", len(items), len(filtered))
	e.pipe.Preload(filtered)
	return nil
}

// applyFilterLocked rebuilds items from all using the folder filter
// and sort settings.
func (e *Engine) applyFilterLocked() {
	if len(e.state.Folders) == 0 {
		e.items = append([]mediatypes.Item(nil), e.all...)
	} else {
		allowed := make(map[string]bool, len(e.state.Folders))
		for _, f := range e.state.Folders {
			allowed[f] = true
		}
		e.items = e.items[:0]
		for _, it := range e.all {
			if allowed[topFolder(it.Path)] {
				e.items = append(e.items, it)
			}
		}
	}
	sortItems(e.items, e.state.SortField, e.state.SortOrder)
}

// topFolder returns the first path segment, or "" for root-level items.
func topFolder(path string) string {
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return ""
}

func sortItems(items []mediatypes.Item, field mediatypes.SortField, order mediatypes.SortOrder) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		var less bool
		switch field {
		case mediatypes.SortByDate:
			less = a.ModTime.Before(b.ModTime)
		case mediatypes.SortByCreated:
			less = a.CreateTime.Before(b.CreateTime)
		case mediatypes.SortBySize:
			less = a.Size < b.Size
		default:
			less = strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
		if order == mediatypes.SortDesc {
			return !less
		}
		return less
	})
}

// relayoutLocked recomputes geometry from the current items, viewport,
// and zoom, and re-clamps scrolling to the new content extent.
func (e *Engine) relayoutLocked() {
	start := time.Now()

	geoms := make([]layout.ItemGeom, len(e.items))
	for i, it := range e.items {
		g := layout.ItemGeom{Kind: it.Kind}
		if entry := e.pipe.Entry(it.Path); entry.State == pipeline.StateReady && entry.Height > 0 {
			g.Aspect = float64(entry.Width) / float64(entry.Height)
		}
		geoms[i] = g
	}

	caption := 0.0
	if e.state.ShowCaptions {
		caption = CaptionHeight
	}
	e.result = layout.Compute(geoms, layout.Params{
		Mode:          e.state.Mode,
		Width:         e.vw,
		Height:        e.vh,
		Zoom:          e.scroll.Zoom,
		Gap:           Gap,
		CaptionHeight: caption,
		DefaultZoom:   view.DefaultZoom,
	})
	e.seenVer = e.pipe.Version()

	if e.state.Mode.IsPanorama() {
		e.scroll.SetMaxScroll(e.result.ContentWidth - e.vw)
	} else {
		e.scroll.SetMaxScroll(e.result.ContentHeight - e.vh)
	}

	metrics.LayoutComputeDuration.WithLabelValues(string(e.state.Mode)).Observe(time.Since(start).Seconds())
}

// Step advances one frame: ease the scroll, pick up pipeline results
// via the layout version, drive the slideshow, build the frame, and
// request loads for newly visible items.
func (e *Engine) Step(now time.Time) render.Frame {
	e.mu.Lock()

	e.scroll.Ease()

	// Decoded bitmaps change aspects in justified modes, so a version
	// bump means the layout is stale.
	if e.pipe.Version() != e.seenVer {
		e.relayoutLocked()
	}

	// Countdown completion jumps to the first item; later advances
	// ease toward the next one.
	phaseBefore := e.show.Phase()
	if idx, changed := e.show.Step(now, len(e.items)); changed {
		e.scrollToLocked(idx, phaseBefore == slideshow.PhaseActive)
	}

	fs := render.FrameState{
		Items:         e.items,
		Rects:         e.result.Rects,
		Mode:          e.state.Mode,
		ViewportW:     e.vw,
		ViewportH:     e.vh,
		Scroll:        e.scroll.Rendered,
		ShowCaptions:  e.state.ShowCaptions,
		CaptionHeight: CaptionHeight,
		Selected:      e.sel.Selected,
		Lookup:        e.pipe.Entry,
		Slideshow: render.SlideshowView{
			Active: e.show.Phase() == slideshow.PhaseActive,
			Index:  e.show.Current(),
		},
	}
	want := make([]mediatypes.Item, 0)
	frame := render.BuildFrame(fs)
	for _, idx := range frame.WantLoad {
		want = append(want, e.items[idx])
	}
	e.mu.Unlock()

	// Load requests go out after the lock drops; ready entries can
	// resolve callbacks synchronously.
	for _, it := range want {
		e.pipe.Request(it, nil)
	}
	return frame
}

// scrollToLocked moves the viewport to the item at idx.
func (e *Engine) scrollToLocked(idx int, eased bool) {
	for _, r := range e.result.Rects {
		if r.Index != idx {
			continue
		}
		pos := r.Y
		if e.state.Mode.IsPanorama() {
			pos = r.X
		}
		if eased {
			e.scroll.ScrollTo(pos)
		} else {
			e.scroll.JumpTo(pos)
		}
		return
	}
}
