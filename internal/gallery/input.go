package gallery

import (
	"context"
	"fmt"
	"time"

	"photogrid/internal/layout"
	"photogrid/internal/logging"
	"photogrid/internal/mediatypes"
	"photogrid/internal/settings"
	"photogrid/internal/slideshow"
)

// Resize updates the viewport size and relayouts.
func (e *Engine) Resize(w, h float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if w == e.vw && h == e.vh {
		return
	}
	e.vw, e.vh = w, h
	e.relayoutLocked()
}

// PointerDown begins a drag gesture. A click while the slideshow runs
// is an interruption, not a gesture.
func (e *Engine) PointerDown(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.show.NoteActivity(now)
	if e.show.Phase() != slideshow.PhaseIdle {
		e.show.Interrupt()
		return
	}
	e.scroll.DragStart()
}

// PointerMove applies a drag delta along the scroll axis.
func (e *Engine) PointerMove(delta float64, dt time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scroll.DragMove(delta, dt)
}

// PointerUp ends the drag, imparting fling in grid modes.
func (e *Engine) PointerUp() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scroll.DragEnd(e.state.Mode.IsPanorama())
}

// Wheel scrolls by the wheel delta.
func (e *Engine) Wheel(delta float64, now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.show.NoteActivity(now)
	e.scroll.ScrollBy(delta)
}

// Click routes a pointer click at viewport coordinates to the
// selection state machine. A plain click toggles membership of the hit
// item; shift extends from the anchor; mod starts a fresh selection
// and enters edit mode.
func (e *Engine) Click(x, y float64, shift, mod bool, now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.show.NoteActivity(now)
	if e.show.Phase() != slideshow.PhaseIdle {
		e.show.Interrupt()
		return
	}

	idx, ok := e.hitTestLocked(x, y)
	if !ok {
		return
	}
	switch {
	case mod:
		e.sel.ModClick(idx, e.items[idx].Path)
	case shift:
		order := make([]string, len(e.items))
		for i, it := range e.items {
			order[i] = it.Path
		}
		e.sel.ShiftClick(idx, order)
	default:
		e.sel.Click(idx, e.items[idx].Path)
	}
}

// hitTestLocked maps viewport coordinates to the item index under
// them, accounting for the scroll offset.
func (e *Engine) hitTestLocked(x, y float64) (int, bool) {
	if e.state.Mode.IsPanorama() {
		x += e.scroll.Rendered
	} else {
		y += e.scroll.Rendered
	}
	for _, r := range e.result.Rects {
		if x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H {
			return r.Index, true
		}
	}
	return 0, false
}

// ArrowKey steps the slideshow sequentially while active, otherwise
// scrolls by one zoom cell.
func (e *Engine) ArrowKey(forward bool, now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.show.NoteActivity(now)

	if e.show.Phase() == slideshow.PhaseActive {
		var idx int
		if forward {
			idx = e.show.ArrowNext(now, len(e.items))
		} else {
			idx = e.show.ArrowPrev(now, len(e.items))
		}
		e.scrollToLocked(idx, true)
		return
	}

	step := e.scroll.Zoom + Gap
	if !forward {
		step = -step
	}
	e.scroll.ScrollBy(step)
}

// SetZoomLevel applies a bounded zoom level, relayouts, and schedules
// a debounced save (zoom changes arrive in bursts).
func (e *Engine) SetZoomLevel(level float64) {
	e.mu.Lock()
	e.scroll.SetLevel(level)
	e.state.ZoomLevel = int(e.scroll.Level())
	e.relayoutLocked()
	st := e.state
	e.mu.Unlock()

	if e.saver != nil {
		e.saver.Save(st)
	}
}

// StepZoom nudges the zoom level, e.g. from modifier-wheel input.
func (e *Engine) StepZoom(delta float64) {
	e.mu.Lock()
	level := e.scroll.Level() + delta
	e.mu.Unlock()
	e.SetZoomLevel(level)
}

// SetMode switches the layout mode. Discrete change, saved
// immediately.
func (e *Engine) SetMode(ctx context.Context, mode layout.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("unknown layout mode %q", mode)
	}
	e.mu.Lock()
	e.state.Mode = mode
	e.relayoutLocked()
	st := e.state
	e.mu.Unlock()

	return e.saveNow(ctx, st)
}

// ToggleCaptions flips the filename captions. Discrete change, saved
// immediately.
func (e *Engine) ToggleCaptions(ctx context.Context) error {
	e.mu.Lock()
	e.state.ShowCaptions = !e.state.ShowCaptions
	e.relayoutLocked()
	st := e.state
	e.mu.Unlock()

	return e.saveNow(ctx, st)
}

// SetSort changes the sort settings and re-sorts the sequence.
// Discrete change, saved immediately. The existing selection keeps
// its paths.
func (e *Engine) SetSort(ctx context.Context, field mediatypes.SortField, order mediatypes.SortOrder) error {
	e.mu.Lock()
	e.state.SortField = field
	e.state.SortOrder = order
	e.applyFilterLocked()
	e.relayoutLocked()
	st := e.state
	e.mu.Unlock()

	return e.saveNow(ctx, st)
}

// SetFolders applies a folder filter (top-level folder names; empty
// means everything) and rebuilds the sequence.
func (e *Engine) SetFolders(ctx context.Context, folders []string) error {
	e.mu.Lock()
	e.state.Folders = folders
	e.applyFilterLocked()
	e.relayoutLocked()
	st := e.state
	filtered := append([]mediatypes.Item(nil), e.items...)
	e.mu.Unlock()

	e.pipe.Preload(filtered)
	return e.saveNow(ctx, st)
}

// CycleSlideshowInterval advances the slideshow interval through its
// fixed sequence and returns the new value.
func (e *Engine) CycleSlideshowInterval(now time.Time) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.show.CycleInterval(now)
}

// EnterEdit switches to edit mode without touching the selection, so
// the long-press gesture can arm multi-select before the first click.
func (e *Engine) EnterEdit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sel.EnterEdit()
}

// ExitEdit leaves edit mode, clearing the selection.
func (e *Engine) ExitEdit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sel.ExitEdit()
}

// DeleteSelected moves every selected item to the trash and refreshes
// the collection.
func (e *Engine) DeleteSelected(ctx context.Context) error {
	e.mu.Lock()
	paths := e.sel.Paths()
	e.sel.ExitEdit()
	e.mu.Unlock()

	var firstErr error
	for _, p := range paths {
		if err := e.src.Trash(p); err != nil {
			logging.Error("Trash %s failed: %v", p, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if err := e.Refresh(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (e *Engine) saveNow(ctx context.Context, st settings.State) error {
	if e.saver == nil {
		return nil
	}
	return e.saver.SaveNow(ctx, st)
}

// Snapshot is the engine state exposed to the HTTP surface.
type Snapshot struct {
	Items         []mediatypes.Item    `json:"items"`
	Mode          layout.Mode          `json:"mode"`
	ZoomLevel     int                  `json:"zoomLevel"`
	Scroll        float64              `json:"scroll"`
	MaxScroll     float64              `json:"maxScroll"`
	ContentWidth  float64              `json:"contentWidth"`
	ContentHeight float64              `json:"contentHeight"`
	ShowCaptions  bool                 `json:"showCaptions"`
	EditMode      bool                 `json:"editMode"`
	Selected      []string             `json:"selected,omitempty"`
	Slideshow     string               `json:"slideshow"`
	SortField     mediatypes.SortField `json:"sortField"`
	SortOrder     mediatypes.SortOrder `json:"sortOrder"`
	Folders       []string             `json:"folders,omitempty"`
}

// Snapshot returns a copy of the current view state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Items:         append([]mediatypes.Item(nil), e.items...),
		Mode:          e.state.Mode,
		ZoomLevel:     int(e.scroll.Level()),
		Scroll:        e.scroll.Rendered,
		MaxScroll:     e.scroll.MaxScroll,
		ContentWidth:  e.result.ContentWidth,
		ContentHeight: e.result.ContentHeight,
		ShowCaptions:  e.state.ShowCaptions,
		EditMode:      e.sel.EditMode(),
		Selected:      e.sel.Paths(),
		Slideshow:     e.show.Phase().String(),
		SortField:     e.state.SortField,
		SortOrder:     e.state.SortOrder,
		Folders:       e.state.Folders,
	}
}
