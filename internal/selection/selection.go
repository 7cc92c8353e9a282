// Package selection implements the multi-select state machine: a set of
// item paths plus the anchor index that shift-click ranges extend from.
//
// The set stores paths, not indices, so a selection survives sort and
// filter changes: a range computed over one ordering keeps its paths
// when the ordering later changes.
package selection

import "sort"

// Tracker holds the current selection.
type Tracker struct {
	paths    map[string]struct{}
	anchor   int
	editMode bool
}

// New returns an empty selection.
func New() *Tracker {
	return &Tracker{paths: make(map[string]struct{}), anchor: -1}
}

// Click toggles the membership of a single item and records the anchor
// for a subsequent shift-click.
func (t *Tracker) Click(index int, path string) {
	if _, ok := t.paths[path]; ok {
		delete(t.paths, path)
	} else {
		t.paths[path] = struct{}{}
	}
	t.anchor = index
}

// ModClick starts a fresh single-item selection and always enters edit
// mode.
func (t *Tracker) ModClick(index int, path string) {
	t.paths = map[string]struct{}{path: {}}
	t.anchor = index
	t.editMode = true
}

// ShiftClick replaces the selection with the contiguous range from the
// last anchor to index inclusive, resolved against the current filtered
// order. Without a prior anchor it behaves like a plain click.
func (t *Tracker) ShiftClick(index int, order []string) {
	if t.anchor < 0 || t.anchor >= len(order) {
		if index >= 0 && index < len(order) {
			t.Click(index, order[index])
		}
		return
	}

	lo, hi := t.anchor, index
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo < 0 {
		lo = 0
	}
	if hi >= len(order) {
		hi = len(order) - 1
	}

	t.paths = make(map[string]struct{}, hi-lo+1)
	for i := lo; i <= hi; i++ {
		t.paths[order[i]] = struct{}{}
	}
}

// Selected reports whether path is in the selection.
func (t *Tracker) Selected(path string) bool {
	_, ok := t.paths[path]
	return ok
}

// Count returns the selection size.
func (t *Tracker) Count() int {
	return len(t.paths)
}

// Paths returns the selected paths in deterministic (sorted) order.
func (t *Tracker) Paths() []string {
	out := make([]string, 0, len(t.paths))
	for p := range t.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// EditMode reports whether edit mode is active.
func (t *Tracker) EditMode() bool {
	return t.editMode
}

// EnterEdit switches edit mode on.
func (t *Tracker) EnterEdit() {
	t.editMode = true
}

// ExitEdit leaves edit mode and clears the selection.
func (t *Tracker) ExitEdit() {
	t.editMode = false
	t.paths = make(map[string]struct{})
	t.anchor = -1
}
