// Package settings persists the durable subset of the gallery view
// state (folder filters, sort, zoom, layout mode, caption and pin
// toggles) keyed by a widget instance id.
//
// Continuous changes (zoom while pinching, scroll-adjacent toggles)
// are debounced so a burst of updates produces a single write.
// Discrete changes (sort order, layout mode) flush immediately via
// SaveNow.
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"photogrid/internal/cachestore"
	"photogrid/internal/layout"
	"photogrid/internal/logging"
	"photogrid/internal/mediatypes"
)

// saveDebounce is the quiet period before a debounced write lands.
const saveDebounce = 400 * time.Millisecond

// State is the persisted view state.
type State struct {
	Folders      []string             `json:"folders,omitempty"`
	SortField    mediatypes.SortField `json:"sortField"`
	SortOrder    mediatypes.SortOrder `json:"sortOrder"`
	ZoomLevel    int                  `json:"zoomLevel"`
	Mode         layout.Mode          `json:"mode"`
	ShowCaptions bool                 `json:"showCaptions"`
	Pinned       bool                 `json:"pinned"`
}

// Default returns the state used when nothing has been persisted yet.
func Default() State {
	return State{
		SortField: mediatypes.SortByName,
		SortOrder: mediatypes.SortAsc,
		ZoomLevel: 500,
		Mode:      layout.ModeJustified,
	}
}

// Saver reads and writes one widget instance's state.
type Saver struct {
	store *cachestore.Store
	id    string

	mu       sync.Mutex
	timer    *time.Timer
	pending  *State
	debounce time.Duration
}

// NewSaver returns a Saver for the given widget instance id.
func NewSaver(store *cachestore.Store, id string) *Saver {
	return &Saver{store: store, id: id, debounce: saveDebounce}
}

// Load returns the persisted state, or the defaults when none exists
// or the stored value does not parse.
func (s *Saver) Load(ctx context.Context) (State, error) {
	raw, ok, err := s.store.GetState(ctx, s.id)
	if err != nil {
		return Default(), fmt.Errorf("load state %s: %w", s.id, err)
	}
	if !ok {
		return Default(), nil
	}
	var st State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		logging.Warn("Discarding unparseable state for %s: %v", s.id, err)
		return Default(), nil
	}
	if !st.Mode.Valid() {
		st.Mode = Default().Mode
	}
	return st, nil
}

// Save schedules a debounced write. Later calls within the quiet
// period replace the pending value and reset the timer.
func (s *Saver) Save(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = &st
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Flush(ctx); err != nil {
			logging.Error("Debounced state save failed: %v", err)
		}
	})
}

// SaveNow writes immediately, cancelling any pending debounced write.
func (s *Saver) SaveNow(ctx context.Context, st State) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil
	s.mu.Unlock()

	return s.write(ctx, st)
}

// Flush writes the pending state, if any. Called by the debounce
// timer and on shutdown.
func (s *Saver) Flush(ctx context.Context) error {
	s.mu.Lock()
	st := s.pending
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	if st == nil {
		return nil
	}
	return s.write(ctx, *st)
}

func (s *Saver) write(ctx context.Context, st State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state %s: %w", s.id, err)
	}
	if err := s.store.PutState(ctx, s.id, string(raw)); err != nil {
		return fmt.Errorf("save state %s: %w", s.id, err)
	}
	logging.Debug("Persisted state for %s", s.id)
	return nil
}
