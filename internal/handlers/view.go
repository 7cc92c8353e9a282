package handlers

import (
	"net/http"
	"time"

	"photogrid/internal/layout"
	"photogrid/internal/mediatypes"
)

// ListItems returns the current filtered, sorted item sequence.
func (h *Handlers) ListItems(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.engine.Snapshot().Items)
}

// GetState returns the full view-state snapshot.
func (h *Handlers) GetState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.engine.Snapshot())
}

// Refresh rescans the collection.
func (h *Handlers) Refresh(w http.ResponseWriter, _ *http.Request) {
	if err := h.engine.Refresh(); err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSONStatus(w, "refreshed")
}

// SetZoom applies a bounded zoom level.
func (h *Handlers) SetZoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Level float64 `json:"level"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	h.engine.SetZoomLevel(req.Level)
	writeJSON(w, h.engine.Snapshot())
}

// SetMode switches the layout mode.
func (h *Handlers) SetMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode layout.Mode `json:"mode"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.engine.SetMode(r.Context(), req.Mode); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, h.engine.Snapshot())
}

// ToggleCaptions flips filename captions.
func (h *Handlers) ToggleCaptions(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.ToggleCaptions(r.Context()); err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, h.engine.Snapshot())
}

// SetSort changes sort field and order.
func (h *Handlers) SetSort(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Field mediatypes.SortField `json:"field"`
		Order mediatypes.SortOrder `json:"order"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.engine.SetSort(r.Context(), req.Field, req.Order); err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, h.engine.Snapshot())
}

// SetFolders applies a top-level folder filter.
func (h *Handlers) SetFolders(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Folders []string `json:"folders"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.engine.SetFolders(r.Context(), req.Folders); err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, h.engine.Snapshot())
}

// CycleSlideshow advances the slideshow interval.
func (h *Handlers) CycleSlideshow(w http.ResponseWriter, _ *http.Request) {
	interval := h.engine.CycleSlideshowInterval(time.Now())
	writeJSON(w, map[string]interface{}{
		"interval": interval.Seconds(),
		"state":    h.engine.Snapshot().Slideshow,
	})
}

// Click routes a viewport click into the selection machinery.
func (h *Handlers) Click(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X     float64 `json:"x"`
		Y     float64 `json:"y"`
		Shift bool    `json:"shift"`
		Mod   bool    `json:"mod"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	h.engine.Click(req.X, req.Y, req.Shift, req.Mod, time.Now())
	writeJSON(w, h.engine.Snapshot())
}

// EnterEdit arms edit mode without changing the selection.
func (h *Handlers) EnterEdit(w http.ResponseWriter, _ *http.Request) {
	h.engine.EnterEdit()
	writeJSON(w, h.engine.Snapshot())
}

// ClearSelection leaves edit mode and clears the selection.
func (h *Handlers) ClearSelection(w http.ResponseWriter, _ *http.Request) {
	h.engine.ExitEdit()
	writeJSON(w, h.engine.Snapshot())
}

// DeleteSelected moves every selected item to the trash.
func (h *Handlers) DeleteSelected(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.DeleteSelected(r.Context()); err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, h.engine.Snapshot())
}
