package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"photogrid/internal/cachestore"
	"photogrid/internal/gallery"
	"photogrid/internal/source"
)

// Handlers owns the HTTP surface over one gallery engine.
type Handlers struct {
	engine    *gallery.Engine
	src       *source.Source
	store     *cachestore.Store
	startTime time.Time
}

// New wires the handler set.
func New(engine *gallery.Engine, src *source.Source, store *cachestore.Store) *Handlers {
	return &Handlers{
		engine:    engine,
		src:       src,
		store:     store,
		startTime: time.Now(),
	}
}

// RegisterRoutes attaches all routes to the router.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/items", h.ListItems).Methods(http.MethodGet).Name("items")
	r.HandleFunc("/api/state", h.GetState).Methods(http.MethodGet).Name("state")
	r.HandleFunc("/api/refresh", h.Refresh).Methods(http.MethodPost).Name("refresh")

	r.HandleFunc("/api/view/zoom", h.SetZoom).Methods(http.MethodPost).Name("view-zoom")
	r.HandleFunc("/api/view/mode", h.SetMode).Methods(http.MethodPost).Name("view-mode")
	r.HandleFunc("/api/view/captions", h.ToggleCaptions).Methods(http.MethodPost).Name("view-captions")
	r.HandleFunc("/api/view/sort", h.SetSort).Methods(http.MethodPost).Name("view-sort")
	r.HandleFunc("/api/view/folders", h.SetFolders).Methods(http.MethodPost).Name("view-folders")

	r.HandleFunc("/api/slideshow/cycle", h.CycleSlideshow).Methods(http.MethodPost).Name("slideshow-cycle")

	r.HandleFunc("/api/selection/click", h.Click).Methods(http.MethodPost).Name("selection-click")
	r.HandleFunc("/api/selection/edit", h.EnterEdit).Methods(http.MethodPost).Name("selection-edit")
	r.HandleFunc("/api/selection/clear", h.ClearSelection).Methods(http.MethodPost).Name("selection-clear")
	r.HandleFunc("/api/selection", h.DeleteSelected).Methods(http.MethodDelete).Name("selection-delete")

	r.HandleFunc("/api/embed", h.EmbedSnippet).Methods(http.MethodGet).Name("embed")
	r.HandleFunc("/api/version", h.Version).Methods(http.MethodGet).Name("version")

	r.PathPrefix("/media/").HandlerFunc(h.ServeMedia).Methods(http.MethodGet).Name("media")
	r.PathPrefix("/thumb/").HandlerFunc(h.ServeThumb).Methods(http.MethodGet).Name("thumb")

	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet).Name("healthz")
	r.HandleFunc("/readyz", h.HealthCheck).Methods(http.MethodGet).Name("readyz")
}
