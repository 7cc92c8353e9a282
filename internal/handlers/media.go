package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"photogrid/internal/cachestore"
	"photogrid/internal/logging"
)

// ServeMedia streams the original file bytes for an item path. Range
// requests work, which video playback depends on.
func (h *Handlers) ServeMedia(w http.ResponseWriter, r *http.Request) {
	itemPath, ok := itemPathFromURL(r.URL.Path, "/media/")
	if !ok {
		writeJSONError(w, "bad media path", http.StatusBadRequest)
		return
	}

	abs, err := h.src.FilePath(itemPath)
	if err != nil {
		writeJSONError(w, "bad media path", http.StatusBadRequest)
		return
	}
	http.ServeFile(w, r, abs)
}

// ServeThumb serves cached thumbnail bytes for an item: the captured
// video frame when one exists, otherwise the cached original blob.
// Nothing is generated on this path; a cache miss is a 404 and the
// client falls back to the full media URL.
func (h *Handlers) ServeThumb(w http.ResponseWriter, r *http.Request) {
	itemPath, ok := itemPathFromURL(r.URL.Path, "/thumb/")
	if !ok {
		writeJSONError(w, "bad thumb path", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	blob, found, err := h.store.Get(ctx, cachestore.ThumbKey(itemPath))
	if err != nil {
		logging.Error("thumb lookup failed for %s: %v", itemPath, err)
		writeJSONError(w, "cache error", http.StatusInternalServerError)
		return
	}
	if !found {
		blob, found, err = h.store.Get(ctx, itemPath)
		if err != nil {
			logging.Error("blob lookup failed for %s: %v", itemPath, err)
			writeJSONError(w, "cache error", http.StatusInternalServerError)
			return
		}
	}
	if !found {
		writeJSONError(w, "not cached", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(blob))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := w.Write(blob); err != nil {
		logging.Debug("thumb write aborted for %s: %v", itemPath, err)
	}
}

// itemPathFromURL strips the route prefix and unescapes the remainder.
func itemPathFromURL(urlPath, prefix string) (string, bool) {
	rest := strings.TrimPrefix(urlPath, prefix)
	if rest == "" || rest == urlPath {
		return "", false
	}
	unescaped, err := url.PathUnescape(rest)
	if err != nil {
		return "", false
	}
	return unescaped, true
}
