// Package layout computes item placements for the photogrid surface.
//
// The engine supports four modes: square cells, justified (Flickr-style)
// rows, and single-row panorama variants of each. Layout is a pure
// function from (item geometry, viewport, zoom, gap, caption height) to
// absolute rectangles, computed in O(n) and recomputed wholesale whenever
// any input changes.
//
// Items whose bitmaps have not decoded yet do not block layout: a
// fallback aspect ratio of 1.5 (16:9 for videos) stands in until the
// decode completes, at which point the caller recomputes with real
// dimensions.
package layout
