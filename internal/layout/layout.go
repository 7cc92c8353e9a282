package layout

import (
	"math"

	"photogrid/internal/mediatypes"
)

// Mode selects the placement algorithm.
type Mode string

const (
	// ModeSquare places items in fixed square cells, row-major.
	ModeSquare Mode = "square"
	// ModeJustified places items in rows rescaled to exactly fill the width.
	ModeJustified Mode = "justified"
	// ModePanoramaSquare places square items in a single horizontal row.
	ModePanoramaSquare Mode = "panorama-square"
	// ModePanoramaJustified places aspect-sized items in a single horizontal row.
	ModePanoramaJustified Mode = "panorama-justified"
)

// IsPanorama reports whether the mode scrolls horizontally.
func (m Mode) IsPanorama() bool {
	return m == ModePanoramaSquare || m == ModePanoramaJustified
}

// Valid reports whether m is one of the four layout modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeSquare, ModeJustified, ModePanoramaSquare, ModePanoramaJustified:
		return true
	}
	return false
}

// Rect is the computed placement of one item. Rects are regenerated in
// full whenever the item sequence, viewport, zoom, mode, or caption
// toggle changes; they are never mutated after Compute returns.
type Rect struct {
	X, Y  float64
	W, H  float64
	Index int
}

// ItemGeom is the geometric input for one item: its intrinsic aspect
// ratio when a decoded bitmap is available, and its kind for the
// fallback ratio when not.
type ItemGeom struct {
	// Aspect is width/height of the decoded bitmap, or 0 when unknown.
	Aspect float64
	Kind   mediatypes.Kind
}

const (
	// fallbackAspect is used for items whose bitmap has not decoded yet.
	fallbackAspect = 1.5
	// videoAspect is used for videos without a decoded thumbnail.
	videoAspect = 16.0 / 9.0
)

// Params are the inputs to a layout computation.
type Params struct {
	Mode Mode
	// Width is the available viewport width.
	Width float64
	// Height is the available viewport height; only panorama modes use it.
	Height float64
	// Zoom is the zoom magnitude: square cell side, or justified target
	// row height.
	Zoom float64
	// Gap is the fixed inter-item spacing.
	Gap float64
	// CaptionHeight reserves space below each rect for a name caption;
	// 0 when captions are off.
	CaptionHeight float64
	// DefaultZoom scales the panorama fill height by Zoom/DefaultZoom.
	DefaultZoom float64
}

// Result is a complete layout: one rect per input item plus the total
// content extent used to clamp scrolling.
type Result struct {
	Rects []Rect
	// ContentWidth is the horizontal extent including trailing gap.
	ContentWidth float64
	// ContentHeight is the vertical extent including trailing gap.
	ContentHeight float64
}

func (g ItemGeom) aspect() float64 {
	if g.Aspect > 0 {
		return g.Aspect
	}
	if g.Kind == mediatypes.KindVideo {
		return videoAspect
	}
	return fallbackAspect
}

// Compute maps the ordered item sequence to absolute positions. It is a
// pure function of its inputs: identical inputs yield identical results.
// Runs in O(n).
func Compute(items []ItemGeom, p Params) Result {
	if len(items) == 0 || p.Width <= 0 {
		return Result{Rects: []Rect{}}
	}

	switch p.Mode {
	case ModeJustified:
		return computeJustified(items, p)
	case ModePanoramaSquare, ModePanoramaJustified:
		return computePanorama(items, p)
	default:
		return computeSquare(items, p)
	}
}

// computeSquare lays items into fixed square cells. The column count is
// derived from the zoom magnitude, then the cell side is stretched so
// the columns exactly fill the available width.
func computeSquare(items []ItemGeom, p Params) Result {
	cell := p.Zoom
	cols := int(math.Floor((p.Width - p.Gap) / (cell + p.Gap)))
	if cols < 1 {
		cols = 1
	}

	side := (p.Width - float64(cols+1)*p.Gap) / float64(cols)
	rowStride := side + p.CaptionHeight + p.Gap

	rects := make([]Rect, len(items))
	for i := range items {
		col := i % cols
		row := i / cols
		rects[i] = Rect{
			X:     p.Gap + float64(col)*(side+p.Gap),
			Y:     p.Gap + float64(row)*rowStride,
			W:     side,
			H:     side,
			Index: i,
		}
	}

	rows := (len(items) + cols - 1) / cols
	return Result{
		Rects:         rects,
		ContentWidth:  p.Width,
		ContentHeight: p.Gap + float64(rows)*rowStride,
	}
}

// computeJustified implements the Flickr-style row algorithm: items
// accumulate at a common target row height until the row would overflow,
// then the whole row is rescaled so its widths plus gaps exactly fill
// the container. The final under-full row is left at the target height.
func computeJustified(items []ItemGeom, p Params) Result {
	rowH := p.Zoom
	rects := make([]Rect, len(items))

	y := p.Gap
	rowStart := 0
	rowSum := 0.0

	closeRow := func(end int, scale float64) float64 {
		x := p.Gap
		h := rowH * scale
		for i := rowStart; i < end; i++ {
			w := rects[i].W * scale
			rects[i] = Rect{X: x, Y: y, W: w, H: h, Index: i}
			x += w + p.Gap
		}
		return h
	}

	for i := range items {
		w := rowH * items[i].aspect()

		if i > rowStart && rowSum+w > p.Width-p.Gap {
			// Row is full: rescale so the widths plus (count+1) gaps
			// sum to exactly the container width.
			count := i - rowStart
			scale := (p.Width - float64(count+1)*p.Gap) / rowSum
			h := closeRow(i, scale)
			y += h + p.CaptionHeight + p.Gap
			rowStart = i
			rowSum = 0
		}

		// Provisional placement; X/Y fixed when the row closes.
		rects[i] = Rect{W: w, H: rowH, Index: i}
		rowSum += w
	}

	// Final row keeps the target height and is not stretched.
	if rowStart < len(items) {
		h := closeRow(len(items), 1)
		y += h + p.CaptionHeight + p.Gap
	}

	return Result{
		Rects:         rects,
		ContentWidth:  p.Width,
		ContentHeight: y,
	}
}

// computePanorama lays all items into a single horizontal row at a
// fill height derived from the viewport, scaled by zoom relative to the
// default zoom.
func computePanorama(items []ItemGeom, p Params) Result {
	fillH := p.Height - 2*p.Gap - p.CaptionHeight
	if p.DefaultZoom > 0 {
		fillH *= p.Zoom / p.DefaultZoom
	}
	if fillH < 1 {
		fillH = 1
	}

	rects := make([]Rect, len(items))
	x := p.Gap
	for i := range items {
		w := fillH
		if p.Mode == ModePanoramaJustified {
			w = fillH * items[i].aspect()
		}
		rects[i] = Rect{X: x, Y: p.Gap, W: w, H: fillH, Index: i}
		x += w + p.Gap
	}

	return Result{
		Rects:         rects,
		ContentWidth:  x,
		ContentHeight: fillH + 2*p.Gap + p.CaptionHeight,
	}
}
