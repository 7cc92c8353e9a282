// Package render turns one frame of gallery state into an ordered list
// of draw commands. BuildFrame is pure: it never touches the pipeline,
// the clock, or any I/O, so the drawing logic is testable without a
// real surface. A thin platform executor walks the command list and
// issues the actual draws at device pixel ratio.
//
// Items whose rect intersects the viewport but have no cache entry are
// reported on the WantLoad side channel instead of being requested
// directly; the engine forwards those to the pipeline. Items never
// scrolled into view are never requested.
package render

import (
	"image"
	"time"

	"photogrid/internal/layout"
	"photogrid/internal/mediatypes"
	"photogrid/internal/metrics"
	"photogrid/internal/pipeline"
)

// CornerRadius is the rounded clip radius applied to every tile.
const CornerRadius = 6.0

// Kind discriminates draw commands.
type Kind int

const (
	// KindBitmap draws a decoded image cover-fit into Dest, cropped
	// to Src.
	KindBitmap Kind = iota
	// KindPlaceholder fills Dest with the placeholder color.
	KindPlaceholder
	// KindNative asks the executor to draw the item from its URL
	// using platform-native decoding (degraded path).
	KindNative
	// KindHighlight overlays the selection highlight on Dest.
	KindHighlight
	// KindCaption draws Text below the tile.
	KindCaption
)

// DrawCommand is one draw instruction in viewport coordinates.
type DrawCommand struct {
	Kind  Kind
	Dest  layout.Rect
	Image image.Image
	// Src is the source crop for KindBitmap (cover-fit center crop).
	Src  image.Rectangle
	URL  string
	Text string
	Path string
}

// SlideshowView is the active-slideshow overlay input.
type SlideshowView struct {
	Active bool
	Index  int
}

// FrameState is everything BuildFrame reads for one frame.
type FrameState struct {
	Items []mediatypes.Item
	Rects []layout.Rect
	Mode  layout.Mode

	ViewportW float64
	ViewportH float64
	Scroll    float64 // vertical for grid modes, horizontal for panorama

	ShowCaptions  bool
	CaptionHeight float64

	Selected func(path string) bool
	Lookup   func(path string) pipeline.Entry

	Slideshow SlideshowView
}

// Frame is BuildFrame's output.
type Frame struct {
	Commands []DrawCommand
	// WantLoad lists indices into Items that are visible but have no
	// pipeline entry yet.
	WantLoad []int
}

// BuildFrame produces the draw commands for the current state.
func BuildFrame(s FrameState) Frame {
	start := time.Now()
	defer func() {
		metrics.RenderFrameDuration.Observe(time.Since(start).Seconds())
	}()

	if s.Slideshow.Active {
		return buildSlideshowFrame(s)
	}

	horizontal := s.Mode.IsPanorama()
	var f Frame
	visible := 0
	for _, r := range s.Rects {
		if !intersects(r, s.Scroll, s.ViewportW, s.ViewportH, horizontal) {
			continue
		}
		visible++

		item := s.Items[r.Index]
		dest := r
		if horizontal {
			dest.X -= s.Scroll
		} else {
			dest.Y -= s.Scroll
		}

		f.Commands = append(f.Commands, tileCommand(item, dest, s.Lookup, &f.WantLoad, r.Index)...)

		if s.Selected != nil && s.Selected(item.Path) {
			f.Commands = append(f.Commands, DrawCommand{Kind: KindHighlight, Dest: dest, Path: item.Path})
		}
		if s.ShowCaptions && s.CaptionHeight > 0 {
			label := dest
			label.Y += dest.H
			label.H = s.CaptionHeight
			f.Commands = append(f.Commands, DrawCommand{Kind: KindCaption, Dest: label, Text: item.Name, Path: item.Path})
		}
	}
	metrics.RenderVisibleItems.Observe(float64(visible))
	return f
}

// tileCommand resolves one item against the cache and emits the bitmap,
// native, or placeholder draw for it.
func tileCommand(item mediatypes.Item, dest layout.Rect, lookup func(string) pipeline.Entry, wantLoad *[]int, index int) []DrawCommand {
	if lookup == nil {
		return []DrawCommand{{Kind: KindPlaceholder, Dest: dest, Path: item.Path}}
	}
	e := lookup(item.Path)
	switch e.State {
	case pipeline.StateReady:
		return []DrawCommand{{
			Kind:  KindBitmap,
			Dest:  dest,
			Image: e.Image,
			Src:   CoverCrop(e.Width, e.Height, dest.W, dest.H),
			Path:  item.Path,
		}}
	case pipeline.StateNative:
		return []DrawCommand{{Kind: KindNative, Dest: dest, URL: e.NativeURL, Path: item.Path}}
	case pipeline.StatePending:
		return []DrawCommand{{Kind: KindPlaceholder, Dest: dest, Path: item.Path}}
	default:
		*wantLoad = append(*wantLoad, index)
		return []DrawCommand{{Kind: KindPlaceholder, Dest: dest, Path: item.Path}}
	}
}

// buildSlideshowFrame replaces the grid entirely with a single
// full-viewport draw of the active item.
func buildSlideshowFrame(s FrameState) Frame {
	var f Frame
	idx := s.Slideshow.Index
	if idx < 0 || idx >= len(s.Items) {
		return f
	}
	item := s.Items[idx]
	dest := layout.Rect{W: s.ViewportW, H: s.ViewportH, Index: idx}
	f.Commands = tileCommand(item, dest, s.Lookup, &f.WantLoad, idx)
	metrics.RenderVisibleItems.Observe(1)
	return f
}

// intersects is the cheap bounds test against the scroll offset: any
// overlap with the viewport counts, not full containment.
func intersects(r layout.Rect, scroll, vw, vh float64, horizontal bool) bool {
	if horizontal {
		return r.X+r.W > scroll && r.X < scroll+vw
	}
	return r.Y+r.H > scroll && r.Y < scroll+vh
}

// CoverCrop returns the centered source crop that fills a dest of
// destW x destH with an image of imgW x imgH: scale to fill, crop the
// overflow evenly on both sides.
func CoverCrop(imgW, imgH int, destW, destH float64) image.Rectangle {
	if imgW <= 0 || imgH <= 0 || destW <= 0 || destH <= 0 {
		return image.Rect(0, 0, imgW, imgH)
	}
	srcAspect := float64(imgW) / float64(imgH)
	destAspect := destW / destH

	w, h := float64(imgW), float64(imgH)
	if srcAspect > destAspect {
		// wider than dest: crop left/right
		w = h * destAspect
	} else {
		// taller than dest: crop top/bottom
		h = w / destAspect
	}
	x0 := (float64(imgW) - w) / 2
	y0 := (float64(imgH) - h) / 2
	return image.Rect(int(x0+0.5), int(y0+0.5), int(x0+w+0.5), int(y0+h+0.5))
}
