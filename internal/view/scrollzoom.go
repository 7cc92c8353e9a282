// Package view owns the continuous scroll and zoom state of the
// gallery surface. All hot-path scroll state lives in one
// ScrollZoomState value mutated through well-defined transitions
// (drag, wheel, key, programmatic jump); the render loop reads this
// state every frame and never keeps divergent copies.
package view

import (
	"math"
	"time"
)

// Zoom magnitude bounds and the UI-facing level range. The level is a
// linear control mapped logarithmically onto the 20x magnitude range so
// discrete steps feel perceptually uniform.
const (
	ZoomMin  = 50.0
	ZoomMax  = 1000.0
	LevelMax = 1000.0

	// DefaultZoom is the initial zoom magnitude and the reference for
	// panorama fill-height scaling.
	DefaultZoom = 200.0
)

const (
	// easeFactor moves the rendered offset toward the target each frame.
	easeFactor = 0.08
	// easeSnap ends easing when the remaining distance is negligible.
	easeSnap = 0.1
	// flingFactor converts release velocity (px/ms) into scroll distance.
	flingFactor = 350.0
	// velocityBlend is the EMA weight of the newest drag sample.
	velocityBlend = 0.2
)

// ZoomToLevel maps a zoom magnitude in [ZoomMin, ZoomMax] to the
// bounded level in [0, LevelMax].
func ZoomToLevel(zoom float64) float64 {
	zoom = clamp(zoom, ZoomMin, ZoomMax)
	return LevelMax * math.Log(zoom/ZoomMin) / math.Log(ZoomMax/ZoomMin)
}

// LevelToZoom is the inverse of ZoomToLevel.
func LevelToZoom(level float64) float64 {
	level = clamp(level, 0, LevelMax)
	return ZoomMin * math.Exp(level/LevelMax*math.Log(ZoomMax/ZoomMin))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ScrollZoomState tracks the authoritative scroll target, the eased
// rendered offset, the zoom magnitude, and the drag gesture state.
// Single-writer: only the engine goroutine mutates it.
type ScrollZoomState struct {
	// Zoom is the current magnitude in [ZoomMin, ZoomMax].
	Zoom float64
	// Target is the authoritative scroll offset, set directly by
	// gestures and jumps.
	Target float64
	// Rendered eases toward Target each frame; it is what gets drawn.
	Rendered float64
	// MaxScroll is the clamp bound derived from content extent minus
	// viewport size.
	MaxScroll float64
	// Dragging is true between pointer-down and pointer-up; while set,
	// the render loop tracks the raw target 1:1 instead of easing.
	Dragging bool

	velocity float64 // px/ms, exponential moving average
}

// NewScrollZoomState returns a state at the default zoom, origin scroll.
func NewScrollZoomState() *ScrollZoomState {
	return &ScrollZoomState{Zoom: DefaultZoom}
}

// SetMaxScroll updates the clamp bound and re-clamps both offsets.
func (s *ScrollZoomState) SetMaxScroll(max float64) {
	if max < 0 {
		max = 0
	}
	s.MaxScroll = max
	s.Target = clamp(s.Target, 0, max)
	s.Rendered = clamp(s.Rendered, 0, max)
}

// ScrollBy moves the target by delta (wheel, keyboard step).
func (s *ScrollZoomState) ScrollBy(delta float64) {
	s.Target = clamp(s.Target+delta, 0, s.MaxScroll)
}

// ScrollTo sets the target directly; the rendered value eases there.
func (s *ScrollZoomState) ScrollTo(pos float64) {
	s.Target = clamp(pos, 0, s.MaxScroll)
}

// JumpTo sets both target and rendered, skipping the easing animation.
func (s *ScrollZoomState) JumpTo(pos float64) {
	s.Target = clamp(pos, 0, s.MaxScroll)
	s.Rendered = s.Target
}

// DragStart begins a drag gesture.
func (s *ScrollZoomState) DragStart() {
	s.Dragging = true
	s.velocity = 0
}

// DragMove applies a pointer delta. The target moves 1:1 and the
// rendered value follows immediately for exact finger tracking; the
// instantaneous velocity feeds a smoothed average for the release fling.
func (s *ScrollZoomState) DragMove(delta float64, dt time.Duration) {
	if !s.Dragging {
		return
	}
	s.Target = clamp(s.Target+delta, 0, s.MaxScroll)
	s.Rendered = s.Target

	if ms := float64(dt.Milliseconds()); ms > 0 {
		instant := delta / ms
		s.velocity = s.velocity*(1-velocityBlend) + instant*velocityBlend
	}
}

// DragEnd finishes a drag gesture. In grid modes the accumulated
// velocity imparts a fling; panorama modes suppress it.
func (s *ScrollZoomState) DragEnd(panorama bool) {
	if !s.Dragging {
		return
	}
	s.Dragging = false
	if !panorama {
		s.Target = clamp(s.Target+s.velocity*flingFactor, 0, s.MaxScroll)
	}
	s.velocity = 0
}

// Ease advances the rendered offset one frame toward the target,
// snapping when within easeSnap. Returns true if the offset moved.
func (s *ScrollZoomState) Ease() bool {
	if s.Dragging {
		return false
	}
	diff := s.Target - s.Rendered
	if diff == 0 {
		return false
	}
	if math.Abs(diff) < easeSnap {
		s.Rendered = s.Target
		return true
	}
	s.Rendered += diff * easeFactor
	return true
}

// Level returns the current zoom expressed as a level.
func (s *ScrollZoomState) Level() float64 {
	return ZoomToLevel(s.Zoom)
}

// SetLevel sets the zoom from a level value, re-clamping the magnitude.
func (s *ScrollZoomState) SetLevel(level float64) {
	s.Zoom = clamp(LevelToZoom(level), ZoomMin, ZoomMax)
}

// StepLevel nudges the zoom by a level delta (buttons, wheel+modifier,
// pinch). All zoom mutation goes through level space so steps feel
// uniform across the whole range.
func (s *ScrollZoomState) StepLevel(delta float64) {
	s.SetLevel(s.Level() + delta)
}
