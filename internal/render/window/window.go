// Package window decides which line range must stay rendered as the user
// scrolls, and signals when the render cache has to be rebuilt.
//
// The manager keeps a "safe" window of lines padded by a margin on both
// sides of the visible range. Small scrolls inside the margin leave the
// window untouched, so the renderer's cache survives; only crossing the
// margin boundary, or resizing the viewport, forces a re-window.
package window

import "math"

// Defaults used when an option is not set.
const (
	DefaultMarginMultiplier = 2.0
	DefaultResizeEpsilon    = 0.5
)

// Range is a half-open line interval [Start, End).
type Range struct {
	Start int
	End   int
}

// Contains reports whether line falls inside the range.
func (r Range) Contains(line int) bool {
	return line >= r.Start && line < r.End
}

// Len returns the number of lines in the range.
func (r Range) Len() int {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// Manager tracks viewport geometry and the current safe render window.
// Like the rest of the engine it is owned, single-mutator state.
type Manager struct {
	lineHeight       float64
	marginMultiplier float64
	resizeEpsilon    float64

	viewportW float64
	viewportH float64

	window      Range
	established bool

	// generation changes every time the window is replaced; renderers use
	// it as a cache key.
	generation uint64
}

// Option configures a Manager.
type Option func(*Manager)

// WithMarginMultiplier sets the margin size as a multiple of the visible
// line count.
func WithMarginMultiplier(m float64) Option {
	return func(w *Manager) {
		if m > 0 {
			w.marginMultiplier = m
		}
	}
}

// WithResizeEpsilon sets the pixel threshold below which viewport size
// changes are ignored.
func WithResizeEpsilon(eps float64) Option {
	return func(w *Manager) {
		if eps >= 0 {
			w.resizeEpsilon = eps
		}
	}
}

// New creates a manager for a fixed line height in pixels.
func New(lineHeight float64, opts ...Option) *Manager {
	if lineHeight <= 0 {
		lineHeight = 1
	}
	m := &Manager{
		lineHeight:       lineHeight,
		marginMultiplier: DefaultMarginMultiplier,
		resizeEpsilon:    DefaultResizeEpsilon,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Window returns the current safe render window. Before the first scroll
// event the window is degenerate (zero length).
func (m *Manager) Window() Range { return m.window }

// Generation returns the cache key for the current window.
func (m *Manager) Generation() uint64 { return m.generation }

// VisibleLines returns how many lines fit the given viewport height, with
// two lines of slack for partially clipped rows.
func (m *Manager) VisibleLines(viewportH float64) int {
	return int(math.Ceil(viewportH/m.lineHeight)) + 2
}

// FirstVisible converts a pixel scroll offset to the topmost visible line.
func (m *Manager) FirstVisible(scrollOffset float64) int {
	if scrollOffset < 0 {
		scrollOffset = 0
	}
	return int(math.Floor(scrollOffset / m.lineHeight))
}

// Scrolled processes a scroll or resize event and reports whether the
// render cache must be invalidated.
//
// Re-windowing happens when the window is not yet established, when the
// viewport size changed beyond the epsilon, or when the visible range has
// drifted into the inner half of either margin. A candidate identical to
// the stored window never invalidates, which keeps the window stable when
// it is pinned against the top of the document.
func (m *Manager) Scrolled(scrollOffset, viewportW, viewportH float64) bool {
	resized := math.Abs(viewportW-m.viewportW) > m.resizeEpsilon ||
		math.Abs(viewportH-m.viewportH) > m.resizeEpsilon
	m.viewportW = viewportW
	m.viewportH = viewportH

	visible := m.VisibleLines(viewportH)
	first := m.FirstVisible(scrollOffset)
	last := first + visible
	margin := int(float64(visible) * m.marginMultiplier)

	candidate := Range{Start: first - margin, End: last + margin}
	if candidate.Start < 0 {
		candidate.Start = 0
	}

	switch {
	case !m.established, resized:
		// Fall through to re-window.
	case m.window.Start > 0 && first-m.window.Start < margin/2:
		// Drifted into the inner half of the top margin. A window pinned
		// at line 0 has no top margin to cross.
	case m.window.End-last < margin/2:
		// Drifted into the inner half of the bottom margin.
	default:
		return false
	}

	if m.established && !resized && candidate == m.window {
		return false
	}

	m.window = candidate
	m.established = true
	m.generation++
	return true
}

// Reset drops the established window, forcing the next scroll event to
// re-window. Call when the document is replaced wholesale.
func (m *Manager) Reset() {
	m.window = Range{}
	m.established = false
	m.generation++
}
