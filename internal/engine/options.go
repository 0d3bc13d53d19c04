package engine

// Default configuration values.
const (
	DefaultTabWidth       = 4
	DefaultMaxUndoEntries = 100
	DefaultLineHeight     = 20.0
)

// Option configures an Editor during creation.
type Option func(*Editor)

// WithContent sets the initial document content.
func WithContent(content string) Option {
	return func(e *Editor) {
		e.initContent = content
	}
}

// WithTabWidth sets the tab width reported to renderers.
func WithTabWidth(width int) Option {
	return func(e *Editor) {
		if width > 0 {
			e.tabWidth = width
		}
	}
}

// WithMaxUndoEntries bounds the undo stack.
func WithMaxUndoEntries(n int) Option {
	return func(e *Editor) {
		if n > 0 {
			e.maxUndoEntries = n
		}
	}
}

// WithLineHeight sets the fixed line height in pixels used for scroll and
// page-movement arithmetic.
func WithLineHeight(px float64) Option {
	return func(e *Editor) {
		if px > 0 {
			e.lineHeight = px
		}
	}
}

// WithMarginMultiplier sets the render-window margin as a multiple of the
// visible line count.
func WithMarginMultiplier(m float64) Option {
	return func(e *Editor) {
		if m > 0 {
			e.marginMultiplier = m
		}
	}
}

// WithCaseSensitiveSearch sets the initial search case sensitivity.
func WithCaseSensitiveSearch(on bool) Option {
	return func(e *Editor) {
		e.caseSensitive = on
	}
}

// WithClipboard attaches the clipboard collaborator used by Copy.
func WithClipboard(cb Clipboard) Option {
	return func(e *Editor) {
		e.clipboard = cb
	}
}

// WithReadOnly creates a read-only editor. Mutating intents return
// ErrReadOnly.
func WithReadOnly() Option {
	return func(e *Editor) {
		e.readOnly = true
	}
}
