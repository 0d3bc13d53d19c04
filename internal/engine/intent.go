package engine

import "github.com/quillforge/quill/internal/engine/buffer"

// Intent is a high-level input event, already abstracted from raw
// key/mouse events by the host shell. The set is closed: the host
// translates whatever input system it has into these and nothing else.
type Intent interface {
	isIntent()
}

// CharacterInput types a single printable character at the cursor.
type CharacterInput struct {
	Ch rune
}

// Backspace deletes the character before the cursor, or the selection.
type Backspace struct{}

// Delete removes the character at the cursor, or the selection.
type Delete struct{}

// Enter splits the current line at the cursor.
type Enter struct{}

// Tab inserts a tab character at the cursor.
type Tab struct{}

// ArrowMove moves the cursor one step, optionally extending the selection.
type ArrowMove struct {
	Dir    Direction
	Extend bool
}

// LineHome moves the cursor to column 0 of the current line.
type LineHome struct {
	Extend bool
}

// LineEnd moves the cursor past the last character of the current line.
type LineEnd struct {
	Extend bool
}

// DocHome moves the cursor to the start of the document.
type DocHome struct {
	Extend bool
}

// DocEnd moves the cursor past the last character of the document.
type DocEnd struct {
	Extend bool
}

// PageUp moves the cursor up by one viewport of lines.
type PageUp struct {
	Extend bool
}

// PageDown moves the cursor down by one viewport of lines.
type PageDown struct {
	Extend bool
}

// MouseClick places the cursor at a buffer position and arms a selection.
// The position is already translated from pixels by the host.
type MouseClick struct {
	Pos buffer.Position
}

// MouseDrag extends the armed selection to a buffer position.
type MouseDrag struct {
	Pos buffer.Position
}

// MouseRelease ends a mouse selection gesture.
type MouseRelease struct{}

// Copy sends the selected text to the clipboard collaborator.
type Copy struct{}

// Paste inserts text at the cursor. The host resolves the clipboard read
// and delivers the resolved text here.
type Paste struct {
	Text string
}

// Undo reverses the most recent edit.
type Undo struct{}

// Redo re-applies the most recently undone edit.
type Redo struct{}

// OpenSearch activates search with the current query.
type OpenSearch struct{}

// OpenReplace activates search with the replace field shown.
type OpenReplace struct{}

// CloseSearch deactivates search and drops its matches.
type CloseSearch struct{}

// SearchQueryChanged updates the query and recomputes matches.
type SearchQueryChanged struct {
	Query string
}

// ReplaceTextChanged updates the replacement text.
type ReplaceTextChanged struct {
	Text string
}

// ToggleCaseSensitive flips case sensitivity and recomputes matches.
type ToggleCaseSensitive struct{}

// FindNext selects the next match, wrapping at the end.
type FindNext struct{}

// FindPrevious selects the previous match, wrapping at the start.
type FindPrevious struct{}

// ReplaceNext replaces the selected match.
type ReplaceNext struct{}

// ReplaceAll replaces every match as one undo step.
type ReplaceAll struct{}

// Scrolled reports a scroll position or viewport size change, in pixels.
type Scrolled struct {
	Offset    float64
	ViewportW float64
	ViewportH float64
}

func (CharacterInput) isIntent()      {}
func (Backspace) isIntent()           {}
func (Delete) isIntent()              {}
func (Enter) isIntent()               {}
func (Tab) isIntent()                 {}
func (ArrowMove) isIntent()           {}
func (LineHome) isIntent()            {}
func (LineEnd) isIntent()             {}
func (DocHome) isIntent()             {}
func (DocEnd) isIntent()              {}
func (PageUp) isIntent()              {}
func (PageDown) isIntent()            {}
func (MouseClick) isIntent()          {}
func (MouseDrag) isIntent()           {}
func (MouseRelease) isIntent()        {}
func (Copy) isIntent()                {}
func (Paste) isIntent()               {}
func (Undo) isIntent()                {}
func (Redo) isIntent()                {}
func (OpenSearch) isIntent()          {}
func (OpenReplace) isIntent()         {}
func (CloseSearch) isIntent()         {}
func (SearchQueryChanged) isIntent()  {}
func (ReplaceTextChanged) isIntent()  {}
func (ToggleCaseSensitive) isIntent() {}
func (FindNext) isIntent()            {}
func (FindPrevious) isIntent()        {}
func (ReplaceNext) isIntent()         {}
func (ReplaceAll) isIntent()          {}
func (Scrolled) isIntent()            {}
