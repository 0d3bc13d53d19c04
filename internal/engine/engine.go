package engine

import (
	"math"

	"github.com/google/uuid"

	"github.com/quillforge/quill/internal/engine/buffer"
	"github.com/quillforge/quill/internal/engine/cursor"
	"github.com/quillforge/quill/internal/engine/history"
	"github.com/quillforge/quill/internal/engine/search"
	"github.com/quillforge/quill/internal/render/window"
)

// Re-export the position and direction types hosts deal in.
type (
	// Position is a line/column position in character coordinates.
	Position = buffer.Position

	// Direction identifies an arrow-key movement.
	Direction = cursor.Direction

	// Match is one search hit, located by the start of its span.
	Match = search.Match
)

// Arrow-key directions.
const (
	Up    = cursor.Up
	Down  = cursor.Down
	Left  = cursor.Left
	Right = cursor.Right
)

// Clipboard is the write side of the clipboard collaborator. Reads are
// resolved by the host and delivered as Paste intents, so the engine
// never blocks on the clipboard.
type Clipboard interface {
	WriteText(text string) error
}

// Editor owns one document's buffer, cursor, history, search state, and
// render window, and processes host intents against them.
//
// All state is owned and mutated by exactly one goroutine: the host
// serializes intents, so no locking is needed or present. A multi-pane
// host keeps several editors and dispatches intents only to the focused
// one, identified by ID.
type Editor struct {
	id uuid.UUID

	buf    *buffer.Buffer
	cur    *cursor.Cursor
	hist   *history.History
	search *search.State
	win    *window.Manager

	// Configuration
	tabWidth         int
	maxUndoEntries   int
	lineHeight       float64
	marginMultiplier float64
	caseSensitive    bool
	readOnly         bool
	initContent      string

	clipboard Clipboard

	// typing is true while consecutive character inserts are being
	// coalesced into one undo group.
	typing bool

	searchOpen  bool
	replaceOpen bool

	viewportH float64
}

// New creates an editor with the given options.
func New(opts ...Option) *Editor {
	e := &Editor{
		id:               uuid.New(),
		tabWidth:         DefaultTabWidth,
		maxUndoEntries:   DefaultMaxUndoEntries,
		lineHeight:       DefaultLineHeight,
		marginMultiplier: window.DefaultMarginMultiplier,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.buf = buffer.FromString(e.initContent)
	e.cur = cursor.New()
	e.hist = history.New(e.maxUndoEntries)
	e.search = search.New()
	e.search.CaseSensitive = e.caseSensitive
	e.win = window.New(e.lineHeight, window.WithMarginMultiplier(e.marginMultiplier))
	return e
}

// ID returns the editor's instance identifier.
func (e *Editor) ID() uuid.UUID { return e.id }

// Apply processes one host intent. Intents are handled synchronously and
// completely before Apply returns.
func (e *Editor) Apply(in Intent) error {
	switch in := in.(type) {
	case CharacterInput:
		return e.insertChar(in.Ch)
	case Tab:
		return e.insertChar('\t')
	case Enter:
		return e.insertNewline()
	case Backspace:
		return e.backspace()
	case Delete:
		return e.deleteForward()
	case Paste:
		return e.paste(in.Text)
	case Copy:
		return e.copySelection()

	case ArrowMove:
		e.flushTyping()
		e.cur.Move(e.buf, in.Dir, in.Extend)
	case LineHome:
		e.flushTyping()
		e.cur.MoveLineStart(in.Extend)
	case LineEnd:
		e.flushTyping()
		e.cur.MoveLineEnd(e.buf, in.Extend)
	case DocHome:
		e.flushTyping()
		e.cur.MoveDocStart(in.Extend)
	case DocEnd:
		e.flushTyping()
		e.cur.MoveDocEnd(e.buf, in.Extend)
	case PageUp:
		e.flushTyping()
		e.cur.MovePage(e.buf, -e.pageLines(), in.Extend)
	case PageDown:
		e.flushTyping()
		e.cur.MovePage(e.buf, e.pageLines(), in.Extend)

	case MouseClick:
		e.flushTyping()
		e.cur.ClearSelection()
		e.cur.Set(e.buf, in.Pos)
		e.cur.StartSelection()
	case MouseDrag:
		e.cur.ExtendTo(e.buf, in.Pos)
	case MouseRelease:
		if !e.cur.HasSelection() {
			e.cur.ClearSelection()
		}

	case Undo:
		return e.undo()
	case Redo:
		return e.redo()

	case OpenSearch:
		e.flushTyping()
		e.searchOpen = true
		e.replaceOpen = false
		e.refreshMatches()
		e.search.SelectNearest(e.cur.Position())
	case OpenReplace:
		e.flushTyping()
		e.searchOpen = true
		e.replaceOpen = true
		e.refreshMatches()
		e.search.SelectNearest(e.cur.Position())
	case CloseSearch:
		e.searchOpen = false
		e.replaceOpen = false
		e.search.Clear()
	case SearchQueryChanged:
		e.search.Query = in.Query
		e.refreshMatches()
		e.search.SelectNearest(e.cur.Position())
	case ReplaceTextChanged:
		e.search.ReplaceWith = in.Text
	case ToggleCaseSensitive:
		e.search.CaseSensitive = !e.search.CaseSensitive
		e.refreshMatches()
	case FindNext:
		e.flushTyping()
		if m, ok := e.search.Next(); ok {
			e.selectMatch(m)
		}
	case FindPrevious:
		e.flushTyping()
		if m, ok := e.search.Previous(); ok {
			e.selectMatch(m)
		}
	case ReplaceNext:
		if e.readOnly {
			return ErrReadOnly
		}
		e.flushTyping()
		if e.search.ReplaceCurrent(e.buf, e.cur, e.hist) {
			e.cur.Clamp(e.buf)
		}
	case ReplaceAll:
		if e.readOnly {
			return ErrReadOnly
		}
		e.flushTyping()
		if e.search.ReplaceAll(e.buf, e.cur, e.hist) > 0 {
			e.cur.Clamp(e.buf)
		}

	case Scrolled:
		e.viewportH = in.ViewportH
		e.win.Scrolled(in.Offset, in.ViewportW, in.ViewportH)
	}
	return nil
}

// Editing

func (e *Editor) insertChar(ch rune) error {
	if e.readOnly {
		return ErrReadOnly
	}
	if start, end, ok := e.cur.Selection(); ok {
		e.flushTyping()
		e.hist.BeginGroup("replace selection")
		e.typing = true
		e.hist.Apply(history.NewDeleteRange(e.buf, start, end, e.cur.Position()), e.buf, e.cur)
		e.cur.ClearSelection()
	}
	if !e.typing {
		e.hist.BeginGroup("typing")
		e.typing = true
	}
	p := e.cur.Position()
	e.hist.Apply(history.NewInsertChar(p.Line, p.Col, ch, p), e.buf, e.cur)
	e.afterEdit()
	return nil
}

func (e *Editor) insertNewline() error {
	if e.readOnly {
		return ErrReadOnly
	}
	e.flushTyping()
	if start, end, ok := e.cur.Selection(); ok {
		e.hist.BeginGroup("replace selection")
		e.hist.Apply(history.NewDeleteRange(e.buf, start, end, e.cur.Position()), e.buf, e.cur)
		e.cur.ClearSelection()
		p := e.cur.Position()
		e.hist.Apply(history.NewInsertNewline(p.Line, p.Col, p), e.buf, e.cur)
		e.hist.EndGroup()
	} else {
		p := e.cur.Position()
		e.hist.Apply(history.NewInsertNewline(p.Line, p.Col, p), e.buf, e.cur)
	}
	e.afterEdit()
	return nil
}

func (e *Editor) backspace() error {
	if e.readOnly {
		return ErrReadOnly
	}
	e.flushTyping()
	if start, end, ok := e.cur.Selection(); ok {
		e.hist.Apply(history.NewDeleteRange(e.buf, start, end, e.cur.Position()), e.buf, e.cur)
		e.cur.ClearSelection()
		e.afterEdit()
		return nil
	}
	p := e.cur.Position()
	if p.Line == 0 && p.Col == 0 {
		return nil
	}
	e.hist.Apply(history.NewDeleteChar(e.buf, p.Line, p.Col, p), e.buf, e.cur)
	e.afterEdit()
	return nil
}

func (e *Editor) deleteForward() error {
	if e.readOnly {
		return ErrReadOnly
	}
	e.flushTyping()
	if start, end, ok := e.cur.Selection(); ok {
		e.hist.Apply(history.NewDeleteRange(e.buf, start, end, e.cur.Position()), e.buf, e.cur)
		e.cur.ClearSelection()
		e.afterEdit()
		return nil
	}
	p := e.cur.Position()
	last := e.buf.LineCount() - 1
	if p.Line == last && p.Col == e.buf.LineLen(last) {
		return nil
	}
	e.hist.Apply(history.NewDeleteForward(e.buf, p.Line, p.Col, p), e.buf, e.cur)
	e.afterEdit()
	return nil
}

func (e *Editor) paste(text string) error {
	if e.readOnly {
		return ErrReadOnly
	}
	e.flushTyping()
	if text == "" {
		return nil
	}
	if start, end, ok := e.cur.Selection(); ok {
		e.hist.BeginGroup("paste")
		e.hist.Apply(history.NewDeleteRange(e.buf, start, end, e.cur.Position()), e.buf, e.cur)
		e.cur.ClearSelection()
		p := e.cur.Position()
		e.hist.Apply(history.NewInsertText(p.Line, p.Col, text, p), e.buf, e.cur)
		e.hist.EndGroup()
	} else {
		p := e.cur.Position()
		e.hist.Apply(history.NewInsertText(p.Line, p.Col, text, p), e.buf, e.cur)
	}
	e.afterEdit()
	return nil
}

func (e *Editor) copySelection() error {
	text, ok := e.cur.SelectedText(e.buf)
	if !ok {
		return ErrNoSelection
	}
	if e.clipboard == nil {
		return ErrNoClipboard
	}
	return e.clipboard.WriteText(text)
}

func (e *Editor) undo() error {
	if e.readOnly {
		return ErrReadOnly
	}
	e.flushTyping()
	if !e.hist.Undo(e.buf, e.cur) {
		return ErrNothingToUndo
	}
	e.afterEdit()
	return nil
}

func (e *Editor) redo() error {
	if e.readOnly {
		return ErrReadOnly
	}
	e.flushTyping()
	if !e.hist.Redo(e.buf, e.cur) {
		return ErrNothingToRedo
	}
	e.afterEdit()
	return nil
}

// flushTyping closes the keystroke-coalescing group, if open.
func (e *Editor) flushTyping() {
	if e.typing {
		e.hist.EndGroup()
		e.typing = false
	}
}

// afterEdit re-validates cursor and search state after a buffer mutation.
func (e *Editor) afterEdit() {
	e.cur.Clamp(e.buf)
	if e.search.Query == "" {
		return
	}
	_, hadCurrent := e.search.Current()
	e.refreshMatches()
	if hadCurrent {
		e.search.SelectNearest(e.cur.Position())
	}
}

func (e *Editor) refreshMatches() {
	e.search.UpdateMatches(e.buf)
}

// selectMatch places the cursor over a match so the match text becomes
// the selection.
func (e *Editor) selectMatch(m search.Match) {
	start := buffer.Position{Line: m.Line, Col: m.Col}
	end := buffer.Position{Line: m.Line, Col: m.Col + e.search.QueryLen()}
	e.cur.ClearSelection()
	e.cur.Set(e.buf, start)
	e.cur.StartSelection()
	e.cur.ExtendTo(e.buf, end)
}

// pageLines converts the last reported viewport height to a page size.
func (e *Editor) pageLines() int {
	if e.viewportH <= 0 || e.lineHeight <= 0 {
		return 20
	}
	n := int(math.Floor(e.viewportH / e.lineHeight))
	if n < 1 {
		n = 1
	}
	return n
}

// Read Operations

// Content returns the full document text.
func (e *Editor) Content() string { return e.buf.String() }

// SetContent replaces the document wholesale, clearing history, search
// matches, and the render window. Used when a file is (re)loaded.
func (e *Editor) SetContent(content string) {
	e.buf.Reset(content)
	e.cur.ClearSelection()
	e.cur.Set(e.buf, buffer.Position{})
	e.hist.Clear()
	e.typing = false
	e.refreshMatches()
	e.win.Reset()
}

// Revision returns a counter that increases on every buffer mutation.
// Renderers pair it with CacheGeneration to key shaped-line caches.
func (e *Editor) Revision() uint64 { return e.buf.Revision() }

// LineCount returns the number of lines in the document.
func (e *Editor) LineCount() int { return e.buf.LineCount() }

// Line returns the text of line i without its terminator.
func (e *Editor) Line(i int) string { return e.buf.Line(i) }

// LineLen returns the character length of line i.
func (e *Editor) LineLen(i int) int { return e.buf.LineLen(i) }

// CursorPosition returns the caret position.
func (e *Editor) CursorPosition() Position { return e.cur.Position() }

// Selection returns the normalized selection range, if any.
func (e *Editor) Selection() (start, end Position, ok bool) {
	return e.cur.Selection()
}

// SelectedText returns the selected text, if any.
func (e *Editor) SelectedText() (string, bool) {
	return e.cur.SelectedText(e.buf)
}

// SearchOpen reports whether search is active.
func (e *Editor) SearchOpen() bool { return e.searchOpen }

// ReplaceOpen reports whether the replace field is shown.
func (e *Editor) ReplaceOpen() bool { return e.replaceOpen }

// SearchQuery returns the active query.
func (e *Editor) SearchQuery() string { return e.search.Query }

// CaseSensitive reports the search case-sensitivity flag.
func (e *Editor) CaseSensitive() bool { return e.search.CaseSensitive }

// Matches returns the current search matches in document order.
func (e *Editor) Matches() []search.Match { return e.search.Matches() }

// CurrentMatch returns the selected search match, if any.
func (e *Editor) CurrentMatch() (search.Match, bool) { return e.search.Current() }

// CurrentMatchIndex returns the selected match index, or -1.
func (e *Editor) CurrentMatchIndex() int { return e.search.CurrentIndex() }

// IsModified reports whether the document differs from its last-saved
// state.
func (e *Editor) IsModified() bool { return e.hist.IsModified() }

// MarkSaved records the current state as saved.
func (e *Editor) MarkSaved() { e.hist.MarkSaved() }

// CanUndo reports whether an undo step is available.
func (e *Editor) CanUndo() bool { return e.hist.CanUndo() }

// CanRedo reports whether a redo step is available.
func (e *Editor) CanRedo() bool { return e.hist.CanRedo() }

// Window returns the current safe render window.
func (e *Editor) Window() window.Range { return e.win.Window() }

// CacheGeneration returns the render-cache key; it changes whenever the
// window is replaced.
func (e *Editor) CacheGeneration() uint64 { return e.win.Generation() }

// TabWidth returns the configured tab width for renderers.
func (e *Editor) TabWidth() int { return e.tabWidth }

// LineHeight returns the fixed line height in pixels.
func (e *Editor) LineHeight() float64 { return e.lineHeight }

// ApplyTransform replaces the selection (or whole document when none)
// with the transformed text as one undo step. Used by scripting hooks.
func (e *Editor) ApplyTransform(name string, transform func(string) (string, error)) error {
	if e.readOnly {
		return ErrReadOnly
	}
	e.flushTyping()

	start, end, ok := e.cur.Selection()
	if !ok {
		start = buffer.Position{}
		last := e.buf.LineCount() - 1
		end = buffer.Position{Line: last, Col: e.buf.LineLen(last)}
	}
	oldText := e.buf.TextRange(start, end)
	newText, err := transform(oldText)
	if err != nil {
		return err
	}
	if newText == oldText {
		return nil
	}

	comp := history.NewComposite(name)
	comp.Add(history.NewDeleteRange(e.buf, start, end, e.cur.Position()))
	comp.Add(history.NewInsertText(start.Line, start.Col, newText, start))
	e.hist.Apply(comp, e.buf, e.cur)
	e.cur.ClearSelection()
	e.afterEdit()
	return nil
}
