package engine

import (
	"errors"
	"testing"

	"github.com/quillforge/quill/internal/engine/buffer"
)

// fakeClipboard records the last written text.
type fakeClipboard struct {
	text string
	err  error
}

func (f *fakeClipboard) WriteText(text string) error {
	if f.err != nil {
		return f.err
	}
	f.text = text
	return nil
}

func typeText(t *testing.T, e *Editor, s string) {
	t.Helper()
	for _, ch := range s {
		if err := e.Apply(CharacterInput{Ch: ch}); err != nil {
			t.Fatalf("CharacterInput(%q): %v", ch, err)
		}
	}
}

func TestTypingAndContent(t *testing.T) {
	e := New()
	typeText(t, e, "hello")
	e.Apply(Enter{})
	typeText(t, e, "world")

	if got := e.Content(); got != "hello\nworld" {
		t.Errorf("Content = %q", got)
	}
	if e.CursorPosition() != (Position{Line: 1, Col: 5}) {
		t.Errorf("cursor = %v", e.CursorPosition())
	}
}

func TestTypingCoalescesIntoOneUndo(t *testing.T) {
	e := New()
	typeText(t, e, "abc")

	if err := e.Apply(Undo{}); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if e.Content() != "" {
		t.Errorf("after undo: %q", e.Content())
	}
	if e.Apply(Redo{}); e.Content() != "abc" {
		t.Errorf("after redo: %q", e.Content())
	}
}

func TestNavigationBreaksCoalescing(t *testing.T) {
	e := New()
	typeText(t, e, "ab")
	e.Apply(ArrowMove{Dir: Left, Extend: false})
	e.Apply(ArrowMove{Dir: Right, Extend: false})
	typeText(t, e, "cd")

	e.Apply(Undo{})
	if e.Content() != "ab" {
		t.Errorf("after one undo: %q", e.Content())
	}
	e.Apply(Undo{})
	if e.Content() != "" {
		t.Errorf("after two undos: %q", e.Content())
	}
}

func TestFindNavigationBreaksCoalescing(t *testing.T) {
	e := New()
	e.Apply(SearchQueryChanged{Query: "zzz"})

	typeText(t, e, "ab")
	e.Apply(FindNext{})
	typeText(t, e, "cd")

	e.Apply(Undo{})
	if e.Content() != "ab" {
		t.Errorf("after one undo: %q", e.Content())
	}
}

func TestTypingAfterUndoDropsStaleSelection(t *testing.T) {
	e := New()
	typeText(t, e, "a")
	e.Apply(Enter{})
	e.Apply(ArrowMove{Dir: Up, Extend: true})

	// Undoing the newline shrinks the document below the anchor line.
	e.Apply(Undo{})
	if _, _, ok := e.Selection(); ok {
		t.Fatal("selection survived undo past its anchor")
	}

	typeText(t, e, "x")
	if e.Content() != "ax" {
		t.Fatalf("content = %q", e.Content())
	}
	e.Apply(Undo{})
	if e.Content() != "a" {
		t.Errorf("after undo: %q", e.Content())
	}
	e.Apply(Undo{})
	if e.Content() != "" {
		t.Errorf("after final undo: %q", e.Content())
	}
}

func TestTypingOverSelection(t *testing.T) {
	e := New(WithContent("hello world"))
	e.Apply(MouseClick{Pos: buffer.Position{Line: 0, Col: 0}})
	e.Apply(MouseDrag{Pos: buffer.Position{Line: 0, Col: 5}})
	e.Apply(MouseRelease{})

	typeText(t, e, "bye")
	if e.Content() != "bye world" {
		t.Errorf("content = %q", e.Content())
	}

	// Selection deletion and the typed run undo as one step.
	e.Apply(Undo{})
	if e.Content() != "hello world" {
		t.Errorf("after undo: %q", e.Content())
	}
}

func TestEnterOverSelection(t *testing.T) {
	e := New(WithContent("abcdef"))
	e.Apply(MouseClick{Pos: buffer.Position{Line: 0, Col: 2}})
	e.Apply(MouseDrag{Pos: buffer.Position{Line: 0, Col: 4}})

	e.Apply(Enter{})
	if e.Content() != "ab\nef" {
		t.Errorf("content = %q", e.Content())
	}
	e.Apply(Undo{})
	if e.Content() != "abcdef" {
		t.Errorf("after undo: %q", e.Content())
	}
}

func TestBackspaceAndDeleteWithSelection(t *testing.T) {
	e := New(WithContent("hello world"))
	e.Apply(MouseClick{Pos: buffer.Position{Line: 0, Col: 5}})
	e.Apply(MouseDrag{Pos: buffer.Position{Line: 0, Col: 11}})

	e.Apply(Backspace{})
	if e.Content() != "hello" {
		t.Errorf("after backspace: %q", e.Content())
	}

	e.Apply(MouseClick{Pos: buffer.Position{Line: 0, Col: 0}})
	e.Apply(MouseDrag{Pos: buffer.Position{Line: 0, Col: 2}})
	e.Apply(Delete{})
	if e.Content() != "llo" {
		t.Errorf("after delete: %q", e.Content())
	}
}

func TestBackspaceAtDocumentStart(t *testing.T) {
	e := New(WithContent("x"))
	if err := e.Apply(Backspace{}); err != nil {
		t.Fatalf("Backspace: %v", err)
	}
	if e.Content() != "x" {
		t.Errorf("content = %q", e.Content())
	}
	if e.CanUndo() {
		t.Error("no-op backspace pushed history")
	}
}

func TestDeleteAtDocumentEnd(t *testing.T) {
	e := New(WithContent("x"))
	e.Apply(DocEnd{})
	if err := e.Apply(Delete{}); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if e.CanUndo() {
		t.Error("no-op delete pushed history")
	}
}

func TestBackspaceMergesLines(t *testing.T) {
	e := New(WithContent("ab\ncd"))
	e.Apply(ArrowMove{Dir: Down, Extend: false})

	e.Apply(Backspace{})
	if e.Content() != "abcd" {
		t.Errorf("content = %q", e.Content())
	}
	if e.CursorPosition() != (Position{Line: 0, Col: 2}) {
		t.Errorf("cursor = %v", e.CursorPosition())
	}

	e.Apply(Undo{})
	if e.Content() != "ab\ncd" {
		t.Errorf("after undo: %q", e.Content())
	}
	if e.CursorPosition() != (Position{Line: 1, Col: 0}) {
		t.Errorf("cursor after undo = %v", e.CursorPosition())
	}
}

func TestPasteOverSelectionIsOneUndo(t *testing.T) {
	e := New(WithContent("one two"))
	e.Apply(MouseClick{Pos: buffer.Position{Line: 0, Col: 4}})
	e.Apply(MouseDrag{Pos: buffer.Position{Line: 0, Col: 7}})

	e.Apply(Paste{Text: "2\n3"})
	if e.Content() != "one 2\n3" {
		t.Errorf("content = %q", e.Content())
	}
	e.Apply(Undo{})
	if e.Content() != "one two" {
		t.Errorf("after undo: %q", e.Content())
	}
}

func TestCopy(t *testing.T) {
	cb := &fakeClipboard{}
	e := New(WithContent("hello world"), WithClipboard(cb))

	if err := e.Apply(Copy{}); !errors.Is(err, ErrNoSelection) {
		t.Errorf("Copy without selection: %v", err)
	}

	e.Apply(MouseClick{Pos: buffer.Position{Line: 0, Col: 6}})
	e.Apply(MouseDrag{Pos: buffer.Position{Line: 0, Col: 11}})
	if err := e.Apply(Copy{}); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if cb.text != "world" {
		t.Errorf("clipboard = %q", cb.text)
	}
}

func TestCopyWithoutClipboard(t *testing.T) {
	e := New(WithContent("ab"))
	e.Apply(MouseClick{Pos: buffer.Position{Line: 0, Col: 0}})
	e.Apply(MouseDrag{Pos: buffer.Position{Line: 0, Col: 2}})

	if err := e.Apply(Copy{}); !errors.Is(err, ErrNoClipboard) {
		t.Errorf("Copy = %v, want ErrNoClipboard", err)
	}
}

func TestUndoRedoErrors(t *testing.T) {
	e := New()
	if err := e.Apply(Undo{}); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("Undo on empty = %v", err)
	}
	if err := e.Apply(Redo{}); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("Redo on empty = %v", err)
	}
}

func TestReadOnly(t *testing.T) {
	e := New(WithContent("locked"), WithReadOnly())

	mutators := []Intent{
		CharacterInput{Ch: 'x'}, Backspace{}, Delete{}, Enter{}, Tab{},
		Paste{Text: "y"}, Undo{}, Redo{}, ReplaceNext{}, ReplaceAll{},
	}
	for _, in := range mutators {
		if err := e.Apply(in); !errors.Is(err, ErrReadOnly) {
			t.Errorf("%T = %v, want ErrReadOnly", in, err)
		}
	}
	if e.Content() != "locked" {
		t.Errorf("content = %q", e.Content())
	}
}

func TestSearchIntents(t *testing.T) {
	e := New(WithContent("foo bar foo bar foo"))

	e.Apply(OpenSearch{})
	e.Apply(SearchQueryChanged{Query: "foo"})
	if got := len(e.Matches()); got != 3 {
		t.Fatalf("matches = %d, want 3", got)
	}
	// The match nearest the cursor (0,0) is selected on query change.
	if e.CurrentMatchIndex() != 0 {
		t.Errorf("current = %d, want 0", e.CurrentMatchIndex())
	}

	e.Apply(FindNext{})
	m, _ := e.CurrentMatch()
	if m.Col != 8 {
		t.Errorf("after FindNext: col %d, want 8", m.Col)
	}
	// FindNext selects the match text.
	if text, _ := e.SelectedText(); text != "foo" {
		t.Errorf("selected = %q", text)
	}

	e.Apply(FindPrevious{})
	m, _ = e.CurrentMatch()
	if m.Col != 0 {
		t.Errorf("after FindPrevious: col %d, want 0", m.Col)
	}

	e.Apply(CloseSearch{})
	if e.SearchOpen() || len(e.Matches()) != 0 {
		t.Error("search state survived CloseSearch")
	}
}

func TestReplaceIntents(t *testing.T) {
	e := New(WithContent("foo foo foo"))
	e.Apply(OpenReplace{})
	e.Apply(SearchQueryChanged{Query: "foo"})
	e.Apply(ReplaceTextChanged{Text: "bar"})

	e.Apply(ReplaceNext{})
	if e.Content() != "bar foo foo" {
		t.Errorf("after ReplaceNext: %q", e.Content())
	}

	e.Apply(ReplaceAll{})
	if e.Content() != "bar bar bar" {
		t.Errorf("after ReplaceAll: %q", e.Content())
	}
	if len(e.Matches()) != 0 {
		t.Errorf("matches remain: %v", e.Matches())
	}

	// Replace-all is one undo step.
	e.Apply(Undo{})
	if e.Content() != "bar foo foo" {
		t.Errorf("after undo: %q", e.Content())
	}
}

func TestToggleCaseSensitive(t *testing.T) {
	e := New(WithContent("Foo foo"))
	e.Apply(SearchQueryChanged{Query: "foo"})
	if len(e.Matches()) != 2 {
		t.Fatalf("insensitive matches = %d", len(e.Matches()))
	}
	e.Apply(ToggleCaseSensitive{})
	if len(e.Matches()) != 1 {
		t.Errorf("sensitive matches = %d", len(e.Matches()))
	}
	if e.CurrentMatchIndex() != 0 {
		t.Errorf("current after toggle = %d, want 0", e.CurrentMatchIndex())
	}
}

func TestMatchAppearingOnEditIsSelected(t *testing.T) {
	e := New()
	e.Apply(OpenSearch{})
	e.Apply(SearchQueryChanged{Query: "ab"})
	if e.CurrentMatchIndex() != -1 {
		t.Fatalf("current with no matches = %d, want -1", e.CurrentMatchIndex())
	}

	typeText(t, e, "ab")
	if e.CurrentMatchIndex() != 0 {
		t.Errorf("current = %d, want 0", e.CurrentMatchIndex())
	}
}

func TestEditRefreshesMatches(t *testing.T) {
	e := New(WithContent("foo"))
	e.Apply(SearchQueryChanged{Query: "foo"})
	if len(e.Matches()) != 1 {
		t.Fatal("expected one match")
	}

	e.Apply(DocEnd{})
	typeText(t, e, "foo")
	if got := len(e.Matches()); got != 2 {
		t.Errorf("matches after edit = %d, want 2", got)
	}
}

func TestPageMovementUsesViewport(t *testing.T) {
	content := ""
	for i := 0; i < 99; i++ {
		content += "line\n"
	}
	content += "line"
	e := New(WithContent(content), WithLineHeight(20))

	// 10 lines per page.
	e.Apply(Scrolled{Offset: 0, ViewportW: 800, ViewportH: 200})
	e.Apply(PageDown{})
	if e.CursorPosition().Line != 10 {
		t.Errorf("after PageDown: line %d, want 10", e.CursorPosition().Line)
	}
	e.Apply(PageUp{})
	if e.CursorPosition().Line != 0 {
		t.Errorf("after PageUp: line %d, want 0", e.CursorPosition().Line)
	}
}

func TestScrolledDrivesWindow(t *testing.T) {
	e := New(WithLineHeight(20))
	gen := e.CacheGeneration()

	e.Apply(Scrolled{Offset: 0, ViewportW: 800, ViewportH: 400})
	if e.CacheGeneration() == gen {
		t.Error("first scroll did not establish a window")
	}
	if e.Window().Len() == 0 {
		t.Error("window still degenerate")
	}
}

func TestSetContentResetsEverything(t *testing.T) {
	e := New(WithContent("old"))
	typeText(t, e, "x")
	e.Apply(SearchQueryChanged{Query: "old"})

	e.SetContent("new content")
	if e.Content() != "new content" {
		t.Errorf("content = %q", e.Content())
	}
	if e.CanUndo() || e.CanRedo() {
		t.Error("history survived SetContent")
	}
	if e.CursorPosition() != (Position{}) {
		t.Errorf("cursor = %v", e.CursorPosition())
	}
}

func TestModifiedLifecycle(t *testing.T) {
	e := New(WithContent("doc"))
	if e.IsModified() {
		t.Error("fresh editor modified")
	}
	typeText(t, e, "x")
	if !e.IsModified() {
		t.Error("not modified after typing")
	}
	e.MarkSaved()
	if e.IsModified() {
		t.Error("modified after save")
	}
	e.Apply(Undo{})
	if !e.IsModified() {
		t.Error("not modified after undoing past save")
	}
}

func TestEditorIDsAreUnique(t *testing.T) {
	a, b := New(), New()
	if a.ID() == b.ID() {
		t.Error("two editors share an ID")
	}
}

func TestApplyTransform(t *testing.T) {
	e := New(WithContent("hello world"))
	e.Apply(MouseClick{Pos: buffer.Position{Line: 0, Col: 0}})
	e.Apply(MouseDrag{Pos: buffer.Position{Line: 0, Col: 5}})

	err := e.ApplyTransform("upcase", func(s string) (string, error) {
		return "HELLO", nil
	})
	if err != nil {
		t.Fatalf("ApplyTransform: %v", err)
	}
	if e.Content() != "HELLO world" {
		t.Errorf("content = %q", e.Content())
	}

	e.Apply(Undo{})
	if e.Content() != "hello world" {
		t.Errorf("after undo: %q", e.Content())
	}
}

func TestApplyTransformWholeDocument(t *testing.T) {
	e := New(WithContent("a\nb"))
	err := e.ApplyTransform("wrap", func(s string) (string, error) {
		return "[" + s + "]", nil
	})
	if err != nil {
		t.Fatalf("ApplyTransform: %v", err)
	}
	if e.Content() != "[a\nb]" {
		t.Errorf("content = %q", e.Content())
	}
}
