package app

import (
	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"

	"github.com/quillforge/quill/internal/engine"
)

// systemClipboard adapts the OS clipboard to the engine's collaborator
// interface. Reads happen host-side and are delivered as Paste intents.
type systemClipboard struct{}

func (systemClipboard) WriteText(text string) error {
	return clipboard.WriteAll(text)
}

func (a *App) handleKey(ev *tcell.EventKey) error {
	p := a.focused()
	if p.field != fieldNone {
		a.handleSearchKey(ev)
		return nil
	}

	ed := p.ed
	shift := ev.Modifiers()&tcell.ModShift != 0
	ctrl := ev.Modifiers()&tcell.ModCtrl != 0

	switch ev.Key() {
	case tcell.KeyCtrlQ:
		return ErrQuit
	case tcell.KeyCtrlS:
		a.save()
		return nil
	case tcell.KeyCtrlO:
		a.nextPane()
		return nil

	case tcell.KeyCtrlZ:
		a.report(ed.Apply(engine.Undo{}))
	case tcell.KeyCtrlY:
		a.report(ed.Apply(engine.Redo{}))

	case tcell.KeyCtrlC:
		a.report(ed.Apply(engine.Copy{}))
		return nil
	case tcell.KeyCtrlX:
		if err := ed.Apply(engine.Copy{}); err == nil {
			a.report(ed.Apply(engine.Backspace{}))
		}
	case tcell.KeyCtrlV:
		text, err := clipboard.ReadAll()
		if err != nil {
			a.log.Warn("clipboard read failed", "error", err)
			return nil
		}
		a.report(ed.Apply(engine.Paste{Text: text}))

	case tcell.KeyCtrlF:
		ed.Apply(engine.OpenSearch{})
		p.field = fieldQuery
		a.syncViewport()
		return nil
	case tcell.KeyCtrlU:
		ed.Apply(engine.OpenReplace{})
		p.field = fieldQuery
		a.syncViewport()
		return nil
	case tcell.KeyF3:
		if shift {
			ed.Apply(engine.FindPrevious{})
		} else {
			ed.Apply(engine.FindNext{})
		}

	case tcell.KeyF5, tcell.KeyF6, tcell.KeyF7, tcell.KeyF8:
		a.runTransform(int(ev.Key() - tcell.KeyF5))
		return nil

	case tcell.KeyUp:
		ed.Apply(engine.ArrowMove{Dir: engine.Up, Extend: shift})
	case tcell.KeyDown:
		ed.Apply(engine.ArrowMove{Dir: engine.Down, Extend: shift})
	case tcell.KeyLeft:
		ed.Apply(engine.ArrowMove{Dir: engine.Left, Extend: shift})
	case tcell.KeyRight:
		ed.Apply(engine.ArrowMove{Dir: engine.Right, Extend: shift})
	case tcell.KeyHome:
		if ctrl {
			ed.Apply(engine.DocHome{Extend: shift})
		} else {
			ed.Apply(engine.LineHome{Extend: shift})
		}
	case tcell.KeyEnd:
		if ctrl {
			ed.Apply(engine.DocEnd{Extend: shift})
		} else {
			ed.Apply(engine.LineEnd{Extend: shift})
		}
	case tcell.KeyPgUp:
		ed.Apply(engine.PageUp{Extend: shift})
	case tcell.KeyPgDn:
		ed.Apply(engine.PageDown{Extend: shift})

	case tcell.KeyEnter:
		a.report(ed.Apply(engine.Enter{}))
	case tcell.KeyTab:
		a.report(ed.Apply(engine.Tab{}))
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		a.report(ed.Apply(engine.Backspace{}))
	case tcell.KeyDelete:
		a.report(ed.Apply(engine.Delete{}))
	case tcell.KeyEscape:
		ed.Apply(engine.CloseSearch{})
		a.syncViewport()
		return nil

	case tcell.KeyRune:
		a.report(ed.Apply(engine.CharacterInput{Ch: ev.Rune()}))

	default:
		return nil
	}

	a.ensureCursorVisible()
	return nil
}

// handleSearchKey edits the query or replace field.
func (a *App) handleSearchKey(ev *tcell.EventKey) {
	p := a.focused()
	ed := p.ed

	switch ev.Key() {
	case tcell.KeyEscape:
		ed.Apply(engine.CloseSearch{})
		p.field = fieldNone
		a.syncViewport()

	case tcell.KeyTab:
		if ed.ReplaceOpen() {
			if p.field == fieldQuery {
				p.field = fieldReplace
			} else {
				p.field = fieldQuery
			}
		}

	case tcell.KeyEnter:
		if ev.Modifiers()&tcell.ModShift != 0 {
			ed.Apply(engine.FindPrevious{})
		} else {
			ed.Apply(engine.FindNext{})
		}
		a.ensureCursorVisible()

	case tcell.KeyCtrlT:
		ed.Apply(engine.ToggleCaseSensitive{})

	case tcell.KeyCtrlR:
		ed.Apply(engine.ReplaceNext{})
		a.ensureCursorVisible()
	case tcell.KeyCtrlL:
		ed.Apply(engine.ReplaceAll{})
		a.ensureCursorVisible()

	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if p.field == fieldQuery {
			ed.Apply(engine.SearchQueryChanged{Query: dropLastRune(ed.SearchQuery())})
		} else {
			p.replaceDraft = dropLastRune(p.replaceDraft)
			ed.Apply(engine.ReplaceTextChanged{Text: p.replaceDraft})
		}

	case tcell.KeyRune:
		if p.field == fieldQuery {
			ed.Apply(engine.SearchQueryChanged{Query: ed.SearchQuery() + string(ev.Rune())})
		} else {
			p.replaceDraft += string(ev.Rune())
			ed.Apply(engine.ReplaceTextChanged{Text: p.replaceDraft})
		}
	}
}

func dropLastRune(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}

func (a *App) handleMouse(ev *tcell.EventMouse) {
	p := a.focused()
	x, y := ev.Position()

	switch {
	case ev.Buttons()&tcell.WheelUp != 0:
		a.scrollBy(-3)
	case ev.Buttons()&tcell.WheelDown != 0:
		a.scrollBy(3)
	case ev.Buttons()&tcell.Button1 != 0:
		// Clicking the text area returns key focus to the buffer;
		// the search bar stays open.
		p.field = fieldNone
		pos := a.cellToPosition(x, y)
		if p.mouseDown {
			p.ed.Apply(engine.MouseDrag{Pos: pos})
		} else {
			p.ed.Apply(engine.MouseClick{Pos: pos})
			p.mouseDown = true
		}
	default:
		if p.mouseDown {
			p.ed.Apply(engine.MouseRelease{})
			p.mouseDown = false
		}
	}
}

// cellToPosition maps a screen cell to a buffer position.
func (a *App) cellToPosition(x, y int) engine.Position {
	p := a.focused()
	line := p.scrollTop + y
	if line < 0 {
		line = 0
	}
	if max := p.ed.LineCount() - 1; line > max {
		line = max
	}
	col := displayToCol(p.ed.Line(line), x-a.gutterWidth(), p.ed.TabWidth())
	return engine.Position{Line: line, Col: col}
}

// report logs intent errors that are not plain no-op conditions.
func (a *App) report(err error) {
	if err == nil {
		return
	}
	a.log.Debug("intent rejected", "error", err)
}
