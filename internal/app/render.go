package app

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/quillforge/quill/internal/engine"
)

var (
	styleText    = tcell.StyleDefault
	styleGutter  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleSelect  = tcell.StyleDefault.Reverse(true)
	styleMatch   = tcell.StyleDefault.Background(tcell.ColorDarkGoldenrod).Foreground(tcell.ColorBlack)
	styleCurrent = tcell.StyleDefault.Background(tcell.ColorOrange).Foreground(tcell.ColorBlack)
	styleBar     = tcell.StyleDefault.Reverse(true)
)

// cell is one drawable unit of a shaped line: a grapheme cluster (or an
// expanded tab) with its measured terminal width and the character column
// it starts at.
type cell struct {
	str   string
	width int
	col   int
	runes int
}

// shapeLine segments a line into grapheme clusters and measures each one.
// Tabs expand to the next tab stop, so their width depends on everything
// drawn before them.
func shapeLine(line string, tabWidth int) []cell {
	var out []cell
	col, x := 0, 0

	gr := uniseg.NewGraphemes(line)
	for gr.Next() {
		str := gr.Str()
		runes := len(gr.Runes())

		var w int
		if str == "\t" {
			w = tabWidth - x%tabWidth
			str = strings.Repeat(" ", w)
		} else {
			w = runewidth.StringWidth(str)
			if w < 1 {
				w = 1
			}
		}
		out = append(out, cell{str: str, width: w, col: col, runes: runes})
		col += runes
		x += w
	}
	return out
}

// shaped returns the shaped form of a line, cached while the line stays
// inside the engine's render window.
func (p *pane) shaped(lineNo int) []cell {
	gen, rev := p.ed.CacheGeneration(), p.ed.Revision()
	if gen != p.cacheGen || rev != p.cacheRev {
		p.cache = make(map[int][]cell)
		p.cacheGen, p.cacheRev = gen, rev
	}
	if cells, ok := p.cache[lineNo]; ok {
		return cells
	}
	cells := shapeLine(p.ed.Line(lineNo), p.ed.TabWidth())
	if p.ed.Window().Contains(lineNo) {
		p.cache[lineNo] = cells
	}
	return cells
}

// displayToCol maps a terminal x offset within a line's text area to a
// character column, used for mouse positioning.
func displayToCol(line string, x, tabWidth int) int {
	if x < 0 {
		return 0
	}
	pos := 0
	for _, c := range shapeLine(line, tabWidth) {
		if x < pos+c.width {
			return c.col
		}
		pos += c.width
	}
	return colPastEnd(line)
}

// colPastEnd returns the character length of line, the column one past its
// last character.
func colPastEnd(line string) int {
	n := 0
	for range line {
		n++
	}
	return n
}

// colToX returns the terminal x offset of a character column.
func colToX(cells []cell, col int) int {
	x := 0
	for _, c := range cells {
		if c.col >= col {
			break
		}
		x += c.width
	}
	return x
}

// gutterWidth is the line-number column width, sized to the document.
func (a *App) gutterWidth() int {
	digits := 1
	for n := a.focused().ed.LineCount(); n >= 10; n /= 10 {
		digits++
	}
	if digits < 3 {
		digits = 3
	}
	return digits + 2
}

func (a *App) draw() {
	s := a.screen
	s.Fill(' ', styleText)

	p := a.focused()
	ed := p.ed
	rows := a.textRows()
	gutter := a.gutterWidth()

	selStart, selEnd, hasSel := ed.Selection()
	matches := ed.Matches()
	queryLen := len([]rune(ed.SearchQuery()))
	currentIdx := ed.CurrentMatchIndex()

	for row := 0; row < rows; row++ {
		lineNo := p.scrollTop + row
		if lineNo >= ed.LineCount() {
			break
		}

		num := fmt.Sprintf("%*d ", gutter-1, lineNo+1)
		drawText(s, 0, row, num, styleGutter)

		x := gutter
		for _, c := range p.shaped(lineNo) {
			if x >= a.width {
				break
			}
			style := styleText
			switch {
			case hasSel && inRange(lineNo, c.col, selStart, selEnd):
				style = styleSelect
			case inMatch(lineNo, c.col, matches, queryLen, currentIdx, true):
				style = styleCurrent
			case inMatch(lineNo, c.col, matches, queryLen, currentIdx, false):
				style = styleMatch
			}
			drawCell(s, x, row, c, style)
			x += c.width
		}
	}

	if ed.SearchOpen() {
		a.drawSearchBar(rows)
	}
	a.drawStatusBar()
	a.placeCursor(rows, gutter)
	s.Show()
}

// inRange reports whether character (line, col) lies in [start, end).
func inRange(line, col int, start, end engine.Position) bool {
	p := engine.Position{Line: line, Col: col}
	return !p.Before(start) && p.Before(end)
}

// inMatch reports whether character (line, col) lies inside a search match.
// Matches are single-line spans of queryLen characters.
func inMatch(line, col int, matches []engine.Match, queryLen int, currentIdx int, wantCurrent bool) bool {
	for i, m := range matches {
		if (i == currentIdx) != wantCurrent {
			continue
		}
		if m.Line == line && col >= m.Col && col < m.Col+queryLen {
			return true
		}
	}
	return false
}

func (a *App) drawSearchBar(row int) {
	p := a.focused()
	ed := p.ed

	caseLabel := "aa"
	if ed.CaseSensitive() {
		caseLabel = "Aa"
	}
	count := ""
	if ed.SearchQuery() != "" {
		count = fmt.Sprintf(" %d/%d", ed.CurrentMatchIndex()+1, len(ed.Matches()))
	}

	var b strings.Builder
	fmt.Fprintf(&b, " Find: %s", ed.SearchQuery())
	if ed.ReplaceOpen() {
		fmt.Fprintf(&b, "  Replace: %s", p.replaceDraft)
	}
	fmt.Fprintf(&b, "  [%s]%s", caseLabel, count)

	line := b.String()
	if w := runewidth.StringWidth(line); w < a.width {
		line += strings.Repeat(" ", a.width-w)
	}
	drawText(a.screen, 0, row, line, styleBar)
}

func (a *App) drawStatusBar() {
	p := a.focused()
	ed := p.ed

	name := p.path
	if name == "" {
		name = "[No Name]"
	}
	modified := ""
	if ed.IsModified() {
		modified = " *"
	}
	pos := ed.CursorPosition()

	left := fmt.Sprintf(" %s%s", name, modified)
	right := fmt.Sprintf("pane %d/%d | Ln %d, Col %d ", a.focus+1, len(a.panes), pos.Line+1, pos.Col+1)

	pad := a.width - runewidth.StringWidth(left) - runewidth.StringWidth(right)
	if pad < 1 {
		pad = 1
	}
	drawText(a.screen, 0, a.height-1, left+strings.Repeat(" ", pad)+right, styleBar)
}

// placeCursor positions the hardware cursor: in the text area normally, in
// the search bar while a query field has focus.
func (a *App) placeCursor(rows, gutter int) {
	p := a.focused()

	if p.field != fieldNone {
		x := runewidth.StringWidth(" Find: " + p.ed.SearchQuery())
		if p.field == fieldReplace {
			x = runewidth.StringWidth(fmt.Sprintf(" Find: %s  Replace: %s", p.ed.SearchQuery(), p.replaceDraft))
		}
		a.screen.ShowCursor(x, rows)
		return
	}

	cur := p.ed.CursorPosition()
	row := cur.Line - p.scrollTop
	if row < 0 || row >= rows {
		a.screen.HideCursor()
		return
	}
	x := gutter + colToX(p.shaped(cur.Line), cur.Col)
	if x >= a.width {
		x = a.width - 1
	}
	a.screen.ShowCursor(x, row)
}

// drawCell paints one grapheme cluster (or expanded tab).
func drawCell(s tcell.Screen, x, y int, c cell, style tcell.Style) {
	r := []rune(c.str)
	switch {
	case len(r) == 0:
	case len(r) == c.runes && len(r) > 1:
		// Real multi-rune cluster: main rune plus combining runes.
		s.SetContent(x, y, r[0], r[1:], style)
	default:
		// Single rune, or an expanded tab's run of spaces.
		pos := x
		for _, rn := range r {
			s.SetContent(pos, y, rn, nil, style)
			pos += runewidth.RuneWidth(rn)
		}
	}
}

func drawText(s tcell.Screen, x, y int, text string, style tcell.Style) {
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		r := gr.Runes()
		s.SetContent(x, y, r[0], r[1:], style)
		x += runewidth.StringWidth(gr.Str())
	}
}
