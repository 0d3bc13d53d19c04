// Package search implements incremental find and replace over a buffer.
//
// Matching is plain-text, per line, non-overlapping, with optional
// case-insensitive comparison done rune by rune so match columns always
// line up with the buffer's character coordinates. Replacements go
// through the history package so they participate in undo/redo.
package search

import (
	"unicode"
	"unicode/utf8"

	"github.com/quillforge/quill/internal/engine/buffer"
	"github.com/quillforge/quill/internal/engine/cursor"
	"github.com/quillforge/quill/internal/engine/history"
)

// Match is the starting position of one query occurrence, in character
// coordinates.
type Match struct {
	Line int
	Col  int
}

// State holds the active query, its options, and the computed match set.
//
// The match set is a snapshot: it is recomputed on demand (UpdateMatches)
// and after every replacement, never incrementally patched.
type State struct {
	Query         string
	ReplaceWith   string
	CaseSensitive bool

	matches []Match
	current int // index into matches, -1 when none selected
}

// New creates an empty search state.
func New() *State {
	return &State{current: -1}
}

// Matches returns the current match set in document order.
func (s *State) Matches() []Match { return s.matches }

// Count returns the number of matches.
func (s *State) Count() int { return len(s.matches) }

// CurrentIndex returns the selected match index, or -1 when none.
func (s *State) CurrentIndex() int { return s.current }

// Current returns the selected match, if any.
func (s *State) Current() (Match, bool) {
	if s.current < 0 || s.current >= len(s.matches) {
		return Match{}, false
	}
	return s.matches[s.current], true
}

// QueryLen returns the query length in characters, which is also the
// span of every match.
func (s *State) QueryLen() int { return utf8.RuneCountInString(s.Query) }

// Clear resets the query and drops all matches.
func (s *State) Clear() {
	s.Query = ""
	s.ReplaceWith = ""
	s.matches = nil
	s.current = -1
}

// UpdateMatches recomputes the match set against buf, keeping the current
// selection index when it still points at a match. When matches exist and
// none was selected, the first match is selected.
func (s *State) UpdateMatches(buf *buffer.Buffer) {
	s.matches = findMatches(buf, s.Query, s.CaseSensitive)
	switch {
	case len(s.matches) == 0:
		s.current = -1
	case s.current < 0:
		s.current = 0
	case s.current >= len(s.matches):
		s.current = len(s.matches) - 1
	}
}

// findMatches scans every line for non-overlapping occurrences of query.
// An empty query matches nothing.
func findMatches(buf *buffer.Buffer, query string, caseSensitive bool) []Match {
	if query == "" {
		return nil
	}
	q := []rune(query)

	var out []Match
	for line := 0; line < buf.LineCount(); line++ {
		text := []rune(buf.Line(line))
		for col := 0; col+len(q) <= len(text); {
			if runesMatch(text[col:col+len(q)], q, caseSensitive) {
				out = append(out, Match{Line: line, Col: col})
				col += len(q)
			} else {
				col++
			}
		}
	}
	return out
}

func runesMatch(text, query []rune, caseSensitive bool) bool {
	for i := range query {
		if caseSensitive {
			if text[i] != query[i] {
				return false
			}
		} else if !foldEq(text[i], query[i]) {
			return false
		}
	}
	return true
}

// foldEq compares two runes ignoring case. Folding is per rune, so a
// match always spans exactly as many characters as the query.
func foldEq(a, b rune) bool {
	return a == b || unicode.ToLower(a) == unicode.ToLower(b)
}

// Next advances the selection to the following match, wrapping at the
// end. With no selection it picks the first match.
func (s *State) Next() (Match, bool) {
	if len(s.matches) == 0 {
		return Match{}, false
	}
	s.current = (s.current + 1) % len(s.matches)
	return s.matches[s.current], true
}

// Previous moves the selection to the preceding match, wrapping at the
// start. With no selection it picks the last match.
func (s *State) Previous() (Match, bool) {
	if len(s.matches) == 0 {
		return Match{}, false
	}
	if s.current <= 0 {
		s.current = len(s.matches) - 1
	} else {
		s.current--
	}
	return s.matches[s.current], true
}

// SelectNearest selects the match closest to pos, weighting line distance
// far above column distance. No-op when there are no matches.
func (s *State) SelectNearest(pos buffer.Position) {
	if len(s.matches) == 0 {
		return
	}
	best, bestDist := 0, -1
	for i, m := range s.matches {
		d := distance(m, pos)
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	s.current = best
}

func distance(m Match, pos buffer.Position) int {
	dl := m.Line - pos.Line
	if dl < 0 {
		dl = -dl
	}
	dc := m.Col - pos.Col
	if dc < 0 {
		dc = -dc
	}
	return dl*1000 + dc
}

// ReplaceCurrent replaces the selected match with ReplaceWith as one undo
// step, recomputes the match set, and selects the match nearest the
// replacement. Returns false when no match is selected.
func (s *State) ReplaceCurrent(buf *buffer.Buffer, cur *cursor.Cursor, h *history.History) bool {
	m, ok := s.Current()
	if !ok {
		return false
	}
	pos := buffer.Position{Line: m.Line, Col: m.Col}
	cmd := history.NewReplaceText(buf, pos, utf8.RuneCountInString(s.Query), s.ReplaceWith, cur.Position())
	h.Apply(cmd, buf, cur)

	s.UpdateMatches(buf)
	s.SelectNearest(pos)
	return true
}

// ReplaceAll replaces every match with ReplaceWith as a single undo step
// and returns the number of replacements. Matches are rewritten from the
// last toward the first so earlier match positions stay valid while the
// composite builds and executes.
func (s *State) ReplaceAll(buf *buffer.Buffer, cur *cursor.Cursor, h *history.History) int {
	if len(s.matches) == 0 {
		return 0
	}
	n := len(s.matches)
	qLen := utf8.RuneCountInString(s.Query)

	comp := history.NewComposite("replace all")
	for i := n - 1; i >= 0; i-- {
		m := s.matches[i]
		pos := buffer.Position{Line: m.Line, Col: m.Col}
		comp.Add(history.NewReplaceText(buf, pos, qLen, s.ReplaceWith, cur.Position()))
	}
	h.Apply(comp, buf, cur)

	s.UpdateMatches(buf)
	return n
}
