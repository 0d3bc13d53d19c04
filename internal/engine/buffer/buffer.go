package buffer

import (
	"io"
	"strings"
	"unicode/utf8"
)

// Buffer holds the document as lines of Unicode text. It always contains
// at least one line, even when the document is empty.
type Buffer struct {
	lines    []string
	revision uint64
}

// New creates an empty buffer holding a single empty line.
func New() *Buffer {
	return &Buffer{lines: []string{""}}
}

// FromString creates a buffer with initial content. Line endings are
// normalized to LF; the final newline, if any, does not produce a
// trailing empty line beyond what strings.Split yields.
func FromString(s string) *Buffer {
	b := New()
	b.setContent(s)
	return b
}

// FromReader creates a buffer from an io.Reader.
func FromReader(r io.Reader) (*Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return FromString(string(data)), nil
}

// normalizeLineEndings converts CRLF and bare CR to LF.
func normalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func (b *Buffer) setContent(s string) {
	if s == "" {
		b.lines = []string{""}
	} else {
		b.lines = strings.Split(normalizeLineEndings(s), "\n")
	}
	b.revision++
}

// Reset replaces the entire document content. Used by the persistence
// collaborator when a file is loaded or reverted.
func (b *Buffer) Reset(s string) {
	b.setContent(s)
}

// Read Operations

// LineCount returns the number of lines. Always at least 1.
func (b *Buffer) LineCount() int {
	return len(b.lines)
}

// Line returns the text of line i without its newline, or the empty
// string if i is out of range.
func (b *Buffer) Line(i int) string {
	if i < 0 || i >= len(b.lines) {
		return ""
	}
	return b.lines[i]
}

// LineLen returns the character count of line i, or 0 if i is out of
// range. Characters are Unicode scalar values, so a multi-byte rune
// counts as one.
func (b *Buffer) LineLen(i int) int {
	if i < 0 || i >= len(b.lines) {
		return 0
	}
	return utf8.RuneCountInString(b.lines[i])
}

// RuneAt returns the rune at character offset col of line, and whether
// such a rune exists.
func (b *Buffer) RuneAt(line, col int) (rune, bool) {
	if line < 0 || line >= len(b.lines) || col < 0 {
		return 0, false
	}
	s := b.lines[line]
	start := charToByte(s, col)
	if start >= len(s) {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s[start:])
	return r, true
}

// TextRange returns the text between start and end in document order,
// with lines joined by \n. The caller is responsible for normalizing the
// range so start does not follow end. Out-of-range positions are clamped.
func (b *Buffer) TextRange(start, end Position) string {
	if start.Compare(end) >= 0 {
		return ""
	}
	if start.Line == end.Line {
		line := b.Line(start.Line)
		return line[charToByte(line, start.Col):charToByte(line, end.Col)]
	}

	var sb strings.Builder
	first := b.Line(start.Line)
	sb.WriteString(first[charToByte(first, start.Col):])
	for i := start.Line + 1; i < end.Line; i++ {
		sb.WriteByte('\n')
		sb.WriteString(b.Line(i))
	}
	sb.WriteByte('\n')
	last := b.Line(end.Line)
	sb.WriteString(last[:charToByte(last, end.Col)])
	return sb.String()
}

// String returns the full document, lines joined with \n and no trailing
// newline.
func (b *Buffer) String() string {
	return strings.Join(b.lines, "\n")
}

// Revision returns a counter that increases on every mutation. Consumers
// such as the search engine use it to detect stale derived state.
func (b *Buffer) Revision() uint64 {
	return b.revision
}

// Write Operations

// InsertChar inserts one character at character offset col of line.
// No-op if line is out of range; col is clamped to the line length.
func (b *Buffer) InsertChar(line, col int, ch rune) {
	if line < 0 || line >= len(b.lines) {
		return
	}
	s := b.lines[line]
	pos := charToByte(s, col)
	b.lines[line] = s[:pos] + string(ch) + s[pos:]
	b.revision++
}

// InsertNewline splits line at character offset col; the tail becomes a
// new line immediately after. No-op if line is out of range.
func (b *Buffer) InsertNewline(line, col int) {
	if line < 0 || line >= len(b.lines) {
		return
	}
	s := b.lines[line]
	pos := charToByte(s, col)
	left, right := s[:pos], s[pos:]

	b.lines = append(b.lines, "")
	copy(b.lines[line+2:], b.lines[line+1:])
	b.lines[line] = left
	b.lines[line+1] = right
	b.revision++
}

// DeleteChar removes the character immediately before col (backspace
// semantics). When col is 0 and a previous line exists, the line is
// merged into the end of the previous one instead. The returned bool
// reports whether a merge occurred, signaling the caller to move the
// cursor to the merge point rather than just decrementing the column.
func (b *Buffer) DeleteChar(line, col int) bool {
	if col > 0 {
		if line >= 0 && line < len(b.lines) {
			s := b.lines[line]
			end := charToByte(s, col)
			if end > 0 {
				start := charToByte(s, col-1)
				b.lines[line] = s[:start] + s[end:]
				b.revision++
			}
		}
		return false
	}
	if line > 0 && line < len(b.lines) {
		merged := b.lines[line]
		b.lines = append(b.lines[:line], b.lines[line+1:]...)
		b.lines[line-1] += merged
		b.revision++
		return true
	}
	return false
}

// DeleteForward removes the character at col (delete-key semantics). If
// col is at or past the end of the line and a next line exists, the next
// line is merged into this one. No-op if line is out of range.
func (b *Buffer) DeleteForward(line, col int) {
	if line < 0 || line >= len(b.lines) {
		return
	}
	s := b.lines[line]
	if col < utf8.RuneCountInString(s) {
		start := charToByte(s, col)
		end := charToByte(s, col+1)
		b.lines[line] = s[:start] + s[end:]
		b.revision++
	} else if line+1 < len(b.lines) {
		b.lines[line] += b.lines[line+1]
		b.lines = append(b.lines[:line+1], b.lines[line+2:]...)
		b.revision++
	}
}

// ReplaceRange removes length characters starting at character offset
// colStart on line and inserts newText in place. Single-line only:
// multi-line replacement is composed by callers from delete and insert
// sequences. No-op if line is out of range.
func (b *Buffer) ReplaceRange(line, colStart, length int, newText string) {
	if line < 0 || line >= len(b.lines) {
		return
	}
	s := b.lines[line]
	start := charToByte(s, colStart)
	end := charToByte(s, colStart+length)
	b.lines[line] = s[:start] + newText + s[end:]
	b.revision++
}

// charToByte locates the byte offset of the character at index charIdx,
// or len(s) if the index is at or past the end of the string.
func charToByte(s string, charIdx int) int {
	if charIdx <= 0 {
		return 0
	}
	n := 0
	for i := range s {
		if n == charIdx {
			return i
		}
		n++
	}
	return len(s)
}
