package buffer

import "fmt"

// Position is a line and column address in the buffer.
// Both fields are 0-indexed. Col counts Unicode scalar values from the
// start of the line, never bytes.
type Position struct {
	Line int
	Col  int
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Col)
}

// Compare returns -1 if p precedes other in document order, 0 if they are
// equal, and 1 if p follows other.
func (p Position) Compare(other Position) int {
	if p.Line < other.Line {
		return -1
	}
	if p.Line > other.Line {
		return 1
	}
	if p.Col < other.Col {
		return -1
	}
	if p.Col > other.Col {
		return 1
	}
	return 0
}

// Before returns true if p precedes other in document order.
func (p Position) Before(other Position) bool {
	return p.Compare(other) < 0
}

// After returns true if p follows other in document order.
func (p Position) After(other Position) bool {
	return p.Compare(other) > 0
}
