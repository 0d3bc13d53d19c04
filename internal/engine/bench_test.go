package engine

import (
	"strings"
	"testing"
)

func benchDocument(lines int) string {
	var b strings.Builder
	for i := 0; i < lines; i++ {
		b.WriteString("the quick brown fox jumps over the lazy dog\n")
	}
	return b.String()
}

func BenchmarkTyping(b *testing.B) {
	e := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Apply(CharacterInput{Ch: 'x'})
	}
}

func BenchmarkUndoRedo(b *testing.B) {
	e := New()
	for i := 0; i < 1000; i++ {
		e.Apply(CharacterInput{Ch: 'x'})
		e.Apply(ArrowMove{Dir: Right, Extend: false})
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Apply(Undo{})
		e.Apply(Redo{})
	}
}

func BenchmarkSearchLargeDocument(b *testing.B) {
	e := New(WithContent(benchDocument(5000)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Apply(SearchQueryChanged{Query: "fox"})
	}
}

func BenchmarkScrollInsideWindow(b *testing.B) {
	e := New(WithContent(benchDocument(5000)), WithLineHeight(20))
	e.Apply(Scrolled{Offset: 2000 * 20, ViewportW: 800, ViewportH: 400})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Apply(Scrolled{Offset: float64(2000+i%5) * 20, ViewportW: 800, ViewportH: 400})
	}
}
