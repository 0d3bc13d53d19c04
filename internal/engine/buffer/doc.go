// Package buffer provides the document storage for the editor engine.
//
// A Buffer holds the document as an ordered sequence of lines without
// trailing newline characters. It is the only component that touches
// storage bytes: every public operation addresses text by (line, column)
// where column counts Unicode scalar values, and the byte arithmetic
// needed to honor UTF-8 boundaries is internal.
//
// The buffer is deliberately permissive: mutation against an out-of-range
// line is absorbed as a no-op rather than signaled. The caret feeding
// these calls is clamped by the cursor package after every mutation, so
// an out-of-range position here indicates a caller bug, not a runtime
// condition worth recovering from.
//
// A Buffer has exactly one mutator (the owning editor) and is used from a
// single goroutine; it carries no locks.
package buffer
