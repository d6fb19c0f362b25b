package shell

import (
	"bytes"
	"strings"
	"testing"
)

// newTestEditor builds an editor with the given capacity writing into a
// buffer, with no history unless one is supplied.
func newTestEditor(capacity int, hist *History) (*Editor, *bytes.Buffer) {
	var out bytes.Buffer
	return NewEditor(&out, capacity, hist, nil), &out
}

// feed pushes every byte of s through the editor and returns the last
// finalized line (if any).
func feed(e *Editor, s string) (line string, done bool) {
	for i := 0; i < len(s); i++ {
		if l, d := e.Feed(s[i]); d {
			line, done = l, d
		}
	}
	return line, done
}

func TestEditor_InsertEcho(t *testing.T) {
	e, out := newTestEditor(16, nil)

	feed(e, "abc")

	if got := e.Line(); got != "abc" {
		t.Errorf("Line() = %q, want %q", got, "abc")
	}
	if e.Cursor() != 3 || e.Len() != 3 {
		t.Errorf("cursor/end = %d/%d, want 3/3", e.Cursor(), e.Len())
	}
	if out.String() != "abc" {
		t.Errorf("echo = %q, want %q", out.String(), "abc")
	}
}

func TestEditor_Finalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lf", "hello\n", "hello"},
		{"cr", "hello\r", "hello"},
		{"crlf", "hello\r\n", "hello"},
		{"empty-lf", "\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEditor(16, nil)
			line, done := feed(e, tt.input)
			if !done {
				t.Fatal("line was not finalized")
			}
			if line != tt.want {
				t.Errorf("line = %q, want %q", line, tt.want)
			}
			if e.Cursor() != 0 || e.Len() != 0 {
				t.Errorf("cursor/end after finalize = %d/%d, want 0/0", e.Cursor(), e.Len())
			}
		})
	}
}

// A CRLF pair must finalize exactly one line, but a LF on its own line
// after an earlier CR line still counts.
func TestEditor_CRLFSingleFinalize(t *testing.T) {
	e, _ := newTestEditor(16, nil)

	finals := 0
	for _, b := range []byte("a\r\nb\n") {
		if _, done := e.Feed(b); done {
			finals++
		}
	}
	if finals != 2 {
		t.Errorf("finalized %d lines, want 2", finals)
	}
}

func TestEditor_MidlineInsert(t *testing.T) {
	e, out := newTestEditor(16, nil)

	feed(e, "ab")
	feed(e, "\x1b[D") // left
	out.Reset()
	feed(e, "X")

	if got := e.Line(); got != "aXb" {
		t.Errorf("Line() = %q, want %q", got, "aXb")
	}
	if e.Cursor() != 2 {
		t.Errorf("cursor = %d, want 2", e.Cursor())
	}
	// The changed tail is reprinted and the cursor stepped back over it.
	if got, want := out.String(), "Xb"+seqLeft; got != want {
		t.Errorf("redraw = %q, want %q", got, want)
	}
}

func TestEditor_Backspace(t *testing.T) {
	e, out := newTestEditor(16, nil)

	feed(e, "ab")
	out.Reset()
	feed(e, "\x7f")

	if got := e.Line(); got != "a" {
		t.Errorf("Line() = %q, want %q", got, "a")
	}
	if got, want := out.String(), seqLeft+" "+seqLeft; got != want {
		t.Errorf("redraw = %q, want %q", got, want)
	}
}

func TestEditor_BackspaceMidline(t *testing.T) {
	e, _ := newTestEditor(16, nil)

	feed(e, "abc")
	feed(e, "\x1b[D") // cursor between b and c
	feed(e, "\x7f")

	if got := e.Line(); got != "ac" {
		t.Errorf("Line() = %q, want %q", got, "ac")
	}
	if e.Cursor() != 1 {
		t.Errorf("cursor = %d, want 1", e.Cursor())
	}
}

func TestEditor_BackspaceAtStart(t *testing.T) {
	e, out := newTestEditor(16, nil)

	feed(e, "\x7f")

	if e.Len() != 0 || e.Cursor() != 0 {
		t.Errorf("cursor/end = %d/%d, want 0/0", e.Cursor(), e.Len())
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestEditor_DeleteAtCursor(t *testing.T) {
	e, _ := newTestEditor(16, nil)

	feed(e, "abc")
	feed(e, "\x1bOH")  // home
	feed(e, "\x1b[3~") // delete

	if got := e.Line(); got != "bc" {
		t.Errorf("Line() = %q, want %q", got, "bc")
	}
	if e.Cursor() != 0 {
		t.Errorf("cursor = %d, want 0", e.Cursor())
	}
}

func TestEditor_DeleteAtEnd(t *testing.T) {
	e, out := newTestEditor(16, nil)

	feed(e, "ab")
	out.Reset()
	feed(e, "\x1b[3~")

	if got := e.Line(); got != "ab" {
		t.Errorf("Line() = %q, want %q", got, "ab")
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestEditor_ArrowBounds(t *testing.T) {
	e, out := newTestEditor(16, nil)

	feed(e, "\x1b[D") // left on empty line
	if e.Cursor() != 0 || out.Len() != 0 {
		t.Errorf("left at start moved cursor or wrote %q", out.String())
	}

	feed(e, "ab")
	out.Reset()
	feed(e, "\x1b[C") // right at end
	if e.Cursor() != 2 || out.Len() != 0 {
		t.Errorf("right at end moved cursor or wrote %q", out.String())
	}
}

func TestEditor_HomeEnd(t *testing.T) {
	e, out := newTestEditor(16, nil)

	feed(e, "abc")
	out.Reset()
	feed(e, "\x1bOH")
	if e.Cursor() != 0 {
		t.Errorf("cursor after home = %d, want 0", e.Cursor())
	}
	if got, want := out.String(), strings.Repeat(seqLeft, 3); got != want {
		t.Errorf("home redraw = %q, want %q", got, want)
	}

	out.Reset()
	feed(e, "\x1bOF")
	if e.Cursor() != 3 {
		t.Errorf("cursor after end = %d, want 3", e.Cursor())
	}
	if got, want := out.String(), strings.Repeat(seqRight, 3); got != want {
		t.Errorf("end redraw = %q, want %q", got, want)
	}
}

// Bytes that do not complete a recognised escape sequence are dropped
// on the floor and never reach the buffer.
func TestEditor_MalformedEscapeDiscarded(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bad-introducer", "\x1bx"},
		{"bad-bracket-final", "\x1b[Z"},
		{"bad-bracket3-final", "\x1b[3x"},
		{"bad-o-final", "\x1bOQ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEditor(16, nil)
			feed(e, tt.input)
			if e.Len() != 0 {
				t.Errorf("buffer = %q, want empty", e.Line())
			}

			// The decoder must be back in its normal state.
			feed(e, "ok")
			if got := e.Line(); got != "ok" {
				t.Errorf("Line() after recovery = %q, want %q", got, "ok")
			}
		})
	}
}

// When the line buffer fills up, the pending input is dropped and the
// overflowing byte starts a fresh line.
func TestEditor_OverflowResets(t *testing.T) {
	e, _ := newTestEditor(4, nil) // 3 usable slots

	feed(e, "abc")
	if e.Len() != 3 {
		t.Fatalf("end = %d, want 3", e.Len())
	}

	feed(e, "d")
	if got := e.Line(); got != "d" {
		t.Errorf("Line() = %q, want %q", got, "d")
	}
	if e.Cursor() != 1 || e.Len() != 1 {
		t.Errorf("cursor/end = %d/%d, want 1/1", e.Cursor(), e.Len())
	}
}

func TestEditor_HistoryRecall(t *testing.T) {
	hist := NewHistory(4)
	hist.Save("one")
	hist.Save("two")
	e, _ := newTestEditor(16, hist)

	up := func() { feed(e, "\x1b[A") }

	// The first steps land on slots that were never written; the index
	// still advances but the line is left alone.
	up()
	if e.HistoryIndex() != 3 || e.Len() != 0 {
		t.Fatalf("after 1 up: idx=%d line=%q", e.HistoryIndex(), e.Line())
	}
	up()
	if e.HistoryIndex() != 2 || e.Len() != 0 {
		t.Fatalf("after 2 up: idx=%d line=%q", e.HistoryIndex(), e.Line())
	}

	up()
	if got := e.Line(); got != "two" {
		t.Errorf("after 3 up: Line() = %q, want %q", got, "two")
	}
	up()
	if got := e.Line(); got != "one" {
		t.Errorf("after 4 up: Line() = %q, want %q", got, "one")
	}

	// Down always abandons the selection.
	feed(e, "\x1b[B")
	if e.HistoryIndex() != -1 || e.Len() != 0 {
		t.Errorf("after down: idx=%d line=%q", e.HistoryIndex(), e.Line())
	}
}

// A recalled entry longer than the buffer is truncated to fit.
func TestEditor_HistoryRecallTruncated(t *testing.T) {
	hist := NewHistory(1)
	hist.Save("longline")
	e, _ := newTestEditor(4, hist)

	feed(e, "\x1b[A")
	if got := e.Line(); got != "lon" {
		t.Errorf("Line() = %q, want %q", got, "lon")
	}
	if e.Cursor() != 3 || e.Len() != 3 {
		t.Errorf("cursor/end = %d/%d, want 3/3", e.Cursor(), e.Len())
	}
}

// A recalled entry replaces whatever was being typed.
func TestEditor_HistoryReplacesPending(t *testing.T) {
	hist := NewHistory(1)
	hist.Save("saved")
	e, _ := newTestEditor(16, hist)

	feed(e, "typing")
	feed(e, "\x1b[A")
	if got := e.Line(); got != "saved" {
		t.Errorf("Line() = %q, want %q", got, "saved")
	}
}

// Stepping onto a slot the ring has not filled yet must not discard
// what is being typed; only an out-of-range selection clears the line.
func TestEditor_HistoryUpKeepsPendingLine(t *testing.T) {
	hist := NewHistory(4)
	hist.Save("one")
	e, out := newTestEditor(16, hist)

	feed(e, "abc")
	out.Reset()
	feed(e, "\x1b[A") // index -1 wraps to 3, an unwritten slot

	if e.HistoryIndex() != 3 {
		t.Errorf("HistoryIndex() = %d, want 3", e.HistoryIndex())
	}
	if got := e.Line(); got != "abc" {
		t.Errorf("Line() = %q, want %q", got, "abc")
	}
	if e.Cursor() != 3 || out.Len() != 0 {
		t.Errorf("cursor=%d output=%q, want untouched line", e.Cursor(), out.String())
	}

	// Down leaves the ring (index -1) and clears the pending line.
	feed(e, "\x1b[B")
	if e.HistoryIndex() != -1 || e.Len() != 0 {
		t.Errorf("after down: idx=%d line=%q", e.HistoryIndex(), e.Line())
	}
}

func TestEditor_UpWithoutHistory(t *testing.T) {
	e, _ := newTestEditor(16, nil)

	feed(e, "abc")
	feed(e, "\x1b[A")
	if got := e.Line(); got != "abc" {
		t.Errorf("Line() = %q, want %q", got, "abc")
	}
}

func TestEditor_Reprompt(t *testing.T) {
	e, out := newTestEditor(16, nil)

	feed(e, "ab")
	out.Reset()
	e.Reprompt(true)

	if got, want := out.String(), "\r\n> ab"; got != want {
		t.Errorf("reprompt = %q, want %q", got, want)
	}

	out.Reset()
	e.Reprompt(false)
	if got, want := out.String(), "\r> ab"; got != want {
		t.Errorf("reprompt = %q, want %q", got, want)
	}
}

func TestEditor_ControlBytesIgnored(t *testing.T) {
	e, _ := newTestEditor(16, nil)

	feed(e, "a\x01\x02b")
	if got := e.Line(); got != "ab" {
		t.Errorf("Line() = %q, want %q", got, "ab")
	}
}

func TestNewEditor_MinimumCapacity(t *testing.T) {
	e, _ := newTestEditor(0, nil)

	// Capacity is clamped to 2, leaving one usable slot.
	feed(e, "a")
	if got := e.Line(); got != "a" {
		t.Errorf("Line() = %q, want %q", got, "a")
	}
	feed(e, "b")
	if got := e.Line(); got != "b" {
		t.Errorf("Line() after overflow = %q, want %q", got, "b")
	}
}
