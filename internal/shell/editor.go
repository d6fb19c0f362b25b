package shell

import "io"

// ANSI sequences emitted for cursor repositioning.  These are the
// standard terminal cursor-left / cursor-right codes.
const (
	seqLeft  = "\x1b[D"
	seqRight = "\x1b[C"
)

// Newline is the line terminator written to the client terminal.
const Newline = "\r\n"

// decodeState tracks progress through an ANSI escape sequence.
type decodeState int

const (
	stateNormal   decodeState = iota
	stateEsc                  // seen ESC
	stateBracket              // seen ESC [
	stateBracket3             // seen ESC [ 3
	stateO                    // seen ESC O
)

// Editor owns the editable input line for one session.  It consumes
// raw bytes one at a time and keeps the visible terminal state in sync
// with the buffer content and cursor position: every mutation is
// paired with the minimal redraw (reprint the changed tail, blank the
// removed column, reposition with cursor-left sequences).
//
// Escape decoding is an explicit state machine.  A byte that does not
// continue a recognised sequence is discarded and the decoder returns
// to the normal state, so malformed sequences never leak into the
// buffer.
type Editor struct {
	out    io.Writer
	prompt func() string

	buf    []byte // fixed capacity; slot len(buf)-1 is reserved
	cursor int
	end    int

	hist    *History
	histIdx int

	state  decodeState
	prevCR bool
}

// NewEditor returns an editor writing echo and control sequences to
// out.  capacity bounds the line length (one slot is reserved, minimum
// capacity 2).  prompt supplies the current prompt text for redraws;
// nil defaults to "> ".
func NewEditor(out io.Writer, capacity int, hist *History, prompt func() string) *Editor {
	if capacity < 2 {
		capacity = 2
	}
	if prompt == nil {
		prompt = func() string { return "> " }
	}
	return &Editor{
		out:     out,
		prompt:  prompt,
		buf:     make([]byte, capacity),
		hist:    hist,
		histIdx: -1,
	}
}

// Cursor returns the current cursor index.
func (e *Editor) Cursor() int { return e.cursor }

// Len returns the current end-of-input index.
func (e *Editor) Len() int { return e.end }

// Line returns the current buffer content.
func (e *Editor) Line() string { return string(e.buf[:e.end]) }

// HistoryIndex returns the history selection (-1 means none).
func (e *Editor) HistoryIndex() int { return e.histIdx }

// Feed consumes one raw input byte.  When the byte finalizes the
// current line, the completed line is returned with done=true and the
// cursor and end-of-input reset to zero.  The caller is expected to
// dispatch the line and then call Reprompt.
func (e *Editor) Feed(b byte) (line string, done bool) {
	switch e.state {
	case stateEsc:
		switch b {
		case '[':
			e.state = stateBracket
		case 'O':
			e.state = stateO
		default:
			// Unrecognised introducer: discard the byte.
			e.state = stateNormal
		}
		return "", false

	case stateBracket:
		e.state = stateNormal
		switch b {
		case '3':
			e.state = stateBracket3
		case 'A':
			e.histUp()
		case 'B':
			e.histDown()
		case 'C':
			e.right()
		case 'D':
			e.left()
		}
		return "", false

	case stateBracket3:
		e.state = stateNormal
		if b == '~' {
			e.deleteAtCursor()
		}
		return "", false

	case stateO:
		e.state = stateNormal
		switch b {
		case 'H':
			e.home()
		case 'F':
			e.endOfLine()
		}
		return "", false
	}

	// A LF directly after a CR belongs to the same line ending.
	if b == '\n' && e.prevCR {
		e.prevCR = false
		return "", false
	}
	e.prevCR = b == '\r'

	switch {
	case b == 0x1b:
		e.state = stateEsc
	case b == '\n' || b == '\r':
		line = string(e.buf[:e.end])
		e.cursor, e.end = 0, 0
		return line, true
	case b == 0x7f:
		e.backspace()
	case b >= ' ':
		e.insert(b)
	}
	return "", false
}

// Reprompt redraws the prompt from the start of the line, optionally
// moving to a fresh line first, followed by the current buffer content.
func (e *Editor) Reprompt(newline bool) {
	s := "\r"
	if newline {
		s += "\n"
	}
	e.writeString(s + e.prompt())
	e.write(e.buf[:e.end])
}

// ── editing primitives ───────────────────────────────────────────────

// insert places b at the cursor, shifting the tail right.  When the
// buffer is full the pending line is dropped and input restarts with
// just this byte.
func (e *Editor) insert(b byte) {
	if e.end < len(e.buf)-1 {
		copy(e.buf[e.cursor+1:e.end+1], e.buf[e.cursor:e.end])
		e.buf[e.cursor] = b
		e.cursor++
		e.end++
	} else {
		e.buf[0] = b
		e.cursor, e.end = 1, 1
	}

	e.write(e.buf[e.cursor-1 : e.end])
	e.stepBack(e.end - e.cursor)
}

// backspace removes the character left of the cursor.
func (e *Editor) backspace() {
	if e.cursor == 0 {
		return
	}
	e.cursor--
	e.end--
	copy(e.buf[e.cursor:e.end], e.buf[e.cursor+1:e.end+1])

	e.writeString(seqLeft)
	e.write(e.buf[e.cursor:e.end])
	e.writeString(" ")
	e.stepBack(e.end - e.cursor + 1)
}

// deleteAtCursor removes the character under the cursor.
func (e *Editor) deleteAtCursor() {
	if e.cursor >= e.end {
		return
	}
	e.end--
	copy(e.buf[e.cursor:e.end], e.buf[e.cursor+1:e.end+1])

	e.write(e.buf[e.cursor:e.end])
	e.writeString(" ")
	e.stepBack(e.end - e.cursor + 1)
}

func (e *Editor) left() {
	if e.cursor > 0 {
		e.cursor--
		e.writeString(seqLeft)
	}
}

func (e *Editor) right() {
	if e.cursor < e.end {
		e.cursor++
		e.writeString(seqRight)
	}
}

func (e *Editor) home() {
	for e.cursor > 0 {
		e.cursor--
		e.writeString(seqLeft)
	}
}

func (e *Editor) endOfLine() {
	for e.cursor < e.end {
		e.cursor++
		e.writeString(seqRight)
	}
}

// ── history recall ───────────────────────────────────────────────────

// histUp steps backward through the ring, wrapping to the last slot
// when the index goes negative.
func (e *Editor) histUp() {
	if e.hist == nil {
		return
	}
	e.histIdx--
	if e.histIdx < 0 {
		e.histIdx = e.hist.Size() - 1
	}
	e.historicPrompt()
}

// histDown always clears the selection.
func (e *Editor) histDown() {
	e.histIdx = -1
	e.historicPrompt()
}

// historicPrompt replaces the buffer with the selected history entry.
// An index outside the ring clears the line; an in-range slot that was
// never written leaves the pending input untouched.
func (e *Editor) historicPrompt() {
	if e.hist != nil {
		if entry, ok := e.hist.At(e.histIdx); ok {
			if entry == "" {
				return
			}
			e.clearLine()
			n := copy(e.buf[:len(e.buf)-1], entry)
			e.cursor, e.end = n, n
			e.writeString("\r" + e.prompt())
			e.write(e.buf[:e.end])
			return
		}
	}
	e.clearLine()
	e.writeString("\r" + e.prompt())
}

// clearLine blanks the currently displayed content and resets the
// buffer to empty.
func (e *Editor) clearLine() {
	e.writeString("\r" + e.prompt())
	for i := 0; i < e.end; i++ {
		e.writeString(" ")
	}
	e.cursor, e.end = 0, 0
}

// ── output helpers ───────────────────────────────────────────────────

// stepBack emits n cursor-left sequences.
func (e *Editor) stepBack(n int) {
	for i := 0; i < n; i++ {
		e.writeString(seqLeft)
	}
}

// Write errors are deliberately ignored here; a dead connection is
// detected by the session's read loop.
func (e *Editor) write(p []byte) { _, _ = e.out.Write(p) }

func (e *Editor) writeString(s string) { _, _ = io.WriteString(e.out, s) }
