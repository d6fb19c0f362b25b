package shell

// History is a fixed-size ring of previously finalized lines.  The
// write cursor advances modulo the ring size, overwriting the oldest
// entry; empty lines are never stored.
type History struct {
	entries []string
	save    int
}

// NewHistory returns a ring holding up to size lines (minimum 1).
func NewHistory(size int) *History {
	if size < 1 {
		size = 1
	}
	return &History{entries: make([]string, size)}
}

// Size returns the ring capacity.
func (h *History) Size() int { return len(h.entries) }

// Save stores line at the write cursor and advances it.  Empty lines
// are discarded.
func (h *History) Save(line string) {
	if line == "" {
		return
	}
	h.entries[h.save] = line
	h.save = (h.save + 1) % len(h.entries)
}

// At returns the entry at index i.  ok is false when i is outside
// [0, Size).  A slot that was never written returns ("", true).
func (h *History) At(i int) (entry string, ok bool) {
	if i < 0 || i >= len(h.entries) {
		return "", false
	}
	return h.entries[i], true
}
