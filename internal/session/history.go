package session

// History is the stack of visited sample ids, newest first, with a cursor
// pointing at the entry on screen. Cursor 0 is the live edge: moving forward
// from there asks the store for a new unlabeled sample.
//
// Entries only grow by prepending at the live edge. Moving the cursor never
// removes entries; only Reset does.
type History struct {
	entries []string
	cursor  int
}

// Len returns the number of visited samples.
func (h *History) Len() int {
	return len(h.entries)
}

// Cursor returns the index of the entry on screen.
func (h *History) Cursor() int {
	return h.cursor
}

// Entries returns a copy of the visited ids, newest first.
func (h *History) Entries() []string {
	out := make([]string, len(h.entries))
	copy(out, h.entries)

	return out
}

// AtLiveEdge reports whether the cursor is at the newest entry.
func (h *History) AtLiveEdge() bool {
	return h.cursor == 0
}

// Current returns the id under the cursor.
func (h *History) Current() (string, bool) {
	if h.cursor >= len(h.entries) {
		return "", false
	}

	return h.entries[h.cursor], true
}

// CanGoBack reports whether an older entry exists behind the cursor.
func (h *History) CanGoBack() bool {
	return h.cursor < len(h.entries)-1
}

// Older returns the entry one step back from the cursor.
func (h *History) Older() (string, bool) {
	if !h.CanGoBack() {
		return "", false
	}

	return h.entries[h.cursor+1], true
}

// Newer returns the entry one step toward the live edge.
func (h *History) Newer() (string, bool) {
	if h.cursor == 0 {
		return "", false
	}

	return h.entries[h.cursor-1], true
}

// Push prepends id at the live edge. It is a no-op away from the live edge.
func (h *History) Push(id string) {
	if h.cursor != 0 {
		return
	}

	h.entries = append([]string{id}, h.entries...)
}

// StepBack moves the cursor to the older entry.
func (h *History) StepBack() {
	if h.CanGoBack() {
		h.cursor++
	}
}

// StepForward moves the cursor toward the live edge.
func (h *History) StepForward() {
	if h.cursor > 0 {
		h.cursor--
	}
}

// Reset forgets every entry.
func (h *History) Reset() {
	h.entries = nil
	h.cursor = 0
}
