// Package history provides a linear undo/redo history for a single value.
//
// A History keeps every state of the value in an arena together with two
// positions: the state last persisted to disk (saved) and the state being
// edited (current). Applying a value that differs from the current one
// discards any redo states and appends it.
package history

// Key identifies one applied change. Zero means "no change".
type Key uint64

// Sequence hands out monotonically increasing keys. Several histories can
// share one Sequence so their changes are ordered against each other.
type Sequence struct {
	last Key
}

// Next returns a key greater than every key returned before.
func (s *Sequence) Next() Key {
	s.last++
	return s.last
}

type state[T any] struct {
	value T
	key   Key
}

// History is a linear history of values of type T.
// It is not safe for concurrent use.
type History[T any] struct {
	states []state[T]
	cur    int // arena slot holding the saved value, -1 once its branch is discarded
	new    int
	saved  T
	equal  func(a, b T) bool
}

// New creates a history whose initial state is also its saved state.
func New[T any](initial T, equal func(a, b T) bool) *History[T] {
	return &History[T]{
		states: []state[T]{{value: initial}},
		saved:  initial,
		equal:  equal,
	}
}

// Apply records v as the new current state. If v equals the current state
// nothing happens and (0, false) is returned. Otherwise redo states are
// dropped, v is appended under key, and (key, true) is returned.
//
// key should come from a Sequence; a zero key is replaced by one greater
// than any key in the history.
func (h *History[T]) Apply(v T, key Key) (Key, bool) {
	if h.equal(h.states[h.new].value, v) {
		return 0, false
	}
	if key == 0 {
		key = h.maxKey() + 1
	}
	if h.cur > h.new {
		h.cur = -1
	}
	h.states = append(h.states[:h.new+1], state[T]{value: v, key: key})
	h.new++
	return key, true
}

// DropRedo discards the states after the current one. It reports whether
// there were any.
func (h *History[T]) DropRedo() bool {
	if h.new+1 >= len(h.states) {
		return false
	}
	if h.cur > h.new {
		h.cur = -1
	}
	h.states = h.states[:h.new+1]
	return true
}

// Amend replaces the current value in place, without creating a step.
func (h *History[T]) Amend(v T) {
	h.states[h.new].value = v
}

// MarkSaved makes the current state the saved baseline.
func (h *History[T]) MarkSaved() {
	h.cur = h.new
	h.saved = h.states[h.new].value
}

// Undo steps back one state. It reports whether it moved.
func (h *History[T]) Undo() bool {
	if h.new == 0 {
		return false
	}
	h.new--
	return true
}

// Redo steps forward one previously undone state. It reports whether it
// moved.
func (h *History[T]) Redo() bool {
	if h.new+1 >= len(h.states) {
		return false
	}
	h.new++
	return true
}

// UndoKey returns the key of the change Undo would revert, or zero.
func (h *History[T]) UndoKey() Key {
	if h.new == 0 {
		return 0
	}
	return h.states[h.new].key
}

// RedoKey returns the key of the change Redo would reapply, or zero.
func (h *History[T]) RedoKey() Key {
	if h.new+1 >= len(h.states) {
		return 0
	}
	return h.states[h.new+1].key
}

// IsSaved reports whether the current value equals the saved one.
func (h *History[T]) IsSaved() bool {
	return h.equal(h.states[h.new].value, h.saved)
}

// Current returns the value being edited.
func (h *History[T]) Current() T {
	return h.states[h.new].value
}

// Saved returns the value last persisted.
func (h *History[T]) Saved() T {
	return h.saved
}

// Len returns the number of states in the history.
func (h *History[T]) Len() int {
	return len(h.states)
}

// UpdateSaved rewrites the saved baseline with fn. When the current state is
// the saved one it is rewritten too; pending edits are left alone. It
// reports whether fn changed anything.
func (h *History[T]) UpdateSaved(fn func(T) (T, bool)) bool {
	v, ok := fn(h.saved)
	if !ok {
		return false
	}
	h.saved = v
	if h.cur >= 0 {
		h.states[h.cur].value = v
	}
	return true
}

func (h *History[T]) maxKey() Key {
	var k Key
	for _, s := range h.states {
		k = max(k, s.key)
	}
	return k
}
