// Package recency keeps bounded, insertion ordered views of the latest
// items. They are display caches and never authoritative.
package recency

// Window is a fixed capacity FIFO ring buffer. Pushing into a full window
// evicts the oldest entry.
type Window[T any] struct {
	buf  []T
	head int // index of the oldest entry
	size int
}

// New returns a window holding at most capacity entries. A capacity below
// one is raised to one.
func New[T any](capacity int) *Window[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Window[T]{buf: make([]T, capacity)}
}

// Push appends v and returns the evicted entry, if any.
func (w *Window[T]) Push(v T) (evicted T, ok bool) {
	if w.size == len(w.buf) {
		evicted, ok = w.buf[w.head], true
		w.buf[w.head] = v
		w.head = (w.head + 1) % len(w.buf)
		return evicted, ok
	}
	w.buf[(w.head+w.size)%len(w.buf)] = v
	w.size++
	return evicted, false
}

// Items returns the entries oldest first.
func (w *Window[T]) Items() []T {
	res := make([]T, 0, w.size)
	for i := 0; i < w.size; i++ {
		res = append(res, w.buf[(w.head+i)%len(w.buf)])
	}
	return res
}

func (w *Window[T]) Len() int {
	return w.size
}

func (w *Window[T]) Cap() int {
	return len(w.buf)
}

// Clone returns an independent copy, used to restore a window on rollback.
func (w *Window[T]) Clone() *Window[T] {
	buf := make([]T, len(w.buf))
	copy(buf, w.buf)
	return &Window[T]{buf: buf, head: w.head, size: w.size}
}

// Restore overwrites w with the content of snapshot.
func (w *Window[T]) Restore(snapshot *Window[T]) {
	*w = *snapshot.Clone()
}
