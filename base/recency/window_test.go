package recency

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPushBelowCapacity(t *testing.T) {
	req := require.New(t)
	w := New[int](3)
	_, evicted := w.Push(1)
	req.False(evicted)
	w.Push(2)
	req.Equal([]int{1, 2}, w.Items())
	req.Equal(2, w.Len())
	req.Equal(3, w.Cap())
}

func TestEvictsOldestFirst(t *testing.T) {
	req := require.New(t)
	const k = 5
	w := New[int](k)
	for i := 1; i <= k; i++ {
		w.Push(i)
	}
	old, evicted := w.Push(k + 1)
	req.True(evicted)
	req.Equal(1, old)
	req.Equal([]int{2, 3, 4, 5, 6}, w.Items())

	for i := 7; i <= 20; i++ {
		w.Push(i)
		req.LessOrEqual(w.Len(), k)
	}
	req.Equal([]int{16, 17, 18, 19, 20}, w.Items())
}

func TestCloneRestore(t *testing.T) {
	req := require.New(t)
	w := New[string](2)
	w.Push("a")
	w.Push("b")
	snap := w.Clone()
	w.Push("c")
	req.Equal([]string{"b", "c"}, w.Items())
	w.Restore(snap)
	req.Equal([]string{"a", "b"}, w.Items())

	// the snapshot is not shared with the restored window
	w.Push("d")
	req.Equal([]string{"a", "b"}, snap.Items())
}

func TestMinimumCapacity(t *testing.T) {
	w := New[int](0)
	w.Push(1)
	w.Push(2)
	require.Equal(t, []int{2}, w.Items())
}
