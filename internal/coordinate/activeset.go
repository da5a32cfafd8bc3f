package coordinate

import "math/rand"

// ActiveSet partitions an index buffer into an active prefix and a shrunk
// suffix. Shrinking swaps an index to the end of the active prefix, so the
// buffer stays a permutation of [0, n) at all times.
//
// A limit below the buffer size supports nested shrinking: Pin freezes the
// current prefix as the limit, Reactivate restores the prefix up to that
// limit, and Release lifts the limit again.
type ActiveSet struct {
	index  []int
	active int
	limit  int
}

// NewActiveSet returns a fully active set over [0, n).
func NewActiveSet(n int) *ActiveSet {
	a := &ActiveSet{index: make([]int, n), active: n, limit: n}
	for i := range a.index {
		a.index[i] = i
	}
	return a
}

// Len returns the size of the active prefix.
func (a *ActiveSet) Len() int { return a.active }

// Size returns the size of the whole buffer.
func (a *ActiveSet) Size() int { return len(a.index) }

// At returns the index stored at position pos of the active prefix.
func (a *ActiveSet) At(pos int) int { return a.index[pos] }

// Full reports whether every index up to the limit is active.
func (a *ActiveSet) Full() bool { return a.active == a.limit }

// Shrink moves the index at position pos out of the active prefix. The last
// active index takes its place, so a caller iterating by position must visit
// pos again.
func (a *ActiveSet) Shrink(pos int) {
	a.active--
	a.index[pos], a.index[a.active] = a.index[a.active], a.index[pos]
}

// Reactivate makes every index up to the limit active again.
func (a *ActiveSet) Reactivate() { a.active = a.limit }

// Pin sets the limit to the current active prefix.
func (a *ActiveSet) Pin() { a.limit = a.active }

// Release lifts the limit and reactivates the whole buffer.
func (a *ActiveSet) Release() {
	a.limit = len(a.index)
	a.active = a.limit
}

// Shuffle permutes the active prefix in place.
func (a *ActiveSet) Shuffle(rng *rand.Rand) {
	for i := 0; i < a.active; i++ {
		j := i + rng.Intn(a.active-i)
		a.index[i], a.index[j] = a.index[j], a.index[i]
	}
}
