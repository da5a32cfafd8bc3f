package linalg

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// History is a bounded FIFO of quasi-Newton correction pairs (s, y).
//
// Rows are addressed from oldest (0) to newest (Len()-1). Pushing into a full
// history drops the oldest pair. Storage is two fixed mat.Dense matrices used
// as ring buffers, so a long run never reallocates.
type History struct {
	s, y  *mat.Dense
	head  int // physical row of the oldest pair
	count int
	dim   int
}

// NewHistory creates an empty history holding up to memory pairs of length dim.
func NewHistory(memory, dim int) *History {
	if memory <= 0 || dim <= 0 {
		panic(fmt.Sprintf("linalg.NewHistory: invalid size memory=%d dim=%d", memory, dim))
	}
	return &History{
		s:   mat.NewDense(memory, dim, nil),
		y:   mat.NewDense(memory, dim, nil),
		dim: dim,
	}
}

// Cap returns the maximum number of stored pairs.
func (h *History) Cap() int {
	r, _ := h.s.Dims()
	return r
}

// Len returns the number of stored pairs.
func (h *History) Len() int {
	return h.count
}

// Push appends the pair (s, y) as the newest entry.
func (h *History) Push(s, y Vector) {
	if len(s) != h.dim || len(y) != h.dim {
		panic(fmt.Sprintf("linalg.History.Push: expected length %d, got s=%d y=%d", h.dim, len(s), len(y)))
	}
	capacity := h.Cap()
	var row int
	if h.count < capacity {
		row = (h.head + h.count) % capacity
		h.count++
	} else {
		row = h.head
		h.head = (h.head + 1) % capacity
	}
	h.s.SetRow(row, s)
	h.y.SetRow(row, y)
}

// S returns the i-th oldest step. The returned vector aliases internal storage
// and is only valid until the next Push.
func (h *History) S(i int) Vector {
	return Vector(h.s.RawRowView(h.physical(i)))
}

// Y returns the i-th oldest gradient difference. Aliasing rules match S.
func (h *History) Y(i int) Vector {
	return Vector(h.y.RawRowView(h.physical(i)))
}

// Newest returns the most recent pair.
func (h *History) Newest() (s, y Vector) {
	return h.S(h.count-1), h.Y(h.count-1)
}

// Reset empties the history.
func (h *History) Reset() {
	h.head = 0
	h.count = 0
}

func (h *History) physical(i int) int {
	if i < 0 || i >= h.count {
		panic(fmt.Sprintf("linalg.History: index %d out of range [0, %d)", i, h.count))
	}
	return (h.head + i) % h.Cap()
}
