package optim

import (
	"fmt"
	"math/rand"
	"time"
)

// Minibatches partitions the sample indices [0, n) into shuffled batches.
//
// Every index belongs to exactly one batch. All batches hold size indices
// except the last, which holds the remainder.
type Minibatches struct {
	perm    []int
	size    int
	batches [][]int
	rng     *rand.Rand
}

// NewMinibatches creates a partitioner over n samples with the given batch
// size. A zero seed uses the current time.
func NewMinibatches(n, size int, seed int64) *Minibatches {
	if n <= 0 || size <= 0 {
		panic(fmt.Sprintf("optim.NewMinibatches: invalid n=%d size=%d", n, size))
	}
	if size > n {
		size = n
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	m := &Minibatches{
		perm: make([]int, n),
		size: size,
		rng:  rand.New(rand.NewSource(seed)),
	}
	for i := range m.perm {
		m.perm[i] = i
	}
	m.Shuffle()
	return m
}

// Shuffle draws a new random partition. Slices returned by Batches before the
// call see the new contents.
func (m *Minibatches) Shuffle() {
	m.rng.Shuffle(len(m.perm), func(i, j int) {
		m.perm[i], m.perm[j] = m.perm[j], m.perm[i]
	})
	m.batches = m.batches[:0]
	for start := 0; start < len(m.perm); start += m.size {
		end := min(start+m.size, len(m.perm))
		m.batches = append(m.batches, m.perm[start:end])
	}
}

// Batches returns the current partition.
func (m *Minibatches) Batches() [][]int {
	return m.batches
}

// Len returns the number of batches.
func (m *Minibatches) Len() int {
	return len(m.batches)
}

// Intn returns a uniform random integer in [0, n) from the partitioner's
// source, so a solver run is reproducible from one seed.
func (m *Minibatches) Intn(n int) int {
	return m.rng.Intn(n)
}
