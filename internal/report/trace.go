// Package report turns solver progress into artifacts: an in-memory
// convergence trace, a PNG plot of it, and a Prometheus textfile with the
// final training metrics.
package report

import (
	"sync"
	"time"

	"github.com/born-ml/convex/internal/optim"
)

// Trace records solver progress. It implements optim.Recorder and can be
// handed to any solver or trainer config.
//
// A report whose iteration number does not increase starts a new segment,
// so one-vs-rest training that reports several fits to one Trace yields one
// segment per fit.
type Trace struct {
	Name string

	mu       sync.Mutex
	segments [][]optim.Iteration
	start    time.Time
	last     time.Time
}

// NewTrace creates an empty trace.
func NewTrace(name string) *Trace {
	return &Trace{Name: name}
}

// Record implements optim.Recorder.
func (t *Trace) Record(it optim.Iteration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	if t.start.IsZero() {
		t.start = now
	}
	t.last = now

	n := len(t.segments)
	if n == 0 {
		t.segments = append(t.segments, nil)
	} else if seg := t.segments[n-1]; len(seg) > 0 && it.Iter <= seg[len(seg)-1].Iter {
		t.segments = append(t.segments, nil)
	}
	n = len(t.segments)
	t.segments[n-1] = append(t.segments[n-1], it)
}

// Segments returns a copy of the recorded segments.
func (t *Trace) Segments() [][]optim.Iteration {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([][]optim.Iteration, len(t.segments))
	for i, seg := range t.segments {
		out[i] = append([]optim.Iteration(nil), seg...)
	}
	return out
}

// Len returns the number of recorded reports over all segments.
func (t *Trace) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	var n int
	for _, seg := range t.segments {
		n += len(seg)
	}
	return n
}

// Last returns the most recent report.
func (t *Trace) Last() (optim.Iteration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.segments) == 0 {
		return optim.Iteration{}, false
	}
	seg := t.segments[len(t.segments)-1]
	return seg[len(seg)-1], true
}

// Elapsed returns the time between the first and the last report.
func (t *Trace) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last.Sub(t.start)
}
