package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/optimize"

	"github.com/born-ml/convex/internal/classifier"
	"github.com/born-ml/convex/internal/linalg"
	"github.com/born-ml/convex/internal/optim"
)

func TestTrace_Segments(t *testing.T) {
	tr := NewTrace("lbfgs")
	_, ok := tr.Last()
	assert.False(t, ok)

	for _, it := range []int{1, 2, 3, 1, 2} {
		tr.Record(optim.Iteration{Iter: it, F: float64(10 - it)})
	}

	segs := tr.Segments()
	require.Len(t, segs, 2)
	assert.Len(t, segs[0], 3)
	assert.Len(t, segs[1], 2)
	assert.Equal(t, 5, tr.Len())

	last, ok := tr.Last()
	require.True(t, ok)
	assert.Equal(t, 2, last.Iter)
	assert.GreaterOrEqual(t, tr.Elapsed(), time.Duration(0))

	// Segments returns a copy.
	segs[0][0].F = -1
	assert.Equal(t, 9.0, tr.Segments()[0][0].F)
}

func TestTrace_AsRecorder(t *testing.T) {
	var rec optim.Recorder = NewTrace("x")
	rec.Record(optim.Iteration{Iter: 1})
	assert.Equal(t, 1, rec.(*Trace).Len())
}

func TestPlotTrace(t *testing.T) {
	tr := NewTrace("gd")
	for i := 1; i <= 20; i++ {
		tr.Record(optim.Iteration{Iter: i, F: 1 / float64(i), GradNorm: 1 / float64(i*i)})
	}
	dir := t.TempDir()

	for _, measure := range []bool{false, true} {
		path := filepath.Join(dir, "trace.png")
		if measure {
			path = filepath.Join(dir, "measure.png")
		}
		require.NoError(t, PlotTrace(path, PlotOptions{Title: "gd", Measure: measure}, tr))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "\x89PNG"))
	}
}

func TestPlotTrace_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.png")
	assert.ErrorIs(t, PlotTrace(path, PlotOptions{}, NewTrace("none")), ErrEmptyTrace)

	// Only non-positive measures: nothing to draw on a log scale.
	tr := NewTrace("zero")
	tr.Record(optim.Iteration{Iter: 1, GradNorm: 0})
	assert.ErrorIs(t, PlotTrace(path, PlotOptions{Measure: true}, tr), ErrEmptyTrace)
}

func TestMetrics(t *testing.T) {
	model := &classifier.Model{
		Algorithm:   classifier.TRON,
		Classes:     []float64{0, 1},
		Weights:     []linalg.Vector{{1, 0, -2}},
		NumFeatures: 3,
		Fits: []classifier.Summary{{
			F:          1.5,
			GradNorm:   1e-4,
			Iterations: 7,
			Status:     optimize.GradientThreshold,
		}},
	}

	m := NewMetrics()
	m.ObserveModel(model, 2*time.Second)
	m.ObserveScore(model, "train", 0.75)

	assert.Equal(t, 1.5, testutil.ToFloat64(m.objective.WithLabelValues("tron", "0")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.iterations.WithLabelValues("tron", "0")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.weights.WithLabelValues("tron")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.duration.WithLabelValues("tron")))
	assert.Equal(t, 0.75, testutil.ToFloat64(m.score.WithLabelValues("tron", "train", "accuracy")))

	path := filepath.Join(t.TempDir(), "convex.prom")
	require.NoError(t, m.WriteFile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `convex_objective_value{algorithm="tron",fit="0"} 1.5`)
	assert.Contains(t, text, `convex_fit_status{algorithm="tron",fit="0",status="GradientThreshold"} 1`)
	assert.Contains(t, text, "# TYPE convex_model_score gauge")
}

func TestMetrics_RegressorScore(t *testing.T) {
	model := &classifier.Model{Algorithm: classifier.CoordinateDescent, Weights: []linalg.Vector{{1}}, NumFeatures: 1,
		Fits: []classifier.Summary{{F: 2, Gap: 1e-6}}}
	m := NewMetrics()
	m.ObserveModel(model, time.Millisecond)
	m.ObserveScore(model, "test", 0.5)

	assert.Equal(t, 1e-6, testutil.ToFloat64(m.measure.WithLabelValues("cd", "0")))
	assert.Equal(t, 0.5, testutil.ToFloat64(m.score.WithLabelValues("cd", "test", "mse")))
}
