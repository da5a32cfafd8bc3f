package classifier

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/born-ml/convex/internal/dataset"
	"github.com/born-ml/convex/internal/linalg"
	"github.com/born-ml/convex/internal/serialization"
)

// Model is a trained linear classifier or regressor.
//
// A classifier over two classes has a single weight row whose positive side
// predicts Classes[1]. A classifier over k > 2 classes has one row per class
// and predicts the class of the largest decision value. A regressor has no
// classes and a single row.
type Model struct {
	Algorithm   Algorithm
	Loss        string            // Name of the training loss
	Classes     []float64         // Sorted class labels; nil for regressors
	Weights     []linalg.Vector   // Decision rows; each ends with the bias weight when Bias is set
	NumFeatures int               // Feature dimension seen in training, bias excluded
	Bias        bool              // Rows carry a trailing intercept
	Params      map[string]string // Training parameters, saved with the model

	// Fits holds one summary per trained row. It is not saved.
	Fits []Summary
}

// IsClassifier reports whether the model predicts class labels.
func (m *Model) IsClassifier() bool {
	return len(m.Classes) > 0
}

// Decision returns the decision value of every weight row for f.
//
// Feature indices at or beyond NumFeatures are ignored, so a test example
// may be wider than the training data.
func (m *Model) Decision(f dataset.Feature) linalg.Vector {
	out := linalg.NewVector(len(m.Weights))
	for r, w := range m.Weights {
		out[r] = m.decision(w, f)
	}
	return out
}

func (m *Model) decision(w linalg.Vector, f dataset.Feature) float64 {
	var z float64
	f.ForEach(func(i int, v float64) {
		if i < m.NumFeatures {
			z += w[i] * v
		}
	})
	if m.Bias {
		z += w[m.NumFeatures]
	}
	return z
}

// Predict returns the predicted label, or the predicted value for a
// regressor.
func (m *Model) Predict(f dataset.Feature) float64 {
	switch {
	case !m.IsClassifier():
		return m.decision(m.Weights[0], f)
	case len(m.Weights) == 1:
		if m.decision(m.Weights[0], f) > 0 {
			return m.Classes[1]
		}
		return m.Classes[0]
	}
	best, arg := math.Inf(-1), 0
	for r, z := range m.Decision(f) {
		if z > best {
			best, arg = z, r
		}
	}
	return m.Classes[arg]
}

// PredictProbability returns a probability per class in the order of
// Classes. Binary models map the decision value through the logistic
// function; one-vs-rest models normalize the per-class logistic values.
func (m *Model) PredictProbability(f dataset.Feature) (linalg.Vector, error) {
	if !m.IsClassifier() {
		return nil, ErrNotClassifier
	}
	prob := linalg.NewVector(len(m.Classes))
	if len(m.Weights) == 1 {
		prob[1] = sigmoid(m.decision(m.Weights[0], f))
		prob[0] = 1 - prob[1]
		return prob, nil
	}
	var sum float64
	for r, z := range m.Decision(f) {
		prob[r] = sigmoid(z)
		sum += prob[r]
	}
	prob.ScaleInPlace(1 / sum)
	return prob, nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// PredictAll returns Predict for every example of ds.
func (m *Model) PredictAll(ds *dataset.Dataset) linalg.Vector {
	out := linalg.NewVector(ds.Len())
	for i, f := range ds.Features {
		out[i] = m.Predict(f)
	}
	return out
}

// Accuracy returns the fraction of examples of ds whose label is predicted
// exactly.
func (m *Model) Accuracy(ds *dataset.Dataset) float64 {
	hits := make([]float64, ds.Len())
	for i, p := range m.PredictAll(ds) {
		if p == ds.Labels[i] {
			hits[i] = 1
		}
	}
	return stat.Mean(hits, nil)
}

// MeanSquaredError returns the mean squared difference between predictions
// and labels of ds.
func (m *Model) MeanSquaredError(ds *dataset.Dataset) float64 {
	sq := make([]float64, ds.Len())
	for i, p := range m.PredictAll(ds) {
		d := p - ds.Labels[i]
		sq[i] = d * d
	}
	return stat.Mean(sq, nil)
}

// NNZ returns the number of non-zero weights over all rows.
func (m *Model) NNZ() int {
	var n int
	for _, w := range m.Weights {
		n += w.NNZ()
	}
	return n
}

// Save writes the model to path in the text model format.
func (m *Model) Save(path string) error {
	w, err := serialization.NewModelWriter(path)
	if err != nil {
		return err
	}
	if err := w.WriteModel(m.record()); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to save model: %w", err)
	}
	return w.Close()
}

// Encode writes the model to out in the text model format.
func (m *Model) Encode(out io.Writer) error {
	return serialization.Encode(out, m.record())
}

func (m *Model) record() *serialization.Model {
	rows := make([][]float64, len(m.Weights))
	for i, w := range m.Weights {
		rows[i] = w
	}
	return &serialization.Model{
		Header: serialization.Header{
			Algorithm:   m.Algorithm.String(),
			Loss:        m.Loss,
			Classes:     m.Classes,
			NumFeatures: m.NumFeatures,
			Bias:        m.Bias,
			Params:      m.Params,
		},
		Weights: rows,
	}
}

// Load reads a model saved by Save.
func Load(path string) (*Model, error) {
	r, err := serialization.NewModelReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	rec, err := r.ReadModel()
	if err != nil {
		return nil, fmt.Errorf("failed to load model %s: %w", path, err)
	}
	return fromRecord(rec)
}

// Decode reads a model written by Encode.
func Decode(in io.Reader) (*Model, error) {
	rec, err := serialization.Decode(in, serialization.ReaderOptions{ValidationLevel: serialization.ValidationStrict})
	if err != nil {
		return nil, err
	}
	return fromRecord(rec)
}

func fromRecord(rec *serialization.Model) (*Model, error) {
	alg, err := ParseAlgorithm(rec.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelMismatch, err)
	}
	m := &Model{
		Algorithm:   alg,
		Loss:        rec.Loss,
		NumFeatures: rec.NumFeatures,
		Bias:        rec.Bias,
		Params:      rec.Params,
		Weights:     make([]linalg.Vector, len(rec.Weights)),
	}
	if len(rec.Classes) > 0 {
		m.Classes = rec.Classes
	}
	for i, row := range rec.Weights {
		m.Weights[i] = row
	}
	return m, nil
}
