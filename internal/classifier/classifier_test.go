package classifier

import (
	"bytes"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/convex/internal/dataset"
	"github.com/born-ml/convex/internal/linalg"
	"github.com/born-ml/convex/internal/objective"
	"github.com/born-ml/convex/internal/optim"
)

func newDataset(t *testing.T, rows [][]float64, labels []float64) *dataset.Dataset {
	t.Helper()
	features := make([]dataset.Feature, len(rows))
	for i, r := range rows {
		features[i] = dataset.NewDenseFeature(r)
	}
	ds, err := dataset.New(features, linalg.Vector(labels))
	require.NoError(t, err)
	return ds
}

// mirrored returns two clusters placed symmetrically about the origin, with
// labels 0 and 1.
func mirrored(t *testing.T) *dataset.Dataset {
	return newDataset(t,
		[][]float64{{2, 1}, {3, 2}, {2.5, 1.5}, {3, 1}, {-2, -1}, {-3, -2}, {-2.5, -1.5}, {-3, -1}},
		[]float64{1, 1, 1, 1, 0, 0, 0, 0})
}

// threeClusters returns three well separated clusters labeled 0, 1, 2.
func threeClusters(t *testing.T) *dataset.Dataset {
	return newDataset(t,
		[][]float64{
			{0, 5}, {0.5, 5.5}, {-0.5, 4.5},
			{5, 0}, {5.5, 0.5}, {4.5, -0.5},
			{-5, -5}, {-5.5, -4.5}, {-4.5, -5.5},
		},
		[]float64{0, 0, 0, 1, 1, 1, 2, 2, 2})
}

// line returns y = 2x on a few points.
func line(t *testing.T) *dataset.Dataset {
	rows := [][]float64{{-2}, {-1}, {-0.5}, {0.5}, {1}, {2}}
	labels := make([]float64, len(rows))
	for i, r := range rows {
		labels[i] = 2 * r[0]
	}
	return newDataset(t, rows, labels)
}

func TestParseAlgorithm(t *testing.T) {
	for _, a := range Algorithms() {
		got, err := ParseAlgorithm(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}

	got, err := ParseAlgorithm("12")
	require.NoError(t, err)
	assert.Equal(t, TRON, got)

	got, err = ParseAlgorithm(" LBFGS ")
	require.NoError(t, err)
	assert.Equal(t, LBFGS, got)

	for _, bad := range []string{"", "newton", "-1", "16"} {
		_, err := ParseAlgorithm(bad)
		assert.ErrorIs(t, err, ErrUnknownAlgorithm, bad)
	}
	assert.Equal(t, "Algorithm(99)", Algorithm(99).String())
}

func TestParsePenalty(t *testing.T) {
	p, err := ParsePenalty("L1")
	require.NoError(t, err)
	assert.Equal(t, L1, p)
	_, err = ParsePenalty("elastic")
	assert.ErrorIs(t, err, ErrUnknownPenalty)
}

func TestParseSVMLoss(t *testing.T) {
	for _, l := range []SVMLoss{SquaredHinge, Hinge, HuberHinge} {
		got, err := ParseSVMLoss(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, got)
	}
	_, err := ParseSVMLoss("ramp")
	assert.ErrorIs(t, err, ErrUnknownLoss)
	assert.Equal(t, "SVMLoss(7)", SVMLoss(7).String())
}

func TestTrainLogisticRegression_Binary(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"lbfgs", Config{Algorithm: LBFGS}},
		{"gd", Config{Algorithm: GD, Alpha: 0.01}},
		{"gd-linesearch", Config{Algorithm: GDLineSearch}},
		{"bb", Config{Algorithm: BarzilaiBorwein}},
		{"nesterov", Config{Algorithm: Nesterov}},
		{"cg", Config{Algorithm: ConjugateGradient}},
		{"tron", Config{Algorithm: TRON}},
		{"owlqn", Config{Algorithm: OWLQN, Penalty: L1, Lambda: 0.1}},
		{"cd", Config{Algorithm: CoordinateDescent, Penalty: L1, Lambda: 0.1, Seed: 1}},
		{"sgd", Config{Algorithm: SGD, Alpha: 0.1, Seed: 1}},
		{"sgd-linesearch", Config{Algorithm: SGDLineSearch, Seed: 1}},
		{"sgd-decaying", Config{Algorithm: SGDDecaying, Seed: 1}},
		{"adagrad", Config{Algorithm: AdaGrad, Alpha: 0.1, Seed: 1}},
		{"sag", Config{Algorithm: SAG, Seed: 1}},
		{"rda", Config{Algorithm: RDA, Penalty: L1, Lambda: 0.1, Seed: 1}},
		{"rda-adagrad", Config{Algorithm: RDAAdaGrad, Penalty: L1, Lambda: 0.1, Seed: 1}},
	}

	ds := mirrored(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := TrainLogisticRegression(ds, tt.cfg)
			require.NoError(t, err)

			assert.Equal(t, []float64{0, 1}, m.Classes)
			require.Len(t, m.Weights, 1)
			require.Len(t, m.Fits, 1)
			assert.Equal(t, "logistic", m.Loss)
			assert.InDelta(t, 1.0, m.Accuracy(ds), 1e-12)
			assert.True(t, m.Weights[0].IsFinite())
		})
	}
}

func TestTrainLogisticRegression_L1MatchesOWLQN(t *testing.T) {
	ds := newDataset(t,
		[][]float64{{1, 0.1}, {2, -0.3}, {0.5, 0.2}, {-1, 0.1}, {-0.2, -0.4}, {0.3, 0.3}},
		[]float64{1, 1, 0, 0, 0, 1})
	cfg := Config{Penalty: L1, Lambda: 0.5, Eps: 1e-8, MaxIter: 2000, Seed: 3}

	cfg.Algorithm = CoordinateDescent
	cd, err := TrainLogisticRegression(ds, cfg)
	require.NoError(t, err)
	cfg.Algorithm = OWLQN
	owl, err := TrainLogisticRegression(ds, cfg)
	require.NoError(t, err)

	y := linalg.Vector{1, 1, -1, -1, -1, 1}
	obj := objective.NewL1Logistic(ds.NumFeatures, ds.Features, y, 0.5)
	assert.InDelta(t, obj.Value(owl.Weights[0]), obj.Value(cd.Weights[0]), 1e-4)
	assert.InDelta(t, obj.Value(cd.Weights[0]), cd.Fits[0].F, 1e-9)
}

func TestTrainLogisticRegression_OneVsRest(t *testing.T) {
	ds := threeClusters(t)
	var calls int
	m, err := TrainLogisticRegression(ds, Config{
		Algorithm: TRON,
		Lambda:    0.1,
		Bias:      true,
		Recorder:  optim.RecorderFunc(func(optim.Iteration) { calls++ }),
	})
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 1, 2}, m.Classes)
	require.Len(t, m.Weights, 3)
	for _, w := range m.Weights {
		assert.Len(t, w, 3)
	}
	assert.Len(t, m.Fits, 3)
	assert.Positive(t, calls)
	assert.InDelta(t, 1.0, m.Accuracy(ds), 1e-12)

	prob, err := m.PredictProbability(ds.Features[4])
	require.NoError(t, err)
	assert.InDelta(t, 1.0, prob[0]+prob[1]+prob[2], 1e-12)
	assert.Greater(t, prob[1], prob[0])
	assert.Greater(t, prob[1], prob[2])
}

func TestTrainSVM(t *testing.T) {
	ds := mirrored(t)
	tests := []struct {
		name string
		cfg  SVMConfig
	}{
		{"squared hinge cd", SVMConfig{Config: Config{Algorithm: CoordinateDescent, Seed: 1}, Loss: SquaredHinge}},
		{"hinge cd", SVMConfig{Config: Config{Algorithm: CoordinateDescent, Seed: 1}, Loss: Hinge}},
		{"squared hinge tron", SVMConfig{Config: Config{Algorithm: TRON}, Loss: SquaredHinge}},
		{"huber lbfgs", SVMConfig{Config: Config{Algorithm: LBFGS}, Loss: HuberHinge, Threshold: DefaultHuber}},
		{"squared hinge l1 owlqn", SVMConfig{Config: Config{Algorithm: OWLQN, Penalty: L1}, Loss: SquaredHinge}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := TrainSVM(ds, tt.cfg)
			require.NoError(t, err)
			assert.InDelta(t, 1.0, m.Accuracy(ds), 1e-12)
		})
	}
}

func TestTrainSVM_DualAgreesWithTRON(t *testing.T) {
	ds := newDataset(t,
		[][]float64{{1, 2}, {2, 0.5}, {0.2, 0.1}, {-1, -2}, {-2, -0.5}, {0.1, -0.3}},
		[]float64{1, 1, 1, -1, -1, -1})

	cfg := DefaultSVMConfig()
	cfg.Eps = 1e-8
	cfg.MaxIter = 5000
	cfg.Seed = 2

	cfg.Algorithm = CoordinateDescent
	dual, err := TrainSVM(ds, cfg)
	require.NoError(t, err)
	assert.Less(t, math.Abs(dual.Fits[0].Gap), 1e-6)

	cfg.Algorithm = TRON
	primal, err := TrainSVM(ds, cfg)
	require.NoError(t, err)

	for j := range primal.Weights[0] {
		assert.InDelta(t, primal.Weights[0][j], dual.Weights[0][j], 1e-3)
	}
	assert.Equal(t, "squared-hinge", dual.Loss)
}

func TestTrainSVR(t *testing.T) {
	ds := line(t)
	for _, squared := range []bool{false, true} {
		cfg := DefaultSVRConfig()
		cfg.Algorithm = CoordinateDescent
		cfg.Squared = squared
		cfg.Lambda = 1e-3
		cfg.Eps = 1e-6
		cfg.MaxIter = 2000
		cfg.Seed = 1

		m, err := TrainSVR(ds, cfg)
		require.NoError(t, err)
		assert.False(t, m.IsClassifier())
		assert.InDelta(t, 2.0, m.Weights[0][0], 0.1)
		assert.Less(t, m.MeanSquaredError(ds), 0.05)
		assert.Equal(t, "0.1", m.Params["p"])

		_, err = m.PredictProbability(ds.Features[0])
		assert.ErrorIs(t, err, ErrNotClassifier)
	}

	_, err := TrainSVR(ds, SVRConfig{P: -1})
	assert.Error(t, err)
}

func TestTrainSVR_DualUsesTubeWidth(t *testing.T) {
	ds := line(t)
	for _, squared := range []bool{false, true} {
		// Every |y| is at most 4, so a tube of width 10 makes w = 0 optimal.
		cfg := SVRConfig{Config: Config{Algorithm: CoordinateDescent, Lambda: 1e-3, Eps: 1e-6, Seed: 1}, Squared: squared, P: 10}
		m, err := TrainSVR(ds, cfg)
		require.NoError(t, err)
		assert.InDelta(t, 0, m.Weights[0][0], 1e-9)
		assert.Equal(t, "10", m.Params["p"])
	}
}

func TestTrainLeastSquares_Ridge(t *testing.T) {
	ds := line(t)
	const lambda = 2.0
	m, err := TrainLeastSquares(ds, Config{Algorithm: LBFGS, Lambda: lambda, Eps: 1e-10, MaxIter: 1000})
	require.NoError(t, err)

	// Minimizer of Σ(y - wx)² + λ/2 w² is 2Σxy / (2Σx² + λ).
	var sxy, sxx float64
	for i, f := range ds.Features {
		x := f.(*dataset.DenseFeature).Value[0]
		sxy += x * ds.Labels[i]
		sxx += x * x
	}
	assert.InDelta(t, 2*sxy/(2*sxx+lambda), m.Weights[0][0], 1e-6)
	assert.Equal(t, "squared", m.Loss)
}

func TestTrain_Unsupported(t *testing.T) {
	ds := mirrored(t)
	tests := []struct {
		name  string
		train func() error
	}{
		{"tron l1", func() error {
			_, err := TrainLogisticRegression(ds, Config{Algorithm: TRON, Penalty: L1})
			return err
		}},
		{"sag l1", func() error {
			_, err := TrainLogisticRegression(ds, Config{Algorithm: SAG, Penalty: L1})
			return err
		}},
		{"owlqn l2", func() error {
			_, err := TrainLogisticRegression(ds, Config{Algorithm: OWLQN})
			return err
		}},
		{"rda l2", func() error {
			_, err := TrainLogisticRegression(ds, Config{Algorithm: RDA})
			return err
		}},
		{"cd l2 logistic", func() error {
			_, err := TrainLogisticRegression(ds, Config{Algorithm: CoordinateDescent})
			return err
		}},
		{"cd l1 svm", func() error {
			_, err := TrainSVM(ds, SVMConfig{Config: Config{Algorithm: CoordinateDescent, Penalty: L1}})
			return err
		}},
		{"cd huber", func() error {
			_, err := TrainSVM(ds, SVMConfig{Config: Config{Algorithm: CoordinateDescent}, Loss: HuberHinge})
			return err
		}},
		{"cd least squares", func() error {
			_, err := TrainLeastSquares(ds, Config{Algorithm: CoordinateDescent})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.train(), ErrUnsupported)
		})
	}
}

func TestTrain_BadInput(t *testing.T) {
	_, err := TrainLogisticRegression(nil, Config{})
	assert.ErrorIs(t, err, dataset.ErrEmptyDataset)

	oneClass := newDataset(t, [][]float64{{1}, {2}}, []float64{1, 1})
	_, err = TrainLogisticRegression(oneClass, Config{})
	assert.ErrorIs(t, err, ErrTooFewClasses)

	_, err = TrainLogisticRegression(mirrored(t), Config{Lambda: -1})
	assert.Error(t, err)

	_, err = TrainLogisticRegression(mirrored(t), Config{Algorithm: Algorithm(42)})
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)

	_, err = TrainSVM(mirrored(t), SVMConfig{Loss: HuberHinge, Threshold: 1})
	assert.Error(t, err)

	_, err = TrainSVM(mirrored(t), SVMConfig{Loss: SVMLoss(7)})
	assert.ErrorIs(t, err, ErrUnknownLoss)
}

func TestModel_PredictBinary(t *testing.T) {
	m := &Model{Classes: []float64{-3, 7}, Weights: []linalg.Vector{{1, -1, 0.5}}, NumFeatures: 2, Bias: true}

	assert.Equal(t, 7.0, m.Predict(dataset.NewDenseFeature([]float64{1, 0})))
	assert.Equal(t, -3.0, m.Predict(dataset.NewDenseFeature([]float64{0, 1})))

	// Features beyond the trained dimension are ignored.
	wide := &dataset.SparseFeature{Index: []int{0, 5}, Value: []float64{1, 100}, NumFeatures: 6}
	assert.Equal(t, linalg.Vector{1.5}, m.Decision(wide))

	prob, err := m.PredictProbability(dataset.NewDenseFeature([]float64{0, 0}))
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-0.5)), prob[1], 1e-12)
	assert.InDelta(t, 1.0, prob[0]+prob[1], 1e-12)

	m.Weights[0][2] = -1000
	prob, err = m.PredictProbability(dataset.NewDenseFeature([]float64{0, 0}))
	require.NoError(t, err)
	assert.InDelta(t, 0.0, prob[1], 1e-12)
	assert.False(t, math.IsNaN(prob[0]))
	assert.Equal(t, 3, m.NNZ())
}

func TestModel_SaveLoad(t *testing.T) {
	ds := threeClusters(t)
	m, err := TrainLogisticRegression(ds, Config{Algorithm: LBFGS, Lambda: 0.1, Bias: true})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.txt")
	require.NoError(t, m.Save(path))
	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, m.Algorithm, loaded.Algorithm)
	assert.Equal(t, m.Loss, loaded.Loss)
	assert.Equal(t, m.Classes, loaded.Classes)
	assert.Equal(t, m.Weights, loaded.Weights)
	assert.Equal(t, m.NumFeatures, loaded.NumFeatures)
	assert.True(t, loaded.Bias)
	assert.Equal(t, "0.1", loaded.Params["lambda"])
	assert.Equal(t, "l2", loaded.Params["penalty"])
	assert.Nil(t, loaded.Fits)
	assert.Equal(t, m.PredictAll(ds), loaded.PredictAll(ds))
}

func TestModel_EncodeDecodeRegressor(t *testing.T) {
	m := &Model{
		Algorithm:   CoordinateDescent,
		Loss:        "epsilon-insensitive",
		Weights:     []linalg.Vector{{2, -1}},
		NumFeatures: 2,
		Params:      map[string]string{"p": "0.1"},
	}
	var buf bytes.Buffer
	require.NoError(t, m.Encode(&buf))

	got, err := Decode(&buf)
	require.NoError(t, err)
	assert.False(t, got.IsClassifier())
	assert.Nil(t, got.Classes)
	assert.Equal(t, m.Weights, got.Weights)
	assert.Equal(t, CoordinateDescent, got.Algorithm)
}

func TestDecode_UnknownAlgorithm(t *testing.T) {
	m := &Model{Algorithm: Algorithm(40), Loss: "squared", Weights: []linalg.Vector{{1}}, NumFeatures: 1}
	var buf bytes.Buffer
	require.NoError(t, m.Encode(&buf))

	_, err := Decode(&buf)
	assert.True(t, errors.Is(err, ErrModelMismatch))
	assert.True(t, errors.Is(err, ErrUnknownAlgorithm))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}
