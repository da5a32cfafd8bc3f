package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/convex/internal/classifier"
)

const separable = `1 1:1 2:1
1 1:2 2:1
1 1:1 2:2
1 1:2 2:2
-1 1:-1 2:-1
-1 1:-2 2:-1
-1 1:-1 2:-2
-1 1:-2 2:-2
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTrainPredict(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "train.txt", separable)
	model := filepath.Join(dir, "model.txt")
	plot := filepath.Join(dir, "trace.png")
	metrics := filepath.Join(dir, "convex.prom")

	out, err := execute(t, "train", "--bias", "--seed", "3", "-o", model,
		"--test-file", data, "--plot", plot, "--metrics-file", metrics, data)
	require.NoError(t, err)
	assert.Contains(t, out, "train accuracy = 1")
	assert.Contains(t, out, "test accuracy = 1")
	assert.Contains(t, out, "fit 0:")

	m, err := classifier.Load(model)
	require.NoError(t, err)
	assert.Equal(t, classifier.LBFGS, m.Algorithm)
	assert.True(t, m.Bias)

	png, err := os.ReadFile(plot)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `convex_model_score{algorithm="lbfgs",dataset="train",metric="accuracy"} 1`)

	out, err = execute(t, "predict", model, data)
	require.NoError(t, err)
	assert.Equal(t, "1\n1\n1\n1\n-1\n-1\n-1\n-1\n", out)

	scores := filepath.Join(dir, "scores.txt")
	out, err = execute(t, "predict", "--probability", "-o", scores, model, data)
	require.NoError(t, err)
	assert.Contains(t, out, "accuracy = 1")
	lines, err := os.ReadFile(scores)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(lines)), "\n"), 8)
}

func TestTrain_ModelTypes(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "train.txt", separable)

	tests := []struct {
		args  []string
		score string
	}{
		{[]string{"--model", "svm", "--algorithm", "cd", "--loss", "hinge"}, "train accuracy = 1"},
		{[]string{"--model", "svm", "--loss", "huber-hinge", "--algorithm", "tron"}, "train accuracy = 1"},
		{[]string{"--model", "svr", "--algorithm", "13"}, "train mse ="},
		{[]string{"--model", "ls", "--penalty", "l1", "--algorithm", "owlqn", "--lambda", "0.1"}, "train mse ="},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			model := filepath.Join(t.TempDir(), "m.txt")
			args := append([]string{"train", "--seed", "1", "-o", model}, tt.args...)
			out, err := execute(t, append(args, data)...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.score)
		})
	}
}

func TestTrain_Split(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "train.txt", separable)
	out, err := execute(t, "train", "--split", "0.25", "--seed", "7", "-o", filepath.Join(dir, "m.txt"), data)
	require.NoError(t, err)
	assert.Contains(t, out, "test accuracy =")
}

func TestTrain_ConfigAndEnv(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "train.txt", separable)
	config := writeFile(t, dir, "convex.yaml", "algorithm: tron\nlambda: 0.5\n")
	model := filepath.Join(dir, "m.txt")

	_, err := execute(t, "train", "--config", config, "-o", model, data)
	require.NoError(t, err)
	m, err := classifier.Load(model)
	require.NoError(t, err)
	assert.Equal(t, classifier.TRON, m.Algorithm)
	assert.Equal(t, "0.5", m.Params["lambda"])

	// Environment beats the config file, flags beat both.
	t.Setenv("CONVEX_ALGORITHM", "bb")
	_, err = execute(t, "train", "--config", config, "-o", model, data)
	require.NoError(t, err)
	m, err = classifier.Load(model)
	require.NoError(t, err)
	assert.Equal(t, classifier.BarzilaiBorwein, m.Algorithm)

	_, err = execute(t, "train", "--config", config, "--algorithm", "cg", "-o", model, data)
	require.NoError(t, err)
	m, err = classifier.Load(model)
	require.NoError(t, err)
	assert.Equal(t, classifier.ConjugateGradient, m.Algorithm)
}

func TestTrain_Errors(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "train.txt", separable)
	model := filepath.Join(dir, "m.txt")

	_, err := execute(t, "train", "--algorithm", "newton", "-o", model, data)
	assert.ErrorIs(t, err, classifier.ErrUnknownAlgorithm)

	_, err = execute(t, "train", "--algorithm", "owlqn", "-o", model, data)
	assert.ErrorIs(t, err, classifier.ErrUnsupported)

	_, err = execute(t, "train", "--model", "svm", "--loss", "ramp", "-o", model, data)
	assert.ErrorIs(t, err, classifier.ErrUnknownLoss)

	_, err = execute(t, "train", "--model", "tree", "-o", model, data)
	assert.Error(t, err)

	_, err = execute(t, "train", "--split", "0.5", "--test-file", data, "-o", model, data)
	assert.Error(t, err)

	_, err = execute(t, "train", filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)

	_, err = execute(t, "train", "--config", filepath.Join(dir, "missing.yaml"), data)
	assert.Error(t, err)
}

func TestPredict_ProbabilityNeedsClassifier(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "train.txt", separable)
	model := filepath.Join(dir, "m.txt")
	_, err := execute(t, "train", "--model", "ls", "-o", model, data)
	require.NoError(t, err)

	_, err = execute(t, "predict", "--probability", model, data)
	assert.ErrorIs(t, err, classifier.ErrNotClassifier)
}

func TestVersionAndAlgorithms(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "convex "+version+"\n", out)

	out, err = execute(t, "algorithms")
	require.NoError(t, err)
	assert.Contains(t, out, " 0  lbfgs\n")
	assert.Contains(t, out, "15  sag\n")
}
