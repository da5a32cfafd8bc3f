package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/born-ml/convex/internal/classifier"
)

const namespace = "convex"

// Metrics holds the training metrics of one CLI run in a private registry.
type Metrics struct {
	registry *prometheus.Registry

	objective  *prometheus.GaugeVec
	measure    *prometheus.GaugeVec
	iterations *prometheus.GaugeVec
	status     *prometheus.GaugeVec
	weights    *prometheus.GaugeVec
	duration   *prometheus.GaugeVec
	score      *prometheus.GaugeVec
}

// NewMetrics creates and registers the training metrics.
func NewMetrics() *Metrics {
	fit := []string{"algorithm", "fit"}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		objective: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "objective_value",
			Help:      "Training objective at the returned weights, per fit.",
		}, fit),
		measure: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "convergence_measure",
			Help:      "Final convergence measure (gradient norm or duality gap), per fit.",
		}, fit),
		iterations: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "iterations",
			Help:      "Iterations or epochs run, per fit.",
		}, fit),
		status: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fit_status",
			Help:      "Why each fit stopped; the value is always 1.",
		}, append(fit, "status")),
		weights: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "nonzero_weights",
			Help:      "Number of non-zero model weights.",
		}, []string{"algorithm"}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "train_duration_seconds",
			Help:      "Wall-clock training time.",
		}, []string{"algorithm"}),
		score: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_score",
			Help:      "Accuracy (classifiers) or mean squared error (regressors) on a dataset.",
		}, []string{"algorithm", "dataset", "metric"}),
	}
	m.registry.MustRegister(m.objective, m.measure, m.iterations, m.status, m.weights, m.duration, m.score)
	return m
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveModel records the per-fit summaries and weight count of a trained
// model and the time it took to train.
func (m *Metrics) ObserveModel(model *classifier.Model, took time.Duration) {
	alg := model.Algorithm.String()
	for i, s := range model.Fits {
		fit := strconv.Itoa(i)
		m.objective.WithLabelValues(alg, fit).Set(s.F)
		measure := s.GradNorm
		if model.Algorithm == classifier.CoordinateDescent {
			measure = s.Gap
		}
		m.measure.WithLabelValues(alg, fit).Set(measure)
		m.iterations.WithLabelValues(alg, fit).Set(float64(s.Iterations))
		m.status.WithLabelValues(alg, fit, s.Status.String()).Set(1)
	}
	m.weights.WithLabelValues(alg).Set(float64(model.NNZ()))
	m.duration.WithLabelValues(alg).Set(took.Seconds())
}

// ObserveScore records a model score on a named dataset ("train", "test").
func (m *Metrics) ObserveScore(model *classifier.Model, dataset string, value float64) {
	metric := "accuracy"
	if !model.IsClassifier() {
		metric = "mse"
	}
	m.score.WithLabelValues(model.Algorithm.String(), dataset, metric).Set(value)
}

// WriteFile writes the metrics in the Prometheus text format, for the node
// exporter textfile collector.
func (m *Metrics) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
