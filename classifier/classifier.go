// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package classifier trains and applies linear classifiers and regressors.
//
// Example:
//
//	model, err := classifier.TrainSVM(ds, classifier.SVMConfig{
//	    Config: classifier.Config{Algorithm: classifier.CoordinateDescent, Lambda: 0.1},
//	    Loss:   classifier.SquaredHinge,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(model.Accuracy(test))
package classifier

import (
	"io"

	"github.com/born-ml/convex/internal/classifier"
	"github.com/born-ml/convex/internal/dataset"
)

// Algorithm selects a training solver.
type Algorithm = classifier.Algorithm

// Supported algorithms.
const (
	LBFGS             = classifier.LBFGS
	GDLineSearch      = classifier.GDLineSearch
	BarzilaiBorwein   = classifier.BarzilaiBorwein
	Nesterov          = classifier.Nesterov
	ConjugateGradient = classifier.ConjugateGradient
	SGD               = classifier.SGD
	SGDDecaying       = classifier.SGDDecaying
	AdaGrad           = classifier.AdaGrad
	OWLQN             = classifier.OWLQN
	GD                = classifier.GD
	RDA               = classifier.RDA
	RDAAdaGrad        = classifier.RDAAdaGrad
	TRON              = classifier.TRON
	CoordinateDescent = classifier.CoordinateDescent
	SGDLineSearch     = classifier.SGDLineSearch
	SAG               = classifier.SAG
)

// Penalty selects the regularizer.
type Penalty = classifier.Penalty

// Supported penalties.
const (
	L2 = classifier.L2
	L1 = classifier.L1
)

// SVMLoss selects the margin loss of an SVM.
type SVMLoss = classifier.SVMLoss

// Supported SVM losses.
const (
	SquaredHinge = classifier.SquaredHinge
	Hinge        = classifier.Hinge
	HuberHinge   = classifier.HuberHinge
)

// Config holds the settings shared by every trainer.
type Config = classifier.Config

// SVMConfig configures TrainSVM.
type SVMConfig = classifier.SVMConfig

// SVRConfig configures TrainSVR.
type SVRConfig = classifier.SVRConfig

// Model is a trained linear model.
type Model = classifier.Model

// Summary describes how one fit ended.
type Summary = classifier.Summary

// Common errors.
var (
	ErrUnknownAlgorithm = classifier.ErrUnknownAlgorithm
	ErrUnknownPenalty   = classifier.ErrUnknownPenalty
	ErrUnknownLoss      = classifier.ErrUnknownLoss
	ErrUnsupported      = classifier.ErrUnsupported
	ErrTooFewClasses    = classifier.ErrTooFewClasses
	ErrNotClassifier    = classifier.ErrNotClassifier
	ErrModelMismatch    = classifier.ErrModelMismatch
)

// ParseAlgorithm accepts an algorithm name or numeric code.
func ParseAlgorithm(s string) (Algorithm, error) {
	return classifier.ParseAlgorithm(s)
}

// ParseSVMLoss accepts "squared-hinge", "hinge" or "huber-hinge".
func ParseSVMLoss(s string) (SVMLoss, error) {
	return classifier.ParseSVMLoss(s)
}

// ParsePenalty accepts "l1" or "l2".
func ParsePenalty(s string) (Penalty, error) {
	return classifier.ParsePenalty(s)
}

// Algorithms returns every supported algorithm.
func Algorithms() []Algorithm {
	return classifier.Algorithms()
}

// DefaultSVMConfig returns a squared-hinge SVM config.
func DefaultSVMConfig() SVMConfig {
	return classifier.DefaultSVMConfig()
}

// DefaultSVRConfig returns an ε-insensitive SVR config.
func DefaultSVRConfig() SVRConfig {
	return classifier.DefaultSVRConfig()
}

// TrainLogisticRegression trains a logistic-regression classifier.
func TrainLogisticRegression(ds *dataset.Dataset, cfg Config) (*Model, error) {
	return classifier.TrainLogisticRegression(ds, cfg)
}

// TrainSVM trains a linear SVM classifier.
func TrainSVM(ds *dataset.Dataset, cfg SVMConfig) (*Model, error) {
	return classifier.TrainSVM(ds, cfg)
}

// TrainSVR trains a linear SVM regressor.
func TrainSVR(ds *dataset.Dataset, cfg SVRConfig) (*Model, error) {
	return classifier.TrainSVR(ds, cfg)
}

// TrainLeastSquares trains a ridge or lasso regressor.
func TrainLeastSquares(ds *dataset.Dataset, cfg Config) (*Model, error) {
	return classifier.TrainLeastSquares(ds, cfg)
}

// Load reads a model file.
func Load(path string) (*Model, error) {
	return classifier.Load(path)
}

// Decode reads a model from r.
func Decode(r io.Reader) (*Model, error) {
	return classifier.Decode(r)
}
