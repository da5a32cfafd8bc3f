// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package dataset provides labeled training data: sparse and dense feature
// vectors, datasets, and readers for LIBSVM files.
//
// Example:
//
//	ds, err := dataset.LoadLibSVM("heart_scale")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	train, test := ds.Split(0.8, 1)
package dataset

import (
	"io"

	"github.com/born-ml/convex/internal/dataset"
	"github.com/born-ml/convex/internal/linalg"
)

// Feature is a single example's feature vector.
type Feature = dataset.Feature

// SparseFeature stores the non-zero entries of a feature vector.
type SparseFeature = dataset.SparseFeature

// DenseFeature stores every entry of a feature vector.
type DenseFeature = dataset.DenseFeature

// Dataset is a labeled collection of examples.
type Dataset = dataset.Dataset

// ParseError describes a malformed line in a data file.
type ParseError = dataset.ParseError

// Common errors.
var (
	ErrEmptyDataset      = dataset.ErrEmptyDataset
	ErrInvalidFeature    = dataset.ErrInvalidFeature
	ErrLabelMismatch     = dataset.ErrLabelMismatch
	ErrDimensionMismatch = dataset.ErrDimensionMismatch
	ErrBadHeader         = dataset.ErrBadHeader
)

// New builds a dataset and validates it.
func New(features []Feature, labels linalg.Vector) (*Dataset, error) {
	return dataset.New(features, labels)
}

// NewSparseFeature builds a validated sparse feature.
func NewSparseFeature(index []int, value []float64, numFeatures int) (*SparseFeature, error) {
	return dataset.NewSparseFeature(index, value, numFeatures)
}

// NewDenseFeature wraps values as a dense feature.
func NewDenseFeature(values []float64) *DenseFeature {
	return dataset.NewDenseFeature(values)
}

// Densify converts any feature to its dense form.
func Densify(f Feature) *DenseFeature {
	return dataset.Densify(f)
}

// ReadLibSVM parses LIBSVM text ("label idx:val ..."). Indices are used as
// given.
func ReadLibSVM(r io.Reader) (*Dataset, error) {
	return dataset.ReadLibSVM(r)
}

// LoadLibSVM reads a LIBSVM file.
func LoadLibSVM(path string) (*Dataset, error) {
	return dataset.LoadLibSVM(path)
}

// WriteLibSVM writes d in LIBSVM format.
func WriteLibSVM(w io.Writer, d *Dataset) error {
	return dataset.WriteLibSVM(w, d)
}

// LoadSparsePair reads a sparse feature matrix and a label file.
func LoadSparsePair(featurePath, labelPath string) (*Dataset, error) {
	return dataset.LoadSparsePair(featurePath, labelPath)
}
