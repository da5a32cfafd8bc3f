// Package main provides the convex command line tool: it trains linear
// classifiers and regressors from LIBSVM files and applies saved models.
package main

import (
	"os"

	"k8s.io/klog/v2"
)

const version = "v0.1.0-dev"

func main() {
	err := newRootCmd().Execute()
	klog.Flush()
	if err != nil {
		os.Exit(1)
	}
}
