// Package classifier trains linear classifiers and regressors with the
// solvers of packages optim and coordinate.
//
// Trainers:
//   - TrainLogisticRegression: logistic loss, L1 or L2 penalty
//   - TrainSVM: squared hinge, hinge or Huber hinge loss
//   - TrainSVR: ε-insensitive loss, plain or squared
//   - TrainLeastSquares: ridge and lasso regression
//
// Every trainer takes the algorithm from Config.Algorithm. Classification
// labels may be any set of values: two classes train one weight vector,
// more train one vector per class against the rest. Not every algorithm
// suits every objective; unsupported pairs are rejected with ErrUnsupported
// before training starts.
//
// Example usage:
//
//	ds, _ := dataset.LoadLibSVM("train.txt")
//	model, err := classifier.TrainLogisticRegression(ds, classifier.Config{
//	    Algorithm: classifier.TRON,
//	    Lambda:    0.5,
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(model.Accuracy(ds))
//	_ = model.Save("model.txt")
package classifier
