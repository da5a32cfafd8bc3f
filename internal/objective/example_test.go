package objective_test

import (
	"fmt"

	"github.com/born-ml/convex/internal/dataset"
	"github.com/born-ml/convex/internal/linalg"
	"github.com/born-ml/convex/internal/objective"
)

func ExampleNewL2Logistic() {
	ds, err := dataset.New([]dataset.Feature{
		dataset.NewDenseFeature([]float64{1, 0}),
		dataset.NewDenseFeature([]float64{0, 1}),
	}, linalg.Vector{1, -1})
	if err != nil {
		panic(err)
	}

	obj := objective.NewL2Logistic(ds.NumFeatures, ds.Features, ds.Labels, 1.0)
	f, g := obj.ValueGradient(linalg.NewVector(obj.Dim()))
	fmt.Printf("%.4f %v\n", f, g)
	// Output: 1.3863 [-0.5 0.5]
}
