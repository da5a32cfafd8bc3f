package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/born-ml/convex/internal/classifier"
	"github.com/born-ml/convex/internal/dataset"
)

type predictCmd struct {
	output      string
	probability bool
}

func newPredictCmd() *cobra.Command {
	c := &predictCmd{}
	cmd := &cobra.Command{
		Use:   "predict MODEL DATA",
		Short: "Apply a saved model to a LIBSVM file",
		Example: `
  convex predict model.txt test.txt
  convex predict --probability -o scores.txt model.txt test.txt
`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd.OutOrStdout(), args[0], args[1])
		},
	}
	cmd.Flags().StringVarP(&c.output, "output", "o", "", "Write predictions to this file instead of stdout")
	cmd.Flags().BoolVar(&c.probability, "probability", false, "Print class probabilities instead of labels")
	return cmd
}

func (c *predictCmd) run(stdout io.Writer, modelPath, dataPath string) (err error) {
	model, err := classifier.Load(modelPath)
	if err != nil {
		return err
	}
	ds, err := dataset.LoadLibSVM(dataPath)
	if err != nil {
		return err
	}
	if c.probability && !model.IsClassifier() {
		return fmt.Errorf("--probability: %w", classifier.ErrNotClassifier)
	}

	out := stdout
	if c.output != "" {
		file, createErr := os.Create(c.output)
		if createErr != nil {
			return fmt.Errorf("failed to create %s: %w", c.output, createErr)
		}
		defer func() {
			if cerr := file.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		out = file
	}

	w := bufio.NewWriter(out)
	for _, f := range ds.Features {
		if c.probability {
			p, err := model.PredictProbability(f)
			if err != nil {
				return err
			}
			for k, v := range p {
				if k > 0 {
					w.WriteByte(' ')
				}
				w.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
			}
			w.WriteByte('\n')
			continue
		}
		w.WriteString(strconv.FormatFloat(model.Predict(f), 'g', -1, 64))
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write predictions: %w", err)
	}

	name, score := scoreModel(model, ds)
	klog.Infof("%s on %s: %s = %.6g", model.Algorithm, dataPath, name, score)
	if c.output != "" {
		fmt.Fprintf(stdout, "%s = %.6g\n", name, score)
	}
	return nil
}
