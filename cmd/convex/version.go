package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/born-ml/convex/internal/classifier"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "convex %s\n", version)
		},
	}
}

func newAlgorithmsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "algorithms",
		Short: "List the training algorithms and their numeric codes",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, a := range classifier.Algorithms() {
				fmt.Fprintf(cmd.OutOrStdout(), "%2d  %s\n", int(a), a)
			}
		},
	}
}
