package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ezoic/surrogo/core/frame"
	"github.com/ezoic/surrogo/surrogates"
)

func newPredictCmd(root *rootOptions) *cobra.Command {
	var dataPath, candidatesPath, outPath string
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Fit the surrogate and print posterior mean and standard deviation for candidates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			p, err := newProblem(cfg)
			if err != nil {
				return err
			}
			df, err := readFrame(dataPath)
			if err != nil {
				return err
			}
			candidates, err := readFrame(candidatesPath)
			if err != nil {
				return err
			}
			if err := p.surrogate.Fit(p.space, p.objective, df); err != nil {
				return err
			}
			post, err := p.surrogate.Posterior(candidates)
			if err != nil {
				return err
			}
			result, err := appendPosterior(candidates, outputColumn(p.objective), post)
			if err != nil {
				return err
			}

			if outPath == "" {
				return frame.WriteCSV(cmd.OutOrStdout(), result)
			}
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			if err := frame.WriteCSV(f, result); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "measurements CSV")
	cmd.Flags().StringVar(&candidatesPath, "candidates", "", "candidates CSV")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output CSV (default stdout)")
	return cmd
}

// appendPosterior adds <name>_mean and <name>_std columns to candidates.
func appendPosterior(candidates *frame.Frame, name string, post *surrogates.Posterior) (*frame.Frame, error) {
	means := make([]frame.Value, post.Len())
	stds := make([]frame.Value, post.Len())
	for i, s := range post.Stddev() {
		means[i] = frame.Num(post.Mean.AtVec(i))
		stds[i] = frame.Num(s)
	}
	out, err := candidates.WithColumn(name+"_mean", means)
	if err != nil {
		return nil, err
	}
	return out.WithColumn(name+"_std", stds)
}
