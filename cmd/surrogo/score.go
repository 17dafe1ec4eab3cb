package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/surrogo/config"
	"github.com/ezoic/surrogo/core/frame"
	"github.com/ezoic/surrogo/metrics"
	"github.com/ezoic/surrogo/pkg/errors"
	"github.com/ezoic/surrogo/surrogates"
)

func newScoreCmd(root *rootOptions) *cobra.Command {
	var (
		dataPath string
		workers  int
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Leave-one-out cross validation of the configured surrogate",
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
			post, yTrue, err := leaveOneOut(cmd.Context(), cfg.Surrogate, p, workers, df)
			if err != nil {
				return err
			}
			return printScores(cmd, p.surrogate.Kind(), post, yTrue)
		},
	}
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "measurements CSV")
	cmd.Flags().IntVar(&workers, "workers", runtime.GOMAXPROCS(0), "folds fitted in parallel")
	return cmd
}

// leaveOneOut fits one fresh surrogate per held out row and collects the
// held out marginal posteriors together with the objective's targets.
func leaveOneOut(ctx context.Context, sc config.SurrogateConfig, p *problem, workers int, df *frame.Frame) (*surrogates.Posterior, *mat.VecDense, error) {
	n := df.Len()
	if n < 2 {
		return nil, nil, errors.NewValueError("score", "leave-one-out needs at least two measurements")
	}
	targets, err := p.objective.Transform(df)
	if err != nil {
		return nil, nil, err
	}
	y, err := targets.Floats(outputColumn(p.objective))
	if err != nil {
		return nil, nil, err
	}

	means := make([]float64, n)
	variances := make([]float64, n)
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			train := make([]int, 0, n-1)
			for j := 0; j < n; j++ {
				if j != i {
					train = append(train, j)
				}
			}
			trainDF, err := df.Take(train)
			if err != nil {
				return err
			}
			heldOut, err := df.Take([]int{i})
			if err != nil {
				return err
			}
			s, err := config.NewSurrogate(sc)
			if err != nil {
				return err
			}
			if err := s.Fit(p.space, p.objective, trainDF); err != nil {
				return errors.Wrapf(err, "fold %d", i)
			}
			post, err := s.Posterior(heldOut)
			if err != nil {
				return errors.Wrapf(err, "fold %d", i)
			}
			means[i] = post.Mean.AtVec(0)
			variances[i] = post.Variance()[0]
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	cov := mat.NewSymDense(n, nil)
	for i, v := range variances {
		cov.SetSym(i, i, v)
	}
	return &surrogates.Posterior{Mean: mat.NewVecDense(n, means), Covariance: cov}, mat.NewVecDense(n, y), nil
}

func printScores(cmd *cobra.Command, kind surrogates.Kind, post *surrogates.Posterior, yTrue *mat.VecDense) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "surrogate: %s\n", kind)
	fmt.Fprintf(out, "folds:     %d\n", yTrue.Len())

	rmse, err := metrics.RMSE(yTrue, post.Mean)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "rmse:      %.6g\n", rmse)

	if r2, err := metrics.R2Score(yTrue, post.Mean); err == nil {
		fmt.Fprintf(out, "r2:        %.6g\n", r2)
	} else {
		fmt.Fprintf(out, "r2:        n/a\n")
	}

	nlpd, err := metrics.GaussianNLPD(post, yTrue)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "nlpd:      %.6g\n", nlpd)

	cov, err := metrics.Coverage(post, yTrue, 0.95)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "coverage:  %.3f (95%% interval)\n", cov)
	return nil
}
