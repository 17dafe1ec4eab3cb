package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ezoic/surrogo/storage"
	"github.com/ezoic/surrogo/surrogates"
)

func newFitCmd(root *rootOptions) *cobra.Command {
	var (
		dataPath string
		save     bool
	)
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit the configured surrogate and report the fitted transforms",
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
			if err := p.surrogate.Fit(p.space, p.objective, df); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ft, _ := p.surrogate.Transforms()
			fmt.Fprintf(out, "surrogate:      %s\n", p.surrogate.Kind())
			fmt.Fprintf(out, "measurements:   %d\n", df.Len())
			fmt.Fprintf(out, "inputs:         %v\n", p.space.CompRepColumns())
			fmt.Fprintf(out, "output scaling: %s\n", ft.Output())
			if gp, ok := p.surrogate.(*surrogates.GaussianProcessSurrogate); ok {
				if hp, ok := gp.Hyperparameters(); ok {
					fmt.Fprintf(out, "lengthscales:   %.4g\n", hp.Lengthscales)
					fmt.Fprintf(out, "outputscale:    %.4g\n", hp.Outputscale)
					fmt.Fprintf(out, "noise:          %.4g\n", hp.Noise)
				}
			}

			if !save {
				return nil
			}
			id, err := saveSurrogate(cmd, cfg.Storage.Backend, cfg.Storage.Path, p.surrogate)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "saved:          %s\n", id)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "measurements CSV")
	cmd.Flags().BoolVar(&save, "save", false, "store the surrogate configuration")
	return cmd
}

func saveSurrogate(cmd *cobra.Command, backend, path string, s surrogates.Surrogate) (string, error) {
	store, err := storage.NewStore(backend, path)
	if err != nil {
		return "", err
	}
	if err := store.Init(cmd.Context()); err != nil {
		return "", err
	}
	defer func() { _ = storage.CloseIfSupported(store) }()

	record, err := storage.NewRecord(s)
	if err != nil {
		return "", err
	}
	if err := store.SaveSurrogate(cmd.Context(), record); err != nil {
		return "", err
	}
	return record.ID, nil
}
