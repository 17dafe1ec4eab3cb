package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ezoic/surrogo/storage"
)

func newListCmd(root *rootOptions) *cobra.Command {
	var remove string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored surrogates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			store, err := storage.NewStore(cfg.Storage.Backend, cfg.Storage.Path)
			if err != nil {
				return err
			}
			if err := store.Init(cmd.Context()); err != nil {
				return err
			}
			defer func() { _ = storage.CloseIfSupported(store) }()

			if remove != "" {
				return store.DeleteSurrogate(cmd.Context(), remove)
			}

			records, err := store.ListSurrogates(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tKIND\tCREATED\tCONFIG")
			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.Kind, r.CreatedAt.Format(time.RFC3339), r.Payload)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&remove, "delete", "", "delete the record with this ID instead of listing")
	return cmd
}
