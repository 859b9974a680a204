package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"garland/internal/catalog"
	"garland/internal/config"
)

func newSeedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the builtin templates into the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCatalogStore(func(cfg *config.Config, store *catalog.Store) error {
				count, err := catalog.Seed(cmd.Context(), store)
				if err != nil {
					return fmt.Errorf("seed catalog: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d templates into %s\n", count, cfg.DatabasePath())
				return nil
			})
		},
	}
}
