package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"garland/internal/catalog"
	"garland/internal/config"
)

func newTemplatesCommand(ctx *commandContext) *cobra.Command {
	templatesCmd := &cobra.Command{
		Use:   "templates",
		Short: "Inspect the template catalog",
	}

	templatesCmd.AddCommand(newTemplatesListCommand(ctx))
	templatesCmd.AddCommand(newTemplatesShowCommand(ctx))

	return templatesCmd
}

func newTemplatesListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List catalog templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCatalogStore(func(cfg *config.Config, store *catalog.Store) error {
				templates, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(templates) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Catalog is empty; run `garland seed` to load the builtin templates")
					return nil
				}

				rows := make([][]string, 0, len(templates))
				for _, tmpl := range templates {
					rows = append(rows, []string{
						tmpl.ID,
						tmpl.Title,
						tmpl.Theme,
						strconv.Itoa(tmpl.DurationSeconds) + "s",
						strings.Join(tmpl.Tags, ", "),
					})
				}
				out := renderTable(
					[]column{col("ID"), col("Title"), col("Theme"), numericCol("Duration"), col("Tags")},
					rows,
				)
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
}

func newTemplatesShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <template-id>",
		Short: "Show one template with its fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCatalogStore(func(cfg *config.Config, store *catalog.Store) error {
				tmpl, err := store.GetByID(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if tmpl == nil {
					return fmt.Errorf("template %s not found", args[0])
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s (%s)\n", tmpl.Title, tmpl.ID)
				if tmpl.Description != "" {
					fmt.Fprintln(out, tmpl.Description)
				}
				fmt.Fprintf(out, "Theme: %s  Duration: %ds  Composition: %s\n", tmpl.Theme, tmpl.DurationSeconds, tmpl.CompositionID)

				rows := make([][]string, 0, len(tmpl.Fields))
				for _, field := range tmpl.Fields {
					rows = append(rows, []string{
						field.Name,
						field.Label,
						string(field.Kind),
						yesNo(field.Required),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]column{col("Field"), col("Label"), col("Kind"), col("Required")},
					rows,
				))
				return nil
			})
		},
	}
}
