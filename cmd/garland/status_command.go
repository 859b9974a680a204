package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"garland/internal/config"
	"garland/internal/invite"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show invitation counts by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withInviteStore(func(cfg *config.Config, store *invite.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}

				total := 0
				statuses := invite.AllStatuses()
				rows := make([][]string, 0, len(statuses)+1)
				for _, status := range statuses {
					count := stats[status]
					total += count
					if count == 0 {
						continue
					}
					rows = append(rows, []string{string(status), strconv.Itoa(count)})
				}
				if total == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No invitations yet")
					return nil
				}
				rows = append(rows, []string{"total", strconv.Itoa(total)})

				out := renderTable(
					[]column{col("Status"), numericCol("Count")},
					rows,
				)
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
}
