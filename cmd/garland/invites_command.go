package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"garland/internal/catalog"
	"garland/internal/config"
	"garland/internal/display"
	"garland/internal/invite"
)

func newInvitesCommand(ctx *commandContext) *cobra.Command {
	invitesCmd := &cobra.Command{
		Use:   "invites",
		Short: "Inspect stored invitations",
	}

	invitesCmd.AddCommand(newInvitesListCommand(ctx))
	invitesCmd.AddCommand(newInvitesShowCommand(ctx))
	invitesCmd.AddCommand(newInvitesRemoveCommand(ctx))

	return invitesCmd
}

func newInvitesListCommand(ctx *commandContext) *cobra.Command {
	var userFilter string
	var statusFilters []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List invitations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withInviteStore(func(cfg *config.Config, store *invite.Store) error {
				var statuses []invite.Status
				for _, value := range statusFilters {
					status, ok := invite.ParseStatus(value)
					if !ok {
						return fmt.Errorf("unknown status %q (expected one of %s)", value, statusNames())
					}
					statuses = append(statuses, status)
				}

				var invites []*invite.Invite
				var err error
				if strings.TrimSpace(userFilter) != "" {
					invites, err = store.ListByUser(cmd.Context(), strings.TrimSpace(userFilter))
				} else {
					invites, err = store.List(cmd.Context(), statuses...)
				}
				if err != nil {
					return err
				}
				if len(invites) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No invitations found")
					return nil
				}

				rows := make([][]string, 0, len(invites))
				for _, inv := range invites {
					state := display.ForInvite(inv, nil)
					detail := state.Detail
					if detail == "" && inv.Status == invite.StatusRendering {
						detail = state.ProgressStage
					}
					rows = append(rows, []string{
						inv.ID,
						inv.UserID,
						inv.TemplateID,
						state.Label,
						detail,
					})
				}
				out := renderTable(
					[]column{col("ID"), col("User"), col("Template"), col("Status"), col("Detail")},
					rows,
				)
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&userFilter, "user", "", "Only show invitations owned by this user")
	cmd.Flags().StringSliceVar(&statusFilters, "status", nil, "Only show invitations with these statuses")
	return cmd
}

func newInvitesShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <invite-id>",
		Short: "Show one invitation in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withInviteStore(func(cfg *config.Config, store *invite.Store) error {
				inv, err := store.GetByID(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if inv == nil {
					return fmt.Errorf("invitation %s not found", args[0])
				}

				var tmpl *catalog.Template
				catalogStore, err := catalog.OpenStore(cfg)
				if err == nil {
					tmpl, _ = catalogStore.GetByID(cmd.Context(), inv.TemplateID)
					catalogStore.Close()
				}

				state := display.ForInvite(inv, tmpl)
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				fmt.Fprintf(out, "Invitation %s\n", inv.ID)
				fmt.Fprintln(out, renderStatusLine("Status", statusKindFor(inv.Status), state.Label, colorize))
				fmt.Fprintln(out, renderStatusLine("Owner", statusInfo, inv.UserID, colorize))
				templateLabel := inv.TemplateID
				if state.TemplateTitle != "" {
					templateLabel = state.TemplateTitle
				}
				fmt.Fprintln(out, renderStatusLine("Template", statusInfo, templateLabel, colorize))
				if inv.MusicChoice != "" {
					fmt.Fprintln(out, renderStatusLine("Music", statusInfo, inv.MusicChoice, colorize))
				}
				if state.ProgressStage != "" {
					progress := fmt.Sprintf("%s (%.0f%%)", state.ProgressStage, state.ProgressPercent)
					fmt.Fprintln(out, renderStatusLine("Progress", statusInfo, progress, colorize))
				}
				if state.VideoURL != "" {
					fmt.Fprintln(out, renderStatusLine("Video", statusOK, state.VideoURL, colorize))
				}
				if state.Detail != "" {
					fmt.Fprintln(out, renderStatusLine("Error", statusError, state.Detail, colorize))
				}

				if len(inv.Values) > 0 {
					rows := make([][]string, 0, len(inv.Values))
					for _, name := range sortedKeys(inv.Values) {
						rows = append(rows, []string{name, inv.Values[name]})
					}
					fmt.Fprintln(out, renderTable(
						[]column{col("Field"), col("Value")},
						rows,
					))
				}
				return nil
			})
		},
	}
}

func newInvitesRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <invite-id>",
		Short: "Delete an invitation record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withInviteStore(func(cfg *config.Config, store *invite.Store) error {
				removed, err := store.Remove(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("invitation %s not found", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed invitation %s\n", args[0])
				return nil
			})
		},
	}
}

func statusKindFor(status invite.Status) statusKind {
	switch status {
	case invite.StatusRendered:
		return statusOK
	case invite.StatusError:
		return statusError
	case invite.StatusRendering:
		return statusWarn
	default:
		return statusInfo
	}
}

func statusNames() string {
	statuses := invite.AllStatuses()
	names := make([]string, 0, len(statuses))
	for _, status := range statuses {
		names = append(names, string(status))
	}
	return strings.Join(names, ", ")
}
