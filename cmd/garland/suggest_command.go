package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"garland/internal/services/musicllm"
)

func newSuggestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <theme>",
		Short: "Ask the music model for track suggestions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			client := musicllm.NewClient(musicllm.Config{
				APIKey:         cfg.Music.APIKey,
				BaseURL:        cfg.Music.BaseURL,
				Model:          cfg.Music.Model,
				Referer:        cfg.Music.Referer,
				Title:          cfg.Music.Title,
				TimeoutSeconds: cfg.Music.TimeoutSeconds,
			})
			if !client.Configured() {
				return errors.New("music suggestions require music.api_key in the config file")
			}

			suggestions, err := client.Suggest(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, suggestion := range suggestions {
				fmt.Fprintf(out, "%d. %s\n", i+1, suggestion)
			}
			return nil
		},
	}
}
