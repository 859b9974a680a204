package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"garland/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Bootstrap and check the configuration file",
	}
	cmd.AddCommand(newConfigInitCommand(), newConfigValidateCommand(ctx))
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var force bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a starter configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				var err error
				if target, err = config.DefaultConfigPath(); err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
			}
			expanded, err := config.ExpandPath(target)
			if err != nil {
				return fmt.Errorf("resolve config path: %w", err)
			}

			if _, err := os.Stat(expanded); err == nil {
				if !force {
					return fmt.Errorf("%s already exists; pass --force to replace it", expanded)
				}
				if err := os.Remove(expanded); err != nil {
					return fmt.Errorf("replace existing config: %w", err)
				}
			} else if !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("check config path: %w", err)
			}

			if err := config.CreateSample(expanded); err != nil {
				return fmt.Errorf("write starter config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote starter configuration to %s\n", expanded)
			fmt.Fprintln(out, "Fill in the auth tokens and the renderer and uploader endpoints before starting the daemon.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&force, "force", false, "Replace the file if it already exists")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Check the configuration and print the resolved settings",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(strings.TrimSpace(*ctx.configFlag))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "No file found there; built-in defaults were used")
			}
			fmt.Fprintln(out, "Configuration valid")
			fmt.Fprintf(out, "  data dir:   %s\n", cfg.Paths.DataDir)
			fmt.Fprintf(out, "  log dir:    %s\n", cfg.Paths.LogDir)
			apiBind := cfg.Paths.APIBind
			if apiBind == "" {
				apiBind = "disabled"
			}
			fmt.Fprintf(out, "  api bind:   %s\n", apiBind)
			fmt.Fprintf(out, "  workers:    %d\n", cfg.Workflow.WorkerCount)
			return nil
		},
	}
}
