package main

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/modflags/internal/ui"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:     "health",
	Short:   "Check the health of the modflags server",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := settingsClient.Health(context.Background())
		if err != nil {
			return fmt.Errorf("checking health: %w", err)
		}

		if jsonOutput {
			if err := printJSON(cmd.OutOrStdout(), h); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Health: %s\n", h.Status)
			fmt.Fprintf(cmd.OutOrStdout(), "Key:    %s\n", h.SettingsKey)
			if h.LoadError != "" {
				fmt.Fprintln(cmd.OutOrStdout(), ui.RenderWarning("stored settings unreadable, using defaults: "+h.LoadError))
			}
		}

		if h.Status != "ok" {
			return fmt.Errorf("unhealthy: %s", h.Status)
		}
		return nil
	},
}
