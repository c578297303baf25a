package main

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/modflags/internal/client"
	"github.com/alfredjeanlab/modflags/internal/model"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:     "get",
	Short:   "Show the mod settings screen",
	GroupID: "settings",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := settingsClient.GetScreen(context.Background())
		if err != nil {
			return fmt.Errorf("getting settings: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), sc)
		}
		printScreen(cmd.OutOrStdout(), sc)
		return nil
	},
}

var setCmd = &cobra.Command{
	Use:   "set <flag> <on|off> [<flag> <on|off>...]",
	Short: "Set one or more flags",
	Long: `Set one or more flags in a single update.

Flags are "resolver" and "anti-delete". For example:

  modctl set anti-delete on
  modctl set resolver off anti-delete on`,
	GroupID: "settings",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 || len(args)%2 != 0 {
			return fmt.Errorf("expected <flag> <on|off> pairs")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		patch, err := buildPatch(args)
		if err != nil {
			return err
		}
		resp, err := settingsClient.UpdateSettings(context.Background(), patch)
		if err != nil {
			return fmt.Errorf("updating settings: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), resp)
		}
		printUpdate(cmd.OutOrStdout(), resp)
		return nil
	},
}

// buildPatch turns <flag> <on|off> pairs into a patch. A later pair for the
// same flag wins.
func buildPatch(args []string) (client.SettingsPatch, error) {
	var patch client.SettingsPatch
	for i := 0; i+1 < len(args); i += 2 {
		name, err := parseFlagName(args[i])
		if err != nil {
			return patch, err
		}
		v, err := parseOnOff(args[i+1])
		if err != nil {
			return patch, err
		}
		switch name {
		case model.FlagResolver:
			patch.ResolverEnabled = &v
		case model.FlagAntiDelete:
			patch.AntiDeleteEnabled = &v
		}
	}
	return patch, nil
}

var toggleCmd = &cobra.Command{
	Use:     "toggle <flag>",
	Short:   "Flip a flag",
	GroupID: "settings",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := parseFlagName(args[0])
		if err != nil {
			return err
		}
		resp, err := settingsClient.Toggle(context.Background(), name)
		if err != nil {
			return fmt.Errorf("toggling %s: %w", flagLabel(name), err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), resp)
		}
		printUpdate(cmd.OutOrStdout(), resp)
		return nil
	},
}
