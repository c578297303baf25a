package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/alfredjeanlab/modflags/internal/format"
	"github.com/spf13/cobra"
)

var formatCmd = &cobra.Command{
	Use:     "format",
	Short:   "Render identifiers and deleted-message text",
	GroupID: "messages",
}

var formatIDCmd = &cobra.Command{
	Use:   "id <n>",
	Short: `Render an identifier label, e.g. "Channel ID: 42"`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}
		kind, _ := cmd.Flags().GetString("kind")
		resp, err := settingsClient.FormatIdentifier(context.Background(), id, kind)
		if err != nil {
			return fmt.Errorf("formatting identifier: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), resp)
		}
		fmt.Fprintln(cmd.OutOrStdout(), resp.Label)
		return nil
	},
}

var formatDeletedCmd = &cobra.Command{
	Use:   "deleted <text>",
	Short: "Render the text of a deleted message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var at *int32
		if cmd.Flags().Changed("at") {
			v, _ := cmd.Flags().GetInt32("at")
			at = &v
		}
		resp, err := settingsClient.FormatDeleted(context.Background(), args[0], at)
		if err != nil {
			return fmt.Errorf("formatting deleted text: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), resp)
		}
		fmt.Fprintln(cmd.OutOrStdout(), resp.Text)
		if resp.Caption != "" {
			fmt.Fprintln(cmd.OutOrStdout(), resp.Caption)
		}
		return nil
	},
}

var formatTimestampCmd = &cobra.Command{
	Use:   "timestamp <unix-seconds>",
	Short: "Render a deletion caption locally",
	Args:  cobra.ExactArgs(1),
	// Pure formatting; no server needed.
	PersistentPreRunE: skipClient,
	RunE: func(cmd *cobra.Command, args []string) error {
		ts, err := strconv.ParseInt(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q", args[0])
		}
		tz, _ := cmd.Flags().GetString("tz")
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return fmt.Errorf("invalid time zone %q: %w", tz, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), format.DeletedTimestamp(int32(ts), loc))
		return nil
	},
}

func init() {
	formatIDCmd.Flags().String("kind", "", "peer kind: user, group, channel or secret")
	formatDeletedCmd.Flags().Int32("at", 0, "deletion time in unix seconds")
	formatTimestampCmd.Flags().String("tz", "Local", "time zone name")

	formatCmd.AddCommand(formatIDCmd)
	formatCmd.AddCommand(formatDeletedCmd)
	formatCmd.AddCommand(formatTimestampCmd)
}
