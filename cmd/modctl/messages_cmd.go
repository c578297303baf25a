package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alfredjeanlab/modflags/internal/antidelete"
	"github.com/alfredjeanlab/modflags/internal/client"
	"github.com/alfredjeanlab/modflags/internal/model"
	"github.com/alfredjeanlab/modflags/internal/ui"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [file]",
	Short: "Run a message deletion through anti-delete",
	Long: `Read a JSON array of messages (from file, or stdin when omitted) and
report what the server would do with their deletion: keep them with a
deleted marker, or remove them.`,
	GroupID: "messages",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}
		msgs, err := readMessages(in)
		if err != nil {
			return err
		}

		var deletedBy *model.PeerID
		if by, _ := cmd.Flags().GetString("by"); by != "" {
			p, err := parsePeer(by)
			if err != nil {
				return err
			}
			deletedBy = &p
		}

		d, err := settingsClient.DeleteMessages(context.Background(), msgs, deletedBy)
		if err != nil {
			return fmt.Errorf("deleting messages: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), d)
		}
		printDecision(cmd.OutOrStdout(), d)
		return nil
	},
}

func readMessages(r io.Reader) ([]model.Message, error) {
	var msgs []model.Message
	if err := json.NewDecoder(r).Decode(&msgs); err != nil {
		return nil, fmt.Errorf("reading messages: %w", err)
	}
	if len(msgs) == 0 {
		return nil, fmt.Errorf("no messages given")
	}
	return msgs, nil
}

func printDecision(w io.Writer, d *antidelete.Decision) {
	if !d.Preserve {
		fmt.Fprintf(w, "anti-delete is %s: %d message(s) removed\n", ui.RenderFlag(false), len(d.Remove))
		return
	}
	fmt.Fprintf(w, "anti-delete is %s: %d message(s) kept, %d newly marked\n", ui.RenderFlag(true), len(d.Messages), d.Marked)
	for _, m := range d.Messages {
		text, caption := antidelete.Render(m, nil)
		fmt.Fprintf(w, "  #%d  %s", m.ID.ID, text)
		if caption != "" {
			fmt.Fprintf(w, "  %s", ui.RenderMuted(caption))
		}
		fmt.Fprintln(w)
	}
}

// parsePeer parses "<kind>:<id>", e.g. "user:42".
func parsePeer(s string) (model.PeerID, error) {
	kind, num, ok := strings.Cut(s, ":")
	if !ok {
		return model.PeerID{}, fmt.Errorf("invalid peer %q (want <kind>:<id>)", s)
	}
	ns, ok := model.ParseNamespace(kind)
	if !ok {
		return model.PeerID{}, fmt.Errorf("unknown peer kind %q", kind)
	}
	id, err := strconv.ParseInt(num, 10, 64)
	if err != nil {
		return model.PeerID{}, fmt.Errorf("invalid peer id %q", num)
	}
	return model.PeerID{Namespace: ns, ID: id}, nil
}

var peerCmd = &cobra.Command{
	Use:     "peer <kind>:<id>",
	Short:   "Show the resolver label for a peer",
	GroupID: "messages",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := parsePeer(args[0])
		if err != nil {
			return err
		}
		label, err := settingsClient.PeerLabel(context.Background(), p)
		if client.IsNotFound(err) {
			return fmt.Errorf("resolver is disabled (enable it with: modctl set resolver on)")
		}
		if err != nil {
			return fmt.Errorf("resolving peer: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), label)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", label.Label, ui.RenderMuted("copy: "+label.Copyable))
		return nil
	},
}

func init() {
	deleteCmd.Flags().String("by", "", "peer that deleted the messages, as <kind>:<id>")
}
