package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/alfredjeanlab/modflags/internal/events"
	"github.com/alfredjeanlab/modflags/internal/model"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the settings and every change to them",
	Long: `Print the current settings and then each change as it happens.

By default the server's settings stream is followed over HTTP. With --nats
(or a NATS URL on the active remote) settings-updated events are read from
the bus instead; the first line then comes from a plain GET.`,
	GroupID: "settings",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		natsURL, _ := cmd.Flags().GetString("nats")
		if natsURL == "" {
			natsURL = os.Getenv("MODFLAGS_NATS_URL")
		}
		if natsURL == "" {
			natsURL = activeRemoteNATSURL()
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		out := cmd.OutOrStdout()
		emit := func(s model.Settings) error {
			if jsonOutput {
				return printJSON(out, s)
			}
			printSettingsLine(out, s)
			return nil
		}

		if natsURL != "" {
			return watchNATS(ctx, natsURL, emit)
		}
		err := settingsClient.StreamSettings(ctx, emit)
		if ctx.Err() != nil {
			return nil
		}
		return err
	},
}

// watchNATS prints the current settings, then each settings-updated event
// from the bus.
func watchNATS(ctx context.Context, natsURL string, emit func(model.Settings) error) error {
	sub, err := events.NewNATSSubscriber(natsURL,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("nats: disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Printf("nats: reconnected")
		}),
	)
	if err != nil {
		return fmt.Errorf("connecting to NATS: %w", err)
	}
	defer sub.Close()

	cur, err := settingsClient.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("getting settings: %w", err)
	}
	if err := emit(cur); err != nil {
		return err
	}

	return events.WatchSettings(ctx, sub, func(evt events.SettingsUpdated) {
		if err := emit(evt.Settings); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	})
}

func init() {
	watchCmd.Flags().String("nats", "", "NATS URL to read settings events from")
}
