package main

import (
	"os"

	"github.com/alfredjeanlab/modflags/internal/client"
	"github.com/alfredjeanlab/modflags/internal/ui"
	"github.com/spf13/cobra"
)

var (
	httpURL    string
	authToken  string
	jsonOutput bool
	noColor    bool

	settingsClient client.SettingsClient
)

func defaultHTTPURL() string {
	if s := os.Getenv("MODFLAGS_HTTP_URL"); s != "" {
		return s
	}
	if u := activeRemoteURL(); u != "" {
		return u
	}
	return "http://localhost:8080"
}

func defaultToken() string {
	if s := os.Getenv("MODFLAGS_TOKEN"); s != "" {
		return s
	}
	return activeRemoteToken()
}

// skipClient overrides the root PersistentPreRunE for commands that work
// without a server.
func skipClient(cmd *cobra.Command, args []string) error {
	applyColor()
	return nil
}

func applyColor() {
	if noColor || !ui.ShouldUseColor(os.Stdout) {
		ui.ForceNoColor()
	}
}

var rootCmd = &cobra.Command{
	Use:           "modctl <command>",
	Short:         "Manage mod settings on a modflags server",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		applyColor()
		settingsClient = client.NewHTTPClient(httpURL, authToken)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if settingsClient != nil {
			settingsClient.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&httpURL, "http-url", defaultHTTPURL(), "HTTP server URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", defaultToken(), "bearer token for the server")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddGroup(
		&cobra.Group{ID: "settings", Title: "Settings:"},
		&cobra.Group{ID: "messages", Title: "Messages:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false
	rootCmd.SetHelpFunc(colorizedHelpFunc())

	// Settings
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(watchCmd)

	// Messages
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(peerCmd)
	rootCmd.AddCommand(formatCmd)

	// System
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(remoteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
