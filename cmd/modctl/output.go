package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/alfredjeanlab/modflags/internal/client"
	"github.com/alfredjeanlab/modflags/internal/model"
	"github.com/alfredjeanlab/modflags/internal/screen"
	"github.com/alfredjeanlab/modflags/internal/ui"
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// printScreen renders the settings screen as text.
func printScreen(w io.Writer, sc *screen.Screen) {
	fmt.Fprintln(w, ui.RenderAccent(sc.Title))
	for _, sec := range sc.Sections {
		fmt.Fprintln(w)
		fmt.Fprintln(w, ui.RenderMuted(sec.Header))
		fmt.Fprintln(w, ui.RenderToggle(sec.Toggle.Title, sec.Toggle.Value))
		fmt.Fprintln(w, "    "+sec.Info)
	}
}

// printSettingsLine prints a one-line summary, as used by watch.
func printSettingsLine(w io.Writer, s model.Settings) {
	fmt.Fprintf(w, "resolver=%s anti-delete=%s\n", ui.RenderFlag(s.ResolverEnabled), ui.RenderFlag(s.AntiDeleteEnabled))
}

func printUpdate(w io.Writer, resp *client.UpdateResponse) {
	if !resp.Changed {
		fmt.Fprintln(w, ui.RenderMuted("no change"))
	} else {
		for _, name := range resp.Settings.Diff(resp.Previous) {
			v, _ := resp.Settings.Get(name)
			fmt.Fprintf(w, "%s: %s\n", flagLabel(name), ui.RenderFlag(v))
		}
	}
	if resp.Warning != "" {
		fmt.Fprintln(w, ui.RenderWarning("warning: "+resp.Warning))
	}
}

// flagAliases maps accepted command-line names to flag names.
var flagAliases = map[string]string{
	"resolver":          model.FlagResolver,
	"resolverenabled":   model.FlagResolver,
	"anti-delete":       model.FlagAntiDelete,
	"antidelete":        model.FlagAntiDelete,
	"anti_delete":       model.FlagAntiDelete,
	"antideleteenabled": model.FlagAntiDelete,
}

func parseFlagName(s string) (string, error) {
	if name, ok := flagAliases[strings.ToLower(s)]; ok {
		return name, nil
	}
	return "", fmt.Errorf("unknown flag %q (want resolver or anti-delete)", s)
}

func flagLabel(name string) string {
	switch name {
	case model.FlagResolver:
		return "resolver"
	case model.FlagAntiDelete:
		return "anti-delete"
	}
	return name
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes", "1", "enable", "enabled":
		return true, nil
	case "off", "false", "no", "0", "disable", "disabled":
		return false, nil
	}
	return false, fmt.Errorf("invalid value %q (want on or off)", s)
}
