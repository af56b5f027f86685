// mousepaste: X11-style primary selection for desktops that lack one.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/VachaganGrigoryan/mac-mouse-paste/internal/logging"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mousepaste",
		Short: "Select to copy, middle-click to paste",
		Long: `mousepaste emulates the X11 primary selection. Selecting text by dragging
or double-clicking stages it; a middle click pastes it under the pointer.
The regular clipboard is left exactly as it was.

Run "mousepaste run" to start the daemon. It needs Accessibility / Input
Monitoring access to observe the mouse and send keystrokes. Use
"mousepaste start/stop/toggle/status" to control a running daemon.

Config file search order (first found wins):
  /etc/mousepaste/mousepaste.toml
  $HOME/.config/mousepaste/mousepaste.toml
  path supplied via --config

All flags can be set via MOUSEPASTE_<FLAG> env vars or config-file keys.
See "mousepaste run --help" for the full flag reference.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newRunCmd(),
		newStartCmd(),
		newStopCmd(),
		newToggleCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mousepaste %s\n", Version)
		},
	}
}

// resolveLogging sets up the global slog logger after flags are parsed.
func resolveLogging(interactive bool, formatStr, levelStr string) {
	format := logging.ParseFormat(formatStr)
	level := logging.ParseLevel(levelStr)
	if levelStr == "" {
		if interactive {
			level = logging.ParseLevel("debug")
		} else {
			level = logging.ParseLevel("info")
		}
	}
	logging.Setup(format, level)
}
