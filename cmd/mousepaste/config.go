package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/VachaganGrigoryan/mac-mouse-paste/internal/clip"
	"github.com/VachaganGrigoryan/mac-mouse-paste/internal/engine"
	"github.com/VachaganGrigoryan/mac-mouse-paste/internal/hook"
	"github.com/VachaganGrigoryan/mac-mouse-paste/internal/logging"
)

// envKeyReplacer maps flag names to env var suffixes: double-click → DOUBLE_CLICK.
var envKeyReplacer = strings.NewReplacer("-", "_")

// bindViper wires a command's flags into a viper instance with the standard
// config file search order and MOUSEPASTE_* env var prefix.
//
// Precedence (lowest → highest): defaults → config file → MOUSEPASTE_* env vars → flags
func bindViper(cmd *cobra.Command, v *viper.Viper) error {
	configFlag, _ := cmd.Flags().GetString("config")
	if configFlag != "" {
		v.SetConfigFile(configFlag)
	} else {
		v.SetConfigName("mousepaste")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc/mousepaste/")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(fmt.Sprintf("%s/.config/mousepaste", home))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("config: %w", err)
		}
	}

	v.SetEnvPrefix("MOUSEPASTE")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// addLoggingFlags adds the standard logging flags to a command.
func addLoggingFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-background", false, "run interactively: tinter logs + debug level")
	cmd.Flags().String("log-format", "auto", "log format: auto|text|json")
	cmd.Flags().String("log-level", "", "log level: debug|info|warn|error (default: info for service, debug for interactive)")
}

// addConfigFlag adds the --config flag to a command.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to config file (overrides auto-discovery)")
}

// addEngineFlags adds the engine tuning flags used by "run".
func addEngineFlags(cmd *cobra.Command) {
	def := engine.DefaultOptions()
	f := cmd.Flags()
	f.Bool("suppress-paste", false, "capture selections but ignore the paste button")
	f.Bool("lock-until-paste", def.LockUntilPaste, "keep a captured selection until it is pasted")
	f.Duration("double-click", def.DoubleClick, "double-click window")
	f.Duration("copy-wait", def.CopyWait, "wait after the synthetic copy before reading the clipboard")
	f.Duration("focus-wait", def.FocusWait, "wait between the focus click and the synthetic paste")
	f.Duration("paste-wait", def.PasteWait, "wait after the synthetic paste before restoring the clipboard")
	f.Bool("poll-change-count", false, "end copy-wait early when the clipboard change counter moves (macOS, Windows)")
	f.String("clipboard", string(clip.ModeAuto), "clipboard backend: auto|native|command|none")
	f.String("modifier", "", "shortcut modifier for copy/paste (default: cmd on macOS, ctrl elsewhere)")
	f.Duration("hook-timeout", hook.DefaultEnableTimeout, "how long to wait for the OS to enable the input hook")
	f.Bool("autostart", true, "start capturing as soon as the daemon is up")
	f.Bool("control", true, "serve the control socket for start/stop/status")
}

// setupLogging reads logging flags from viper and configures slog.
func setupLogging(v *viper.Viper) {
	interactive := v.GetBool("no-background") || logging.IsTTY(os.Stderr)
	resolveLogging(interactive, v.GetString("log-format"), v.GetString("log-level"))
}

// runConfig is the validated configuration of the "run" command.
type runConfig struct {
	engine        engine.Options
	suppressPaste bool
	clipboard     clip.Mode
	modifier      string
	hookTimeout   time.Duration
	autostart     bool
	control       bool
}

func loadRunConfig(v *viper.Viper) (runConfig, error) {
	mode, err := clip.ParseMode(v.GetString("clipboard"))
	if err != nil {
		return runConfig{}, err
	}
	cfg := runConfig{
		engine: engine.Options{
			LockUntilPaste:  v.GetBool("lock-until-paste"),
			DoubleClick:     v.GetDuration("double-click"),
			CopyWait:        v.GetDuration("copy-wait"),
			FocusWait:       v.GetDuration("focus-wait"),
			PasteWait:       v.GetDuration("paste-wait"),
			PollChangeCount: v.GetBool("poll-change-count"),
		},
		suppressPaste: v.GetBool("suppress-paste"),
		clipboard:     mode,
		modifier:      v.GetString("modifier"),
		hookTimeout:   v.GetDuration("hook-timeout"),
		autostart:     v.GetBool("autostart"),
		control:       v.GetBool("control"),
	}

	if cfg.engine.DoubleClick <= 0 {
		return runConfig{}, fmt.Errorf("double-click must be positive, got %s", cfg.engine.DoubleClick)
	}
	if cfg.engine.DoubleClick > 5*time.Second {
		return runConfig{}, fmt.Errorf("double-click %s is unreasonably long (max 5s)", cfg.engine.DoubleClick)
	}
	for name, d := range map[string]time.Duration{
		"copy-wait":  cfg.engine.CopyWait,
		"focus-wait": cfg.engine.FocusWait,
		"paste-wait": cfg.engine.PasteWait,
	} {
		// Waits run on the hook thread; long ones get the hook disabled.
		if d < 0 || d > time.Second {
			return runConfig{}, fmt.Errorf("%s must be between 0 and 1s, got %s", name, d)
		}
	}
	if cfg.hookTimeout <= 0 {
		cfg.hookTimeout = hook.DefaultEnableTimeout
	}
	return cfg, nil
}
