package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/VachaganGrigoryan/mac-mouse-paste/internal/clip"
	"github.com/VachaganGrigoryan/mac-mouse-paste/internal/control"
	"github.com/VachaganGrigoryan/mac-mouse-paste/internal/engine"
	"github.com/VachaganGrigoryan/mac-mouse-paste/internal/hook"
	"github.com/VachaganGrigoryan/mac-mouse-paste/internal/inject"
	"github.com/VachaganGrigoryan/mac-mouse-paste/internal/ipc"
)

// watchInterval is how often the daemon checks whether the engine is still
// alive.
const watchInterval = time.Second

func newRunCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the selection daemon",
		Long: `Starts the primary-selection engine and the control socket.

Selecting text with a drag or a double click copies it into a private
buffer; the middle mouse button pastes that buffer at the pointer. The
system clipboard is restored after every capture and paste.

The daemon needs permission to observe global mouse events and to send
synthetic keystrokes (macOS: Accessibility and Input Monitoring). If the
hook cannot be installed the engine stays stopped; grant the permission
and run "mousepaste start".

Precedence (lowest → highest): defaults → config file → MOUSEPASTE_* env vars → flags`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runDaemon(cmd.Context(), v) },
	}

	addEngineFlags(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runDaemon(parent context.Context, v *viper.Viper) error {
	setupLogging(v)

	cfg, err := loadRunConfig(v)
	if err != nil {
		return err
	}

	bridge, err := clip.Open(cfg.clipboard)
	if err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}

	robot := inject.New(cfg.modifier)
	eng := engine.New(hook.NewGoHook(cfg.hookTimeout, nil), bridge, robot, cfg.engine)

	slog.Info("mousepaste starting",
		"version", Version,
		"clipboard", bridge.Name(),
		"modifier", robot.Modifier(),
		"double_click", cfg.engine.DoubleClick,
		"lock_until_paste", cfg.engine.LockUntilPaste,
		"suppress_paste", cfg.suppressPaste,
	)

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.control {
		ln, err := ipc.Listen()
		if err != nil {
			slog.Warn("control socket unavailable", "err", err)
		} else {
			slog.Info("control socket listening", "path", ipc.SocketPath())
			go func() {
				if err := control.NewServer(eng, nil).Serve(ctx, ln); err != nil {
					slog.Error("control server failed", "err", err)
				}
			}()
		}
	}

	if cfg.autostart {
		eng.Start(cfg.suppressPaste)
	}

	watchEngine(ctx, eng, watchInterval)

	slog.Info("shutting down")
	eng.Stop()
	return nil
}

// watchEngine blocks until ctx is done, logging a hint each time a hook
// install fails. Failed installs leave the engine stopped.
func watchEngine(ctx context.Context, eng control.Engine, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()

	failures := eng.Status().InstallFailures
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		st := eng.Status()
		if st.InstallFailures > failures && !st.Running {
			slog.Warn(`engine is not capturing; grant input monitoring access and run "mousepaste start"`,
				"last_error", st.LastError)
		}
		failures = st.InstallFailures
	}
}
