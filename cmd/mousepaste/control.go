package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/VachaganGrigoryan/mac-mouse-paste/internal/control"
	"github.com/VachaganGrigoryan/mac-mouse-paste/internal/ipc"
	"github.com/VachaganGrigoryan/mac-mouse-paste/internal/message"
)

const controlTimeout = 5 * time.Second

// controlFunc issues one request against a running daemon.
type controlFunc func(ctx context.Context, c *control.Client, v *viper.Viper) (*message.Status, error)

func newControlCmd(use, short string, do controlFunc, withSuppress bool) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), controlTimeout)
			defer cancel()
			client := control.NewClient()
			if v.GetBool("grpc") {
				client = control.NewGRPCClient()
			}
			st, err := do(ctx, client, v)
			if err != nil {
				return err
			}
			if v.GetBool("json") {
				return printJSON(cmd.OutOrStdout(), st)
			}
			printStatus(cmd.OutOrStdout(), st)
			return nil
		},
	}

	f := cmd.Flags()
	if withSuppress {
		f.Bool("suppress-paste", false, "capture selections but ignore the paste button")
	}
	f.Bool("json", false, "output raw JSON")
	f.Bool("grpc", false, "talk to the daemon over gRPC instead of the line protocol")
	addConfigFlag(cmd)

	return cmd
}

func newStartCmd() *cobra.Command {
	return newControlCmd("start", "Start capturing in the running daemon",
		func(ctx context.Context, c *control.Client, v *viper.Viper) (*message.Status, error) {
			return c.Start(ctx, v.GetBool("suppress-paste"))
		}, true)
}

func newStopCmd() *cobra.Command {
	return newControlCmd("stop", "Stop capturing; the daemon stays up",
		func(ctx context.Context, c *control.Client, _ *viper.Viper) (*message.Status, error) {
			return c.Stop(ctx)
		}, false)
}

func newToggleCmd() *cobra.Command {
	return newControlCmd("toggle", "Start or stop capturing",
		func(ctx context.Context, c *control.Client, v *viper.Viper) (*message.Status, error) {
			return c.Toggle(ctx, v.GetBool("suppress-paste"))
		}, true)
}

func newStatusCmd() *cobra.Command {
	cmd := newControlCmd("status", "Show the daemon's engine state",
		func(ctx context.Context, c *control.Client, _ *viper.Viper) (*message.Status, error) {
			return c.Status(ctx)
		}, false)
	cmd.Long = `Shows whether the engine is capturing, whether a selection is pending,
and capture/paste counters. The request goes over the control socket
(` + ipc.SocketPath() + `).`
	return cmd
}

func printJSON(w io.Writer, st *message.Status) error {
	enc, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(enc))
	return err
}

func printStatus(out io.Writer, st *message.Status) {
	w := tabwriter.NewWriter(out, 1, 0, 2, ' ', 0)

	state := "stopped"
	if st.Running {
		state = "running"
		if st.SuppressPaste {
			state = "running (paste suppressed)"
		}
	}
	fmt.Fprintf(w, "Engine:\t%s\n", state)
	if st.Running && !st.StartedAt.IsZero() {
		fmt.Fprintf(w, "Started:\t%s (%s)\n", st.StartedAt.UTC().Format(time.RFC3339), fmtAge(st.StartedAt))
	}
	fmt.Fprintf(w, "Clipboard:\t%s\n", st.Clipboard)

	pending := "none"
	if st.Pending {
		pending = fmt.Sprintf("%d chars", st.PendingLen)
		if st.LockUntilPaste {
			pending += " (locked until paste)"
		}
	}
	fmt.Fprintf(w, "Selection:\t%s\n", pending)
	fmt.Fprintf(w, "Captures:\t%d (%d empty, %d skipped while locked)\n", st.Captures, st.EmptyCaptures, st.SkippedLocked)
	fmt.Fprintf(w, "Pastes:\t%d\n", st.Pastes)
	if st.InstallFailures > 0 {
		fmt.Fprintf(w, "Hook failures:\t%d\n", st.InstallFailures)
	}
	if st.LastError != "" {
		fmt.Fprintf(w, "Last error:\t%s\n", st.LastError)
	}
	_ = w.Flush()
}

func fmtAge(t time.Time) string {
	age := time.Since(t).Round(time.Second)
	if age < time.Minute {
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	}
	if age < time.Hour {
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	}
	return t.Format("15:04:05")
}
