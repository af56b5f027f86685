//go:build !windows

package ipc

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
)

func socketPath() string {
	// Linux: prefer XDG_RUNTIME_DIR
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "mousepaste.sock")
	}
	// macOS / fallback
	return filepath.Join(os.TempDir(), "mousepaste.sock")
}

// listenIPC removes a stale socket left by a crashed run, but refuses to
// steal the socket from a live daemon.
func listenIPC(path string) (net.Listener, error) {
	if c, err := net.DialTimeout("unix", path, dialTimeout); err == nil {
		_ = c.Close()
		return nil, fmt.Errorf("%s: another mousepaste daemon is running", path)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove stale socket: %w", err)
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	// Owner-only: the socket can start and stop input injection.
	if err := os.Chmod(path, 0o600); err != nil {
		_ = ln.Close()
		return nil, fmt.Errorf("chmod socket: %w", err)
	}
	return ln, nil
}

func dialIPC(path string) (net.Conn, error) {
	return net.DialTimeout("unix", path, dialTimeout)
}
