//go:build !windows

package ipc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocketPathOverride(t *testing.T) {
	t.Setenv("MOUSEPASTE_SOCKET", "/tmp/custom.sock")
	assert.Equal(t, "/tmp/custom.sock", SocketPath())
}

func TestSocketPathXDG(t *testing.T) {
	t.Setenv("MOUSEPASTE_SOCKET", "")
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	assert.Equal(t, "/run/user/1000/mousepaste.sock", SocketPath())
}

func TestListenDial(t *testing.T) {
	// Unix socket paths are length-limited; keep it short.
	dir, err := os.MkdirTemp("", "mp")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	t.Setenv("MOUSEPASTE_SOCKET", filepath.Join(dir, "s.sock"))

	assert.False(t, IsRunning())

	ln, err := Listen()
	require.NoError(t, err)
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			c.Close()
		}
	}()

	assert.True(t, IsRunning())

	_, err = Listen()
	assert.ErrorContains(t, err, "another mousepaste daemon")

	fi, err := os.Stat(SocketPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	require.NoError(t, ln.Close())
}

func TestListenRemovesStaleSocket(t *testing.T) {
	dir, err := os.MkdirTemp("", "mp")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	path := filepath.Join(dir, "s.sock")
	t.Setenv("MOUSEPASTE_SOCKET", path)

	require.NoError(t, os.WriteFile(path, nil, 0o600))
	ln, err := Listen()
	require.NoError(t, err)
	ln.Close()
}
