// Package ipc locates and opens the local control socket that the mousepaste
// daemon serves and the CLI sub-commands (start/stop/toggle/status) dial.
package ipc

import (
	"net"
	"os"
	"time"
)

const dialTimeout = 2 * time.Second

// SocketPath returns the platform-appropriate path for the control socket.
//
//   - Linux:   $XDG_RUNTIME_DIR/mousepaste.sock, else $TMPDIR/mousepaste.sock
//   - macOS:   $TMPDIR/mousepaste.sock
//   - Windows: \\.\pipe\mousepaste
//
// $MOUSEPASTE_SOCKET overrides all of these.
func SocketPath() string {
	if s := os.Getenv("MOUSEPASTE_SOCKET"); s != "" {
		return s
	}
	return socketPath()
}

// IsRunning reports whether a daemon appears to be listening on the control
// socket. It does a cheap dial-and-close; no data is exchanged.
func IsRunning() bool {
	c, err := Dial()
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen creates and returns a net.Listener on the control socket.
func Listen() (net.Listener, error) {
	return listenIPC(SocketPath())
}

// Dial connects to the control socket.
func Dial() (net.Conn, error) {
	return dialIPC(SocketPath())
}
