//go:build darwin || linux || windows

package clip

import (
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

var (
	initOnce sync.Once
	initErr  error
)

// nativeBridge talks to the platform clipboard through golang.design/x/clipboard.
type nativeBridge struct {
	name string
}

// initNative calls clipboard.Init once per process. It is done lazily rather
// than in init() so that control sub-commands (status, start, stop), which
// never open a bridge, don't fail or log on headless hosts.
func initNative() error {
	initOnce.Do(func() {
		if err := clipboard.Init(); err != nil {
			initErr = fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	})
	return initErr
}

func (b *nativeBridge) Name() string { return b.name }

func (b *nativeBridge) Read() (string, error) {
	return string(clipboard.Read(clipboard.FmtText)), nil
}

// Write reports ErrUnavailable when the library refuses the write, which it
// signals with a nil change channel.
func (b *nativeBridge) Write(s string) error {
	return checkWrite(clipboard.Write(clipboard.FmtText, []byte(s)))
}
