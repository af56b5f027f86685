// Package clip is the text bridge to the system clipboard. Build constraints
// select the native implementation:
//
//	clip_darwin.go   - macOS via golang.design/x/clipboard + cgo changeCount
//	clip_windows.go  - Windows via golang.design/x/clipboard + GetClipboardSequenceNumber
//	clip_linux.go    - Linux via golang.design/x/clipboard, no change counter
//	clip_other.go    - no native backend
//
// command.go shells out to pbcopy/pbpaste, xclip/xsel or wl-clipboard through
// github.com/atotto/clipboard and serves as the fallback.
package clip

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrUnavailable is returned when the clipboard cannot be read or written,
// e.g. the helper utility is missing or the display is unreachable.
var ErrUnavailable = errors.New("clipboard unavailable")

// Bridge reads and writes the system clipboard as text.
type Bridge interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// Read returns the current clipboard text. An empty clipboard or one
	// holding only non-text data reads as "", nil.
	Read() (string, error)

	// Write replaces the clipboard contents with s.
	Write(s string) error
}

// ChangeCounter is implemented by bridges whose platform exposes a
// clipboard version number that increments on every change.
type ChangeCounter interface {
	ChangeCount() int64
}

// Mode selects a backend in Open.
type Mode string

const (
	ModeAuto    Mode = "auto"
	ModeNative  Mode = "native"
	ModeCommand Mode = "command"
	ModeNone    Mode = "none"
)

// ParseMode converts s to a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeNative, ModeCommand, ModeNone:
		return m, nil
	default:
		return "", fmt.Errorf("unknown clipboard backend %q (want auto|native|command|none)", s)
	}
}

// Open returns the bridge for mode. ModeAuto tries the native backend, then
// the command backend, and finally settles on the headless no-op so that the
// engine can still run (every protocol then aborts at its first read).
func Open(mode Mode) (Bridge, error) {
	switch mode {
	case ModeNative:
		return newNative()
	case ModeCommand:
		return newCommand()
	case ModeNone:
		return Headless{}, nil
	case ModeAuto, "":
	default:
		return nil, fmt.Errorf("unknown clipboard backend %q", mode)
	}

	b, err := newNative()
	if err == nil {
		return b, nil
	}
	slog.Warn("native clipboard unavailable, trying command backend", "err", err)

	b, err = newCommand()
	if err == nil {
		return b, nil
	}
	slog.Warn("clipboard unavailable, running headless", "err", err)
	return Headless{}, nil
}

// checkWrite turns golang.design/x/clipboard's Write result into an error.
// The library returns a nil channel when the write did not happen.
func checkWrite(changed <-chan struct{}) error {
	if changed == nil {
		return fmt.Errorf("%w: write rejected", ErrUnavailable)
	}
	return nil
}

// Headless is a bridge for environments without a clipboard. Every call
// fails with ErrUnavailable.
type Headless struct{}

func (Headless) Name() string          { return "headless (no-op)" }
func (Headless) Read() (string, error) { return "", ErrUnavailable }
func (Headless) Write(_ string) error  { return ErrUnavailable }
