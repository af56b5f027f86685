// Package hook installs a session-wide, listen-only pointer hook and
// delivers the events the selection engine cares about.
//
// A Monitor installs the hook and returns a Handle. Handle.Run pumps events
// into the callback on the calling goroutine until the handle is stopped.
// The callback is never invoked after Run returns. The hook only observes
// events and never blocks or modifies them.
package hook

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrPermissionDenied is returned by Install when the OS refuses the hook,
// typically because Accessibility / Input Monitoring access is not granted.
var ErrPermissionDenied = errors.New("input hook permission denied")

// Kind is a pointer event kind.
type Kind uint8

const (
	PrimaryDown Kind = iota + 1
	PrimaryUp
	PrimaryDrag
	// SecondaryDown is a press of any button other than primary and the
	// context-menu button (on a three-button mouse, the middle button).
	SecondaryDown
)

func (k Kind) String() string {
	switch k {
	case PrimaryDown:
		return "primary-down"
	case PrimaryUp:
		return "primary-up"
	case PrimaryDrag:
		return "primary-drag"
	case SecondaryDown:
		return "secondary-down"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Mask is a set of Kinds.
type Mask uint8

// MaskOf returns the mask containing kinds.
func MaskOf(kinds ...Kind) Mask {
	var m Mask
	for _, k := range kinds {
		m |= 1 << k
	}
	return m
}

// SelectionMask holds every kind the selection engine listens for.
var SelectionMask = MaskOf(PrimaryDown, PrimaryUp, PrimaryDrag, SecondaryDown)

// Has reports whether k is in m.
func (m Mask) Has(k Kind) bool { return m&(1<<k) != 0 }

func (m Mask) String() string {
	var parts []string
	for k := PrimaryDown; k <= SecondaryDown; k++ {
		if m.Has(k) {
			parts = append(parts, k.String())
		}
	}
	return strings.Join(parts, "|")
}

// Event is one observed pointer event.
type Event struct {
	Kind Kind
	X, Y int
	When time.Time
}

// Callback receives events on the goroutine running Handle.Run.
type Callback func(Event)

// Monitor installs the OS-level hook.
type Monitor interface {
	// Install registers cb for the kinds in mask. It fails with
	// ErrPermissionDenied if the hook cannot be installed, or with
	// ctx.Err() if ctx ends first.
	Install(ctx context.Context, mask Mask, cb Callback) (Handle, error)
}

// Handle is an installed hook.
type Handle interface {
	// Run delivers events until the hook is stopped, then releases the
	// callback. Run returns immediately if RequestStop was already called.
	Run()
	// RequestStop asks the hook to terminate. It is safe to call more than
	// once and from any goroutine.
	RequestStop()
	// Wake unblocks a Run that is waiting for the next event.
	Wake()
}
