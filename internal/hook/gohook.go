package hook

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	gohook "github.com/robotn/gohook"
)

// DefaultEnableTimeout bounds how long Install waits for the OS to confirm
// the hook before it reports ErrPermissionDenied.
const DefaultEnableTimeout = 3 * time.Second

// libuiohook button numbers as reported by gohook.
const (
	buttonPrimary = 1
	buttonMenu    = 2
)

// maskButton1 is libuiohook's MASK_BUTTON1: the primary button is held.
const maskButton1 = 1 << 8

// GoHook is the Monitor backed by github.com/robotn/gohook (libuiohook).
// libuiohook supports a single hook per process.
type GoHook struct {
	timeout time.Duration
	log     *slog.Logger
}

// NewGoHook returns a GoHook. A non-positive timeout selects DefaultEnableTimeout.
func NewGoHook(timeout time.Duration, log *slog.Logger) *GoHook {
	if timeout <= 0 {
		timeout = DefaultEnableTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &GoHook{timeout: timeout, log: log.With("component", "hook")}
}

// Install starts libuiohook and waits for its HookEnabled event. A hook that
// never comes up is how a missing Accessibility grant shows itself.
func (g *GoHook) Install(ctx context.Context, mask Mask, cb Callback) (Handle, error) {
	events := gohook.Start()
	h := &goHandle{
		events: events,
		mask:   mask,
		cb:     cb,
		done:   make(chan struct{}),
	}

	timer := time.NewTimer(g.timeout)
	defer timer.Stop()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				h.release()
				return nil, fmt.Errorf("%w: hook closed before it was enabled", ErrPermissionDenied)
			}
			if ev.Kind == gohook.HookEnabled {
				g.log.Info("input hook enabled", "mask", mask.String())
				return h, nil
			}
		case <-timer.C:
			h.RequestStop()
			h.release()
			return nil, fmt.Errorf("%w: not enabled within %s, check Accessibility and Input Monitoring access",
				ErrPermissionDenied, g.timeout)
		case <-ctx.Done():
			h.RequestStop()
			h.release()
			return nil, ctx.Err()
		}
	}
}

type goHandle struct {
	events chan gohook.Event
	mask   Mask

	mu sync.Mutex
	cb Callback

	done     chan struct{}
	stopOnce sync.Once
	wakeOnce sync.Once
}

func (h *goHandle) Run() {
	defer h.release()
	defer h.RequestStop()

	h.mu.Lock()
	cb := h.cb
	h.mu.Unlock()
	if cb == nil {
		return
	}

	for {
		select {
		case <-h.done:
			return
		default:
		}
		select {
		case <-h.done:
			return
		case ev, ok := <-h.events:
			if !ok || ev.Kind == gohook.HookDisabled {
				return
			}
			if e, ok := translate(ev); ok && h.mask.Has(e.Kind) {
				cb(e)
			}
		}
	}
}

// RequestStop ends the libuiohook session. gohook.End closes the event
// channel, so it must run exactly once.
func (h *goHandle) RequestStop() {
	h.stopOnce.Do(gohook.End)
}

func (h *goHandle) Wake() {
	h.wakeOnce.Do(func() { close(h.done) })
}

// release drops the callback so nothing it captured outlives the hook.
func (h *goHandle) release() {
	h.mu.Lock()
	h.cb = nil
	h.mu.Unlock()
}

// isPrimaryDrag reports whether a drag event has the primary button held.
// Some platforms report every drag with no button number, so the modifier
// mask decides.
func isPrimaryDrag(ev gohook.Event) bool {
	if ev.Button == buttonPrimary {
		return true
	}
	return ev.Button == 0 && ev.Mask&maskButton1 != 0
}

// translate maps a libuiohook event to an Event. gohook names presses
// MouseHold and releases MouseDown.
func translate(ev gohook.Event) (Event, bool) {
	e := Event{X: int(ev.X), Y: int(ev.Y), When: ev.When}
	if e.When.IsZero() {
		e.When = time.Now()
	}
	switch {
	case ev.Kind == gohook.MouseHold && ev.Button == buttonPrimary:
		e.Kind = PrimaryDown
	case ev.Kind == gohook.MouseDown && ev.Button == buttonPrimary:
		e.Kind = PrimaryUp
	case ev.Kind == gohook.MouseDrag && isPrimaryDrag(ev):
		e.Kind = PrimaryDrag
	case ev.Kind == gohook.MouseHold && ev.Button > buttonMenu:
		e.Kind = SecondaryDown
	default:
		return Event{}, false
	}
	return e, true
}
