// Package engine ties the input hook, click tracker, selection buffer,
// clipboard bridge and injector into a primary-selection emulator.
//
// A qualifying primary-button release (double click or end of a drag)
// copies the active selection into a one-shot buffer without leaving any
// trace on the clipboard. A secondary-button press pastes the buffer at the
// pointer and puts the clipboard back the way it was.
//
// Both protocols run synchronously on the hook goroutine. Their delays are
// short fixed sleeps: they give the target application time to react to
// synthetic input, and some hook mechanisms disable a listener that stalls
// the input pipeline for long.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/VachaganGrigoryan/mac-mouse-paste/internal/clicktrack"
	"github.com/VachaganGrigoryan/mac-mouse-paste/internal/clip"
	"github.com/VachaganGrigoryan/mac-mouse-paste/internal/hook"
	"github.com/VachaganGrigoryan/mac-mouse-paste/internal/inject"
	"github.com/VachaganGrigoryan/mac-mouse-paste/internal/selection"
)

// DefaultWait is the delay used at each synchronisation point of the
// capture and paste protocols.
const DefaultWait = 20 * time.Millisecond

// Options tunes an Engine. The zero value is not useful; start from
// DefaultOptions.
type Options struct {
	// LockUntilPaste keeps a captured selection until it is pasted.
	LockUntilPaste bool
	// DoubleClick is the double-click window.
	DoubleClick time.Duration
	// CopyWait is how long capture waits after the synthetic copy.
	CopyWait time.Duration
	// FocusWait separates the focus click from the synthetic paste.
	FocusWait time.Duration
	// PasteWait is how long paste waits before restoring the clipboard.
	PasteWait time.Duration
	// PollChangeCount ends CopyWait early once the clipboard change counter
	// moves, on bridges that have one.
	PollChangeCount bool

	Logger *slog.Logger
}

// DefaultOptions returns the stock timings with the lock enabled.
func DefaultOptions() Options {
	return Options{
		LockUntilPaste: true,
		DoubleClick:    clicktrack.DefaultDoubleClick,
		CopyWait:       DefaultWait,
		FocusWait:      DefaultWait,
		PasteWait:      DefaultWait,
	}
}

// Engine owns the hook lifecycle and all selection state. The buffer and
// click tracker outlive start/stop cycles, so a selection captured before a
// stop can still be pasted after the next start.
type Engine struct {
	monitor hook.Monitor
	clip    clip.Bridge
	inj     inject.Injector
	tracker *clicktrack.Tracker
	buf     *selection.Buffer
	opts    Options
	log     *slog.Logger
	sleep   func(time.Duration)

	running atomic.Bool

	mu  sync.Mutex
	cur *run

	stats stats
}

// run is one start/stop cycle of the worker goroutine.
type run struct {
	done     chan struct{} // closed when the worker has exited
	cancel   context.CancelFunc
	handle   hook.Handle
	stopped  bool
	suppress bool
	started  time.Time
}

// New returns a stopped engine.
func New(m hook.Monitor, b clip.Bridge, inj inject.Injector, opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		monitor: m,
		clip:    b,
		inj:     inj,
		tracker: clicktrack.New(opts.DoubleClick),
		buf:     selection.New(opts.LockUntilPaste),
		opts:    opts,
		log:     log.With("component", "engine"),
		sleep:   time.Sleep,
	}
}

// IsRunning reports whether the worker is alive. It is set optimistically by
// Start and drops to false by itself if the hook cannot be installed or
// stops on its own.
func (e *Engine) IsRunning() bool { return e.running.Load() }

// Start spawns the worker goroutine that installs the hook and runs its
// loop. It is a no-op while already running. With suppressPaste set the
// secondary-button paste is ignored and the engine only captures.
//
// Start returns before the hook is installed; an install failure shows up
// later as IsRunning() == false.
func (e *Engine) Start(suppressPaste bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running.CompareAndSwap(false, true) {
		return
	}
	// A worker that exited on its own has already cleared running and no
	// longer touches e.mu; wait for it so at most one is ever alive.
	if prev := e.cur; prev != nil {
		<-prev.done
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &run{
		done:     make(chan struct{}),
		cancel:   cancel,
		suppress: suppressPaste,
		started:  time.Now(),
	}
	e.cur = r
	go e.work(ctx, r)
}

// Stop cancels the hook loop and blocks until the worker has exited. Once
// Stop returns no capture or paste from this engine is in progress or will
// start. Calling Stop on a stopped engine is a no-op.
func (e *Engine) Stop() {
	e.mu.Lock()
	r := e.cur
	var h hook.Handle
	if r != nil {
		r.stopped = true
		r.cancel()
		h = r.handle
	}
	e.mu.Unlock()

	if h != nil {
		h.RequestStop()
		h.Wake()
	}
	if r != nil {
		<-r.done
	}

	e.mu.Lock()
	if e.cur == r {
		e.cur = nil
		e.running.Store(false)
	}
	e.mu.Unlock()
}

// Pending returns the captured selection waiting to be pasted, if any.
func (e *Engine) Pending() (string, bool) { return e.buf.Get() }

func (e *Engine) work(ctx context.Context, r *run) {
	defer close(r.done)
	defer r.cancel()

	// Hook mechanisms are thread-affine (CFRunLoop, Win32 message queues).
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	h, err := e.monitor.Install(ctx, hook.SelectionMask, e.callback(r.suppress))
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			e.stats.installFailures.Add(1)
			e.stats.setErr(err)
			e.log.Error("input hook install failed", "err", err)
		}
		e.finish(r)
		return
	}

	e.mu.Lock()
	r.handle = h
	stopped := r.stopped
	e.mu.Unlock()
	if stopped {
		h.RequestStop()
		h.Wake()
	}

	e.log.Info("engine running", "suppress_paste", r.suppress, "clipboard", e.clip.Name())
	h.Run()
	e.finish(r)
	e.log.Info("engine stopped")
}

// finish clears the running flag, unless a newer run already owns it.
func (e *Engine) finish(r *run) {
	e.mu.Lock()
	if e.cur == r {
		e.running.Store(false)
	}
	e.mu.Unlock()
}

// callback returns the hook callback for one run. It captures only the
// engine and the run's paste mode.
func (e *Engine) callback(suppressPaste bool) hook.Callback {
	return func(ev hook.Event) {
		switch ev.Kind {
		case hook.SecondaryDown:
			if !suppressPaste {
				e.report("paste", e.paste(inject.Point{X: ev.X, Y: ev.Y}))
			}
		case hook.PrimaryDown:
			e.tracker.Down(ev.When)
		case hook.PrimaryDrag:
			e.tracker.Drag()
		case hook.PrimaryUp:
			if e.tracker.Up() {
				e.report("capture", e.capture())
			}
		}
	}
}

// report logs a protocol outcome. Expected no-ops go to DEBUG.
func (e *Engine) report(op string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, ErrEmptyCapture), errors.Is(err, ErrSelectionPending), errors.Is(err, ErrNothingToPaste):
		e.log.Debug(op+" skipped", "reason", err)
	default:
		e.stats.setErr(err)
		e.log.Warn(op+" failed", "err", err)
	}
}
