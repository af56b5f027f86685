// Package clicktrack tracks primary-button timing and drag state for the
// selection engine. It performs no I/O.
//
// Every mutator is meant to be called from the single hook goroutine. The
// values are stored in atomics so other goroutines (status, tests) can read
// them without extra locking.
package clicktrack

import (
	"sync/atomic"
	"time"
)

// DefaultDoubleClick is the window between two primary-button presses that
// counts as a double click.
const DefaultDoubleClick = 500 * time.Millisecond

// State is the tracker's position in the press/drag/release cycle.
type State int32

const (
	Idle State = iota
	ButtonDown
	Dragging
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ButtonDown:
		return "button-down"
	case Dragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// Tracker is the click/drag state machine.
//
// Double clicks are detected purely by press timing. Two fast presses at
// unrelated screen positions still count.
type Tracker struct {
	window int64 // ms

	previousDownMs atomic.Int64
	currentDownMs  atomic.Int64
	dragging       atomic.Bool
	state          atomic.Int32
}

// New returns an idle tracker. A non-positive window selects DefaultDoubleClick.
func New(window time.Duration) *Tracker {
	if window <= 0 {
		window = DefaultDoubleClick
	}
	return &Tracker{window: window.Milliseconds()}
}

// Window returns the double-click window.
func (t *Tracker) Window() time.Duration {
	return time.Duration(t.window) * time.Millisecond
}

// Down records a primary-button press at now.
func (t *Tracker) Down(now time.Time) {
	t.DownMs(now.UnixMilli())
}

// DownMs is Down with an explicit millisecond timestamp.
func (t *Tracker) DownMs(ms int64) {
	prev := t.currentDownMs.Swap(ms)
	t.previousDownMs.Store(prev)
	t.state.Store(int32(ButtonDown))
}

// Drag records a primary-button drag. It is ignored while Idle: a drag
// with no primary press behind it (another button held, or a press the hook
// missed) must not arm a capture for the next click.
func (t *Tracker) Drag() {
	if t.State() == Idle {
		return
	}
	t.dragging.Store(true)
	t.state.Store(int32(Dragging))
}

// Up records a primary-button release and reports whether it completes a
// double click or a drag, i.e. whether a selection should be captured. The
// drag flag is cleared and the tracker returns to Idle either way.
func (t *Tracker) Up() bool {
	trigger := t.IsDoubleClick() || t.dragging.Load()
	t.dragging.Store(false)
	t.state.Store(int32(Idle))
	return trigger
}

// IsDoubleClick reports whether the last two presses fall within the window.
func (t *Tracker) IsDoubleClick() bool {
	return t.currentDownMs.Load()-t.previousDownMs.Load() < t.window
}

// IsDragging reports whether a drag is in progress.
func (t *Tracker) IsDragging() bool { return t.dragging.Load() }

// State returns the current state.
func (t *Tracker) State() State { return State(t.state.Load()) }

// Times returns the previous and current press timestamps in milliseconds.
func (t *Tracker) Times() (previous, current int64) {
	return t.previousDownMs.Load(), t.currentDownMs.Load()
}
