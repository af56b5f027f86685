package engine

import (
	"sync"
	"sync/atomic"
	"time"
)

// Status is a point-in-time snapshot of the engine for status displays.
type Status struct {
	Running         bool      `json:"running"`
	SuppressPaste   bool      `json:"suppress_paste"`
	StartedAt       time.Time `json:"started_at,omitzero"`
	Pending         bool      `json:"pending"`
	PendingLen      int       `json:"pending_len"`
	LockUntilPaste  bool      `json:"lock_until_paste"`
	Clipboard       string    `json:"clipboard"`
	Captures        int64     `json:"captures"`
	Pastes          int64     `json:"pastes"`
	SkippedLocked   int64     `json:"skipped_locked"`
	EmptyCaptures   int64     `json:"empty_captures"`
	InstallFailures int64     `json:"install_failures"`
	LastError       string    `json:"last_error,omitempty"`
}

type stats struct {
	captures        atomic.Int64
	pastes          atomic.Int64
	skippedLocked   atomic.Int64
	emptyCaptures   atomic.Int64
	installFailures atomic.Int64

	mu      sync.Mutex
	lastErr string
}

func (s *stats) setErr(err error) {
	s.mu.Lock()
	s.lastErr = err.Error()
	s.mu.Unlock()
}

func (s *stats) lastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Status returns a snapshot. The fields are read independently, so a
// snapshot taken during a capture may mix before and after values.
func (e *Engine) Status() Status {
	st := Status{
		Running:         e.IsRunning(),
		PendingLen:      e.buf.Len(),
		LockUntilPaste:  e.buf.Locked(),
		Clipboard:       e.clip.Name(),
		Captures:        e.stats.captures.Load(),
		Pastes:          e.stats.pastes.Load(),
		SkippedLocked:   e.stats.skippedLocked.Load(),
		EmptyCaptures:   e.stats.emptyCaptures.Load(),
		InstallFailures: e.stats.installFailures.Load(),
		LastError:       e.stats.lastError(),
	}
	_, st.Pending = e.buf.Get()

	e.mu.Lock()
	if r := e.cur; r != nil && st.Running {
		st.SuppressPaste = r.suppress
		st.StartedAt = r.started
	}
	e.mu.Unlock()
	return st
}
