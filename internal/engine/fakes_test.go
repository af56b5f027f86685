package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/VachaganGrigoryan/mac-mouse-paste/internal/hook"
	"github.com/VachaganGrigoryan/mac-mouse-paste/internal/inject"
)

// fakeMonitor hands out fakeHandles and can be told to fail or block.
type fakeMonitor struct {
	mu       sync.Mutex
	installs int
	fail     error
	block    chan struct{}

	installed chan *fakeHandle
}

func newFakeMonitor() *fakeMonitor {
	return &fakeMonitor{installed: make(chan *fakeHandle, 8)}
}

func (m *fakeMonitor) Install(ctx context.Context, mask hook.Mask, cb hook.Callback) (hook.Handle, error) {
	m.mu.Lock()
	m.installs++
	fail, block := m.fail, m.block
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fail != nil {
		return nil, fail
	}
	h := &fakeHandle{
		mask:   mask,
		cb:     cb,
		events: make(chan eventReq),
		stop:   make(chan struct{}),
	}
	m.installed <- h
	return h, nil
}

func (m *fakeMonitor) installCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.installs
}

func (m *fakeMonitor) waitInstalled(t *testing.T) *fakeHandle {
	t.Helper()
	select {
	case h := <-m.installed:
		return h
	case <-time.After(2 * time.Second):
		t.Fatal("hook was not installed")
		return nil
	}
}

type eventReq struct {
	ev   hook.Event
	done chan struct{}
}

// fakeHandle runs the callback on the Run goroutine, like a real hook.
type fakeHandle struct {
	mask     hook.Mask
	cb       hook.Callback
	events   chan eventReq
	stop     chan struct{}
	stopOnce sync.Once
	released atomic.Bool
}

func (h *fakeHandle) Run() {
	defer h.released.Store(true)
	for {
		select {
		case <-h.stop:
			return
		case req := <-h.events:
			if h.mask.Has(req.ev.Kind) {
				h.cb(req.ev)
			}
			close(req.done)
		}
	}
}

func (h *fakeHandle) RequestStop() { h.stopOnce.Do(func() { close(h.stop) }) }
func (h *fakeHandle) Wake()        {}

// emit delivers ev and waits for the callback to return.
func (h *fakeHandle) emit(t *testing.T, ev hook.Event) {
	t.Helper()
	req := eventReq{ev: ev, done: make(chan struct{})}
	select {
	case h.events <- req:
	case <-time.After(2 * time.Second):
		t.Fatal("hook loop is not running")
	}
	<-req.done
}

// tryEmit reports whether the loop accepted ev within d.
func (h *fakeHandle) tryEmit(ev hook.Event, d time.Duration) bool {
	req := eventReq{ev: ev, done: make(chan struct{})}
	select {
	case h.events <- req:
		<-req.done
		return true
	case <-time.After(d):
		return false
	}
}

var errClipboard = errors.New("pbpaste exited 1")

// fakeClip is an in-memory clipboard with an optional change counter.
type fakeClip struct {
	mu       sync.Mutex
	value    string
	readErr  error
	writeErr error
	reads    int
	writes   []string
	changes  int64
}

func (c *fakeClip) Name() string { return "fake" }

func (c *fakeClip) Read() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads++
	if c.readErr != nil {
		return "", c.readErr
	}
	return c.value, nil
}

func (c *fakeClip) Write(s string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, s)
	if c.writeErr != nil {
		return c.writeErr
	}
	c.set(s)
	return nil
}

// set must be called with c.mu held.
func (c *fakeClip) set(s string) {
	c.value = s
	c.changes++
}

func (c *fakeClip) get() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

func (c *fakeClip) stats() (reads int, writes []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads, append([]string(nil), c.writes...)
}

// countingClip exposes the change counter.
type countingClip struct{ *fakeClip }

func (c countingClip) ChangeCount() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.changes
}

// fakeInjector plays the foreground application: a copy puts its selection
// on the clipboard.
type fakeInjector struct {
	clip *fakeClip

	mu        sync.Mutex
	selection *string
	copyErr   error
	pasteErr  error
	copies    int
	pastes    int
	clicks    []inject.Point
	pasted    []string // clipboard contents at each paste
	calls     []string
	onPaste   func()
}

func (i *fakeInjector) selectText(s string) {
	i.mu.Lock()
	i.selection = &s
	i.mu.Unlock()
}

func (i *fakeInjector) SendCopy() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.copies++
	i.calls = append(i.calls, "copy")
	if i.copyErr != nil {
		return i.copyErr
	}
	if i.selection != nil {
		i.clip.mu.Lock()
		i.clip.set(*i.selection)
		i.clip.mu.Unlock()
	}
	return nil
}

func (i *fakeInjector) SendPaste() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.pastes++
	i.calls = append(i.calls, "paste")
	i.pasted = append(i.pasted, i.clip.get())
	if i.onPaste != nil {
		i.onPaste()
	}
	return i.pasteErr
}

func (i *fakeInjector) FocusClick(p inject.Point) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.clicks = append(i.clicks, p)
	i.calls = append(i.calls, "click")
	return nil
}

func (i *fakeInjector) snapshot() (copies, pastes int, clicks []inject.Point, pasted []string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.copies, i.pastes, append([]inject.Point(nil), i.clicks...), append([]string(nil), i.pasted...)
}

type harness struct {
	eng    *Engine
	mon    *fakeMonitor
	clip   *fakeClip
	inj    *fakeInjector
	sleeps *[]time.Duration
}

func newHarness(t *testing.T, clipboard string, mutate ...func(*Options)) *harness {
	t.Helper()
	opts := DefaultOptions()
	for _, m := range mutate {
		m(&opts)
	}
	c := &fakeClip{value: clipboard}
	inj := &fakeInjector{clip: c}
	mon := newFakeMonitor()
	e := New(mon, c, inj, opts)

	var mu sync.Mutex
	sleeps := []time.Duration{}
	e.sleep = func(d time.Duration) {
		mu.Lock()
		sleeps = append(sleeps, d)
		mu.Unlock()
	}
	t.Cleanup(e.Stop)
	return &harness{eng: e, mon: mon, clip: c, inj: inj, sleeps: &sleeps}
}

func at(ms int64) time.Time { return time.UnixMilli(ms) }
