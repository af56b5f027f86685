package control

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VachaganGrigoryan/mac-mouse-paste/internal/engine"
	"github.com/VachaganGrigoryan/mac-mouse-paste/internal/message"
)

type fakeEngine struct {
	mu       sync.Mutex
	running  bool
	suppress bool
	starts   int
	stops    int
}

func (f *fakeEngine) Start(suppressPaste bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	if !f.running {
		f.running, f.suppress = true, suppressPaste
	}
}

func (f *fakeEngine) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	f.running = false
}

func (f *fakeEngine) IsRunning() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

func (f *fakeEngine) Status() engine.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return engine.Status{Running: f.running, SuppressPaste: f.suppress, Clipboard: "fake", Captures: 2}
}

func TestHandle(t *testing.T) {
	eng := &fakeEngine{}
	s := NewServer(eng, nil)

	resp := s.Handle(&message.Message{Type: message.TypeStart, SuppressPaste: true})
	require.Equal(t, message.TypeStatusResponse, resp.Type)
	assert.True(t, resp.Status.Running)
	assert.True(t, resp.Status.SuppressPaste)

	resp = s.Handle(&message.Message{Type: message.TypeToggle})
	assert.False(t, resp.Status.Running)

	resp = s.Handle(&message.Message{Type: message.TypeToggle})
	assert.True(t, resp.Status.Running)

	resp = s.Handle(&message.Message{Type: message.TypeStop})
	assert.False(t, resp.Status.Running)
	assert.Equal(t, 2, eng.stops)

	resp = s.Handle(&message.Message{Type: message.TypeStatus})
	assert.Equal(t, int64(2), resp.Status.Captures)
	assert.Equal(t, "fake", resp.Status.Clipboard)

	resp = s.Handle(&message.Message{Type: "PASTE"})
	assert.Equal(t, message.TypeError, resp.Type)
	assert.Contains(t, resp.Error, "PASTE")
}

// serve starts a Server on a temporary Unix socket and returns its path.
func serve(t *testing.T, eng Engine) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "mpc")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	path := filepath.Join(dir, "c.sock")

	ln, err := net.Listen("unix", path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewServer(eng, nil).Serve(ctx, ln) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("Serve did not return after cancel")
		}
	})
	return path
}

func TestClientOverSocket(t *testing.T) {
	eng := &fakeEngine{}
	path := serve(t, eng)
	c := &Client{dial: func() (net.Conn, error) { return net.Dial("unix", path) }}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	st, err := c.Start(ctx, false)
	require.NoError(t, err)
	assert.True(t, st.Running)

	st, err = c.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.Running)

	st, err = c.Toggle(ctx, false)
	require.NoError(t, err)
	assert.False(t, st.Running)

	st, err = c.Stop(ctx)
	require.NoError(t, err)
	assert.False(t, st.Running)

	_, err = c.Do(ctx, &message.Message{Type: "BOGUS"})
	assert.ErrorContains(t, err, "unknown request type")
}

func TestHTTPStatus(t *testing.T) {
	eng := &fakeEngine{}
	path := serve(t, eng)
	hc := &http.Client{
		Timeout: 2 * time.Second,
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", path)
			},
		},
	}

	resp, err := hc.Post("http://mousepaste/v1/start?suppress_paste=true", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = hc.Get("http://mousepaste/v1/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var st message.Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.True(t, st.Running)
	assert.True(t, st.SuppressPaste)
}

func TestClientNotRunning(t *testing.T) {
	c := &Client{dial: func() (net.Conn, error) {
		return net.Dial("unix", filepath.Join(t.TempDir(), "missing.sock"))
	}}
	_, err := c.Status(context.Background())
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestGRPCClientOverSocket(t *testing.T) {
	eng := &fakeEngine{}
	path := serve(t, eng)
	c := &Client{dial: func() (net.Conn, error) { return net.Dial("unix", path) }, useGRPC: true}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	st, err := c.Start(ctx, true)
	require.NoError(t, err)
	assert.True(t, st.Running)
	assert.True(t, st.SuppressPaste)

	st, err = c.Toggle(ctx, false)
	require.NoError(t, err)
	assert.False(t, st.Running)

	st, err = c.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.Captures)

	_, err = c.Do(ctx, &message.Message{Type: "BOGUS"})
	assert.ErrorContains(t, err, "unknown request type")

	// The line protocol still works on the same listener.
	wc := &Client{dial: func() (net.Conn, error) { return net.Dial("unix", path) }}
	st, err = wc.Status(ctx)
	require.NoError(t, err)
	assert.False(t, st.Running)
}

func TestGRPCClientNotRunning(t *testing.T) {
	c := &Client{
		dial: func() (net.Conn, error) {
			return net.Dial("unix", filepath.Join(t.TempDir(), "missing.sock"))
		},
		useGRPC: true,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := c.Status(ctx)
	assert.ErrorIs(t, err, ErrNotRunning)
}
