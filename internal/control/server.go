// Package control exposes the engine's start/stop/status contract on the
// local control socket.
//
// One listener carries three protocols, split by cmux: gRPC with the JSON
// codec (mousepaste.v1.Control/Do), HTTP/1 requests to a grpc-gateway
// ServeMux (GET /v1/status, POST /v1/start|stop|toggle), and anything else
// as the newline-JSON wire protocol used by the CLI.
package control

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	gwruntime "github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/soheilhy/cmux"

	"github.com/VachaganGrigoryan/mac-mouse-paste/internal/engine"
	"github.com/VachaganGrigoryan/mac-mouse-paste/internal/message"
	"github.com/VachaganGrigoryan/mac-mouse-paste/internal/wire"
)

const requestTimeout = 5 * time.Second

// Engine is the part of *engine.Engine the control server drives.
type Engine interface {
	Start(suppressPaste bool)
	Stop()
	IsRunning() bool
	Status() engine.Status
}

// Server answers control requests for one engine.
type Server struct {
	eng Engine
	log *slog.Logger
}

// NewServer returns a Server for eng.
func NewServer(eng Engine, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{eng: eng, log: log.With("component", "control")}
}

// Serve accepts connections on ln until ctx is done or ln fails. It closes ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	m := cmux.New(ln)
	// grpc-go clients wait for the server's SETTINGS frame before sending
	// headers, so the matcher has to send it.
	grpcL := m.MatchWithWriters(cmux.HTTP2MatchHeaderFieldPrefixSendSettings("content-type", "application/grpc"))
	httpL := m.Match(cmux.HTTP1Fast())
	wireL := m.Match(cmux.Any())

	gs := s.newGRPCServer()
	srv := &http.Server{Handler: s.gateway(), ReadHeaderTimeout: requestTimeout}
	go func() { _ = gs.Serve(grpcL) }()
	go func() { _ = srv.Serve(httpL) }()
	go s.serveWire(wireL)

	errCh := make(chan error, 1)
	go func() { errCh <- m.Serve() }()

	select {
	case <-ctx.Done():
		gs.Stop()
		_ = srv.Close()
		_ = ln.Close()
		<-errCh
		return nil
	case err := <-errCh:
		gs.Stop()
		_ = srv.Close()
		if errors.Is(err, net.ErrClosed) {
			return nil
		}
		return err
	}
}

// Handle executes one request and returns the reply. Every successful
// request is answered with the resulting status.
func (s *Server) Handle(req *message.Message) *message.Message {
	switch req.Type {
	case message.TypeStart:
		s.eng.Start(req.SuppressPaste)
		s.log.Info("start requested", "suppress_paste", req.SuppressPaste)
	case message.TypeStop:
		s.eng.Stop()
		s.log.Info("stop requested")
	case message.TypeToggle:
		if s.eng.IsRunning() {
			s.eng.Stop()
		} else {
			s.eng.Start(req.SuppressPaste)
		}
		s.log.Info("toggle requested", "running", s.eng.IsRunning())
	case message.TypeStatus:
	default:
		return message.Errorf("unknown request type %q", req.Type)
	}
	return &message.Message{Type: message.TypeStatusResponse, Status: StatusOf(s.eng.Status())}
}

func (s *Server) serveWire(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	wc := wire.New(conn)
	wc.SetReadDeadline(requestTimeout)

	req, err := wc.ReadMsg()
	if err != nil {
		s.log.Debug("control: bad request", "err", err)
		_ = wc.WriteMsg(message.Errorf("%v", err))
		return
	}
	if err := wc.WriteMsg(s.Handle(req)); err != nil {
		s.log.Debug("control: reply failed", "err", err)
	}
}

func (s *Server) gateway() *gwruntime.ServeMux {
	mux := gwruntime.NewServeMux()
	routes := []struct {
		method, path string
		typ          message.Type
	}{
		{http.MethodGet, "/v1/status", message.TypeStatus},
		{http.MethodPost, "/v1/start", message.TypeStart},
		{http.MethodPost, "/v1/stop", message.TypeStop},
		{http.MethodPost, "/v1/toggle", message.TypeToggle},
	}
	for _, rt := range routes {
		typ := rt.typ
		if err := mux.HandlePath(rt.method, rt.path, func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
			suppress, _ := strconv.ParseBool(r.URL.Query().Get("suppress_paste"))
			s.writeHTTP(w, s.Handle(&message.Message{Type: typ, SuppressPaste: suppress}))
		}); err != nil {
			s.log.Error("control: route registration failed", "path", rt.path, "err", err)
		}
	}
	return mux
}

func (s *Server) writeHTTP(w http.ResponseWriter, resp *message.Message) {
	w.Header().Set("Content-Type", "application/json")
	if resp.Type == message.TypeError {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": resp.Error})
		return
	}
	_ = json.NewEncoder(w).Encode(resp.Status)
}

// StatusOf converts an engine snapshot to its wire form.
func StatusOf(st engine.Status) *message.Status {
	return &message.Status{
		Running:         st.Running,
		SuppressPaste:   st.SuppressPaste,
		StartedAt:       st.StartedAt,
		Pending:         st.Pending,
		PendingLen:      st.PendingLen,
		LockUntilPaste:  st.LockUntilPaste,
		Clipboard:       st.Clipboard,
		Captures:        st.Captures,
		Pastes:          st.Pastes,
		SkippedLocked:   st.SkippedLocked,
		EmptyCaptures:   st.EmptyCaptures,
		InstallFailures: st.InstallFailures,
		LastError:       st.LastError,
	}
}
