package control

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/VachaganGrigoryan/mac-mouse-paste/internal/ipc"
	"github.com/VachaganGrigoryan/mac-mouse-paste/internal/message"
	"github.com/VachaganGrigoryan/mac-mouse-paste/internal/wire"
)

// ErrNotRunning is returned when no daemon answers on the control socket.
var ErrNotRunning = errors.New("mousepaste daemon is not running")

// Client sends control requests to a running daemon.
type Client struct {
	dial    func() (net.Conn, error)
	useGRPC bool
}

// NewClient returns a Client that speaks the line protocol on the local
// control socket.
func NewClient() *Client {
	return &Client{dial: ipc.Dial}
}

// NewGRPCClient returns a Client that calls the gRPC control service on the
// local control socket.
func NewGRPCClient() *Client {
	return &Client{dial: ipc.Dial, useGRPC: true}
}

// Do sends req and returns the daemon's status reply.
func (c *Client) Do(ctx context.Context, req *message.Message) (*message.Status, error) {
	roundTrip := c.roundTrip
	if c.useGRPC {
		roundTrip = c.invoke
	}
	resp, err := roundTrip(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.Type == message.TypeError {
		return nil, fmt.Errorf("daemon: %s", resp.Error)
	}
	if resp.Status == nil {
		return nil, fmt.Errorf("daemon: %s reply carries no status", resp.Type)
	}
	return resp.Status, nil
}

func (c *Client) roundTrip(ctx context.Context, req *message.Message) (*message.Message, error) {
	conn, err := c.dial()
	if err != nil {
		return nil, fmt.Errorf("%w (%s): %v", ErrNotRunning, ipc.SocketPath(), err)
	}
	defer conn.Close()
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}

	wc := wire.New(conn)
	if err := wc.WriteMsg(req); err != nil {
		return nil, fmt.Errorf("send %s: %w", req.Type, err)
	}
	resp, err := wc.ReadMsg()
	if err != nil {
		return nil, fmt.Errorf("read reply: %w", err)
	}
	return resp, nil
}

// invoke calls mousepaste.v1.Control/Do. No auth: the socket is local and
// owner-only.
func (c *Client) invoke(ctx context.Context, req *message.Message) (*message.Message, error) {
	conn, err := grpc.NewClient("passthrough:///mousepaste",
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) { return c.dial() }),
	)
	if err != nil {
		return nil, fmt.Errorf("grpc client: %w", err)
	}
	defer conn.Close()

	resp := new(message.Message)
	err = conn.Invoke(ctx, doMethod, req, resp, grpc.CallContentSubtype(codecName))
	switch status.Code(err) {
	case codes.OK:
		return resp, nil
	case codes.InvalidArgument:
		return message.Errorf("%s", status.Convert(err).Message()), nil
	case codes.Unavailable:
		return nil, fmt.Errorf("%w (%s): %v", ErrNotRunning, ipc.SocketPath(), err)
	default:
		return nil, fmt.Errorf("grpc %s: %w", req.Type, err)
	}
}

// Start asks the daemon to start its engine.
func (c *Client) Start(ctx context.Context, suppressPaste bool) (*message.Status, error) {
	return c.Do(ctx, &message.Message{Type: message.TypeStart, SuppressPaste: suppressPaste})
}

// Stop asks the daemon to stop its engine.
func (c *Client) Stop(ctx context.Context) (*message.Status, error) {
	return c.Do(ctx, &message.Message{Type: message.TypeStop})
}

// Toggle stops a running engine or starts a stopped one.
func (c *Client) Toggle(ctx context.Context, suppressPaste bool) (*message.Status, error) {
	return c.Do(ctx, &message.Message{Type: message.TypeToggle, SuppressPaste: suppressPaste})
}

// Status fetches the daemon's status.
func (c *Client) Status(ctx context.Context) (*message.Status, error) {
	return c.Do(ctx, &message.Message{Type: message.TypeStatus})
}
