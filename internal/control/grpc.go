package control

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"

	"github.com/VachaganGrigoryan/mac-mouse-paste/internal/message"
)

// The gRPC control service carries the same message.Message envelope as the
// line protocol, encoded as JSON, so it needs no generated stubs.
const (
	codecName   = "json"
	serviceName = "mousepaste.v1.Control"
	doMethod    = "/" + serviceName + "/Do"
)

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec is selected by clients with grpc.CallContentSubtype(codecName),
// i.e. content-type application/grpc+json.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return codecName }

// handler is the service implementation type checked by RegisterService.
type handler interface {
	Handle(req *message.Message) *message.Message
}

var controlServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*handler)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Do", Handler: doHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mousepaste/control",
}

func doHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(message.Message)
	if err := dec(req); err != nil {
		return nil, err
	}
	h := func(_ context.Context, req any) (any, error) {
		resp := srv.(handler).Handle(req.(*message.Message))
		if resp.Type == message.TypeError {
			return nil, status.Error(codes.InvalidArgument, resp.Error)
		}
		return resp, nil
	}
	if interceptor == nil {
		return h(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: doMethod}
	return interceptor(ctx, req, info, h)
}

// newGRPCServer returns a gRPC server exposing s as the control service.
func (s *Server) newGRPCServer() *grpc.Server {
	gs := grpc.NewServer()
	gs.RegisterService(&controlServiceDesc, s)
	return gs
}
