package queue_service_api

import (
	"context"

	"google.golang.org/genproto/googleapis/api/httpbody"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "opdqueue.v1.QueueService"

// Full method names, as seen by interceptors.
const (
	MethodListDoctors    = "/" + ServiceName + "/ListDoctors"
	MethodSubmitBooking  = "/" + ServiceName + "/SubmitBooking"
	MethodGetQueue       = "/" + ServiceName + "/GetQueue"
	MethodSetStatus      = "/" + ServiceName + "/SetStatus"
	MethodAddEvent       = "/" + ServiceName + "/AddEvent"
	MethodDeleteEvent    = "/" + ServiceName + "/DeleteEvent"
	MethodListEvents     = "/" + ServiceName + "/ListEvents"
	MethodExportCalendar = "/" + ServiceName + "/ExportCalendar"
)

// QueueServiceServer is the server API for opdqueue.v1.QueueService. Requests
// and responses are google.protobuf.Struct documents.
type QueueServiceServer interface {
	ListDoctors(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SubmitBooking(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetQueue(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddEvent(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteEvent(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListEvents(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExportCalendar(context.Context, *structpb.Struct) (*httpbody.HttpBody, error)
}

func RegisterQueueServiceServer(s grpc.ServiceRegistrar, srv QueueServiceServer) {
	s.RegisterService(&QueueService_ServiceDesc, srv)
}

var QueueService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*QueueServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListDoctors", Handler: unaryHandler(MethodListDoctors, QueueServiceServer.ListDoctors)},
		{MethodName: "SubmitBooking", Handler: unaryHandler(MethodSubmitBooking, QueueServiceServer.SubmitBooking)},
		{MethodName: "GetQueue", Handler: unaryHandler(MethodGetQueue, QueueServiceServer.GetQueue)},
		{MethodName: "SetStatus", Handler: unaryHandler(MethodSetStatus, QueueServiceServer.SetStatus)},
		{MethodName: "AddEvent", Handler: unaryHandler(MethodAddEvent, QueueServiceServer.AddEvent)},
		{MethodName: "DeleteEvent", Handler: unaryHandler(MethodDeleteEvent, QueueServiceServer.DeleteEvent)},
		{MethodName: "ListEvents", Handler: unaryHandler(MethodListEvents, QueueServiceServer.ListEvents)},
		{MethodName: "ExportCalendar", Handler: unaryHandler(MethodExportCalendar, QueueServiceServer.ExportCalendar)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "opdqueue/v1/queue_service.proto",
}

func unaryHandler[Resp any](fullMethod string, call func(QueueServiceServer, context.Context, *structpb.Struct) (Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(QueueServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(QueueServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Client calls opdqueue.v1.QueueService over a connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListDoctors(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, MethodListDoctors, in, opts...)
}

func (c *Client) SubmitBooking(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, MethodSubmitBooking, in, opts...)
}

func (c *Client) GetQueue(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, MethodGetQueue, in, opts...)
}

func (c *Client) SetStatus(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, MethodSetStatus, in, opts...)
}

func (c *Client) AddEvent(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, MethodAddEvent, in, opts...)
}

func (c *Client) DeleteEvent(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, MethodDeleteEvent, in, opts...)
}

func (c *Client) ListEvents(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, MethodListEvents, in, opts...)
}

func (c *Client) ExportCalendar(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*httpbody.HttpBody, error) {
	out := new(httpbody.HttpBody)
	if err := c.cc.Invoke(ctx, MethodExportCalendar, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
