package queue_service_api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// RegisterGatewayRoutes exposes the read-only QueueService methods on mux as
// plain HTTP GETs, forwarding each request over cc.
func RegisterGatewayRoutes(mux *runtime.ServeMux, cc grpc.ClientConnInterface) error {
	client := NewClient(cc)

	routes := []struct {
		path string
		call func(context.Context, *http.Request, ...grpc.CallOption) (proto.Message, error)
	}{
		{"/v1/doctors", func(ctx context.Context, _ *http.Request, opts ...grpc.CallOption) (proto.Message, error) {
			return client.ListDoctors(ctx, &structpb.Struct{}, opts...)
		}},
		{"/v1/queue", func(ctx context.Context, _ *http.Request, opts ...grpc.CallOption) (proto.Message, error) {
			return client.GetQueue(ctx, &structpb.Struct{}, opts...)
		}},
		{"/v1/events", func(ctx context.Context, r *http.Request, opts ...grpc.CallOption) (proto.Message, error) {
			req := &structpb.Struct{Fields: map[string]*structpb.Value{}}
			if date := r.URL.Query().Get("date"); date != "" {
				req.Fields["date"] = structpb.NewStringValue(date)
			}
			return client.ListEvents(ctx, req, opts...)
		}},
		{"/v1/calendar.ics", func(ctx context.Context, _ *http.Request, opts ...grpc.CallOption) (proto.Message, error) {
			return client.ExportCalendar(ctx, &structpb.Struct{}, opts...)
		}},
	}

	for _, route := range routes {
		err := mux.HandlePath(http.MethodGet, route.path, func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
			ctx := r.Context()
			_, outbound := runtime.MarshalerForRequest(mux, r)
			if auth := r.Header.Get("Authorization"); auth != "" {
				ctx = metadata.AppendToOutgoingContext(ctx, "authorization", auth)
			}

			var md runtime.ServerMetadata
			resp, err := route.call(ctx, r, grpc.Header(&md.HeaderMD), grpc.Trailer(&md.TrailerMD))
			ctx = runtime.NewServerMetadataContext(ctx, md)
			if err != nil {
				runtime.HTTPError(ctx, mux, outbound, w, r, err)
				return
			}
			runtime.ForwardResponseMessage(ctx, mux, outbound, w, r, resp)
		})
		if err != nil {
			return fmt.Errorf("register gateway route %s: %w", route.path, err)
		}
	}
	return nil
}
