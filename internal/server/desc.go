package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const PaperServiceName = "papers.v1.PaperService"

// PaperServiceServer is the server API of papers.v1.PaperService. Messages are
// protobuf well-known types so no generated code is required.
type PaperServiceServer interface {
	RunBatch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SubmitBatch(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
	GetBatch(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ListUploads(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetMetadata(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	GetUploadBlob(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
	GetOutputBlob(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
}

func RegisterPaperServiceServer(s grpc.ServiceRegistrar, srv PaperServiceServer) {
	s.RegisterService(&PaperServiceDesc, srv)
}

// unaryHandler adapts one typed method to grpc.MethodDesc.
func unaryHandler[Req any, Resp any](method string, call func(PaperServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PaperServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + PaperServiceName + "/" + method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PaperServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var PaperServiceDesc = grpc.ServiceDesc{
	ServiceName: PaperServiceName,
	HandlerType: (*PaperServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RunBatch", Handler: unaryHandler("RunBatch", PaperServiceServer.RunBatch)},
		{MethodName: "SubmitBatch", Handler: unaryHandler("SubmitBatch", PaperServiceServer.SubmitBatch)},
		{MethodName: "GetBatch", Handler: unaryHandler("GetBatch", PaperServiceServer.GetBatch)},
		{MethodName: "ListUploads", Handler: unaryHandler("ListUploads", PaperServiceServer.ListUploads)},
		{MethodName: "GetMetadata", Handler: unaryHandler("GetMetadata", PaperServiceServer.GetMetadata)},
		{MethodName: "GetUploadBlob", Handler: unaryHandler("GetUploadBlob", PaperServiceServer.GetUploadBlob)},
		{MethodName: "GetOutputBlob", Handler: unaryHandler("GetOutputBlob", PaperServiceServer.GetOutputBlob)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "papers/v1/papers.proto",
}

// PaperServiceClient calls papers.v1.PaperService over a client connection.
type PaperServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewPaperServiceClient(cc grpc.ClientConnInterface) *PaperServiceClient {
	return &PaperServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, "/"+PaperServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *PaperServiceClient) RunBatch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, "RunBatch", in, opts...)
}

func (c *PaperServiceClient) SubmitBatch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	return invoke[wrapperspb.StringValue](ctx, c.cc, "SubmitBatch", in, opts...)
}

func (c *PaperServiceClient) GetBatch(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, "GetBatch", in, opts...)
}

func (c *PaperServiceClient) ListUploads(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, "ListUploads", in, opts...)
}

func (c *PaperServiceClient) GetMetadata(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, "GetMetadata", in, opts...)
}

func (c *PaperServiceClient) GetUploadBlob(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	return invoke[wrapperspb.BytesValue](ctx, c.cc, "GetUploadBlob", in, opts...)
}

func (c *PaperServiceClient) GetOutputBlob(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	return invoke[wrapperspb.BytesValue](ctx, c.cc, "GetOutputBlob", in, opts...)
}
