package server

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// PaperServiceFile describes papers/v1/papers.proto. It is registered in
// protoregistry.GlobalFiles so server reflection can serve the service schema.
var PaperServiceFile = registerPaperServiceFile()

func paperServiceFileProto() *descriptorpb.FileDescriptorProto {
	typeName := func(m proto.Message) *string {
		return proto.String("." + string(m.ProtoReflect().Descriptor().FullName()))
	}
	method := func(name string, in, out proto.Message) *descriptorpb.MethodDescriptorProto {
		return &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(name),
			InputType:  typeName(in),
			OutputType: typeName(out),
		}
	}
	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String(PaperServiceDesc.Metadata.(string)),
		Package: proto.String("papers.v1"),
		Syntax:  proto.String("proto3"),
		Dependency: []string{
			structpb.File_google_protobuf_struct_proto.Path(),
			wrapperspb.File_google_protobuf_wrappers_proto.Path(),
			emptypb.File_google_protobuf_empty_proto.Path(),
		},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("PaperService"),
			Method: []*descriptorpb.MethodDescriptorProto{
				method("RunBatch", &structpb.Struct{}, &structpb.Struct{}),
				method("SubmitBatch", &structpb.Struct{}, &wrapperspb.StringValue{}),
				method("GetBatch", &wrapperspb.StringValue{}, &structpb.Struct{}),
				method("ListUploads", &emptypb.Empty{}, &structpb.Struct{}),
				method("GetMetadata", &wrapperspb.StringValue{}, &structpb.Struct{}),
				method("GetUploadBlob", &wrapperspb.StringValue{}, &wrapperspb.BytesValue{}),
				method("GetOutputBlob", &wrapperspb.StringValue{}, &wrapperspb.BytesValue{}),
			},
		}},
	}
}

func registerPaperServiceFile() protoreflect.FileDescriptor {
	fd, err := protodesc.NewFile(paperServiceFileProto(), protoregistry.GlobalFiles)
	if err != nil {
		panic("papers.v1: build file descriptor: " + err.Error())
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic("papers.v1: register file descriptor: " + err.Error())
	}
	return fd
}
