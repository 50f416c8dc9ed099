package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	reflectionpb "google.golang.org/grpc/reflection/grpc_reflection_v1"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

func TestPaperServiceFileMatchesServiceDesc(t *testing.T) {
	d, err := protoregistry.GlobalFiles.FindDescriptorByName(PaperServiceName)
	require.NoError(t, err)
	sd, ok := d.(protoreflect.ServiceDescriptor)
	require.True(t, ok)
	assert.Equal(t, PaperServiceFile.Path(), sd.ParentFile().Path())

	require.Equal(t, len(PaperServiceDesc.Methods), sd.Methods().Len())
	for _, m := range PaperServiceDesc.Methods {
		assert.NotNil(t, sd.Methods().ByName(protoreflect.Name(m.MethodName)), m.MethodName)
	}
	get := sd.Methods().ByName("GetUploadBlob")
	assert.Equal(t, protoreflect.FullName("google.protobuf.StringValue"), get.Input().FullName())
	assert.Equal(t, protoreflect.FullName("google.protobuf.BytesValue"), get.Output().FullName())
}

func TestReflectionDescribesPaperService(t *testing.T) {
	h := newHarness(t)
	stream, err := reflectionpb.NewServerReflectionClient(h.conn).ServerReflectionInfo(context.Background())
	require.NoError(t, err)
	require.NoError(t, stream.Send(&reflectionpb.ServerReflectionRequest{
		MessageRequest: &reflectionpb.ServerReflectionRequest_FileContainingSymbol{FileContainingSymbol: PaperServiceName},
	}))
	resp, err := stream.Recv()
	require.NoError(t, err)
	require.NoError(t, stream.CloseSend())

	files := resp.GetFileDescriptorResponse().GetFileDescriptorProto()
	require.NotEmpty(t, files, "error response: %v", resp.GetErrorResponse())

	var found *descriptorpb.ServiceDescriptorProto
	for _, raw := range files {
		fdp := &descriptorpb.FileDescriptorProto{}
		require.NoError(t, proto.Unmarshal(raw, fdp))
		for _, svc := range fdp.GetService() {
			if fdp.GetPackage()+"."+svc.GetName() == PaperServiceName {
				found = svc
			}
		}
	}
	require.NotNil(t, found)
	assert.Len(t, found.GetMethod(), 7)
}
