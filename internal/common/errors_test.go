package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		err  error
		kind string
	}{
		{nil, ""},
		{cause, KindUnexpected},
		{TextExtraction("open", cause), KindTextExtraction},
		{fmt.Errorf("wrapped: %w", OCRExtraction("page 2", cause)), KindOCRExtraction},
		{DOIParsing("none"), KindDOIParsing},
		{TitleAuthorParsing("none"), KindTitleAuthorParsing},
		{Summarization("bad json", nil), KindSummarization},
		{Database("insert", ErrDuplicateKey), KindDatabase},
		{FileSave("write", cause), KindFileSave},
		{ErrNoMetadataExtracted, KindNoMetadataExtracted},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, KindOf(tt.err))
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := Database("insert upload", ErrDuplicateKey)
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.True(t, IsKind(err, KindDatabase))
	assert.Contains(t, err.Error(), "already exists")
}

func TestToStatus(t *testing.T) {
	assert.Nil(t, ToStatus(nil))
	assert.Equal(t, codes.NotFound, status.Code(ToStatus(WrapError(ErrNotFound, "upload"))))
	assert.Equal(t, codes.InvalidArgument, status.Code(ToStatus(ConfigError("bad"))))
	assert.Equal(t, codes.FailedPrecondition, status.Code(ToStatus(ErrNoMetadataExtracted)))
	assert.Equal(t, codes.Internal, status.Code(ToStatus(Database("x", nil))))

	already := status.Error(codes.Unavailable, "down")
	assert.Equal(t, already, ToStatus(already))
}
