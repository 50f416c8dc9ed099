package textract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	got *textract.DetectDocumentTextInput
	out *textract.DetectDocumentTextOutput
	err error
}

func (f *fakeAPI) DetectDocumentText(_ context.Context, in *textract.DetectDocumentTextInput, _ ...func(*textract.Options)) (*textract.DetectDocumentTextOutput, error) {
	f.got = in
	return f.out, f.err
}

func writeImage(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "page-0001.png")
	require.NoError(t, os.WriteFile(p, []byte("png-bytes"), 0o600))
	return p
}

func TestRecognizeJoinsLineBlocks(t *testing.T) {
	api := &fakeAPI{out: &textract.DetectDocumentTextOutput{Blocks: []types.Block{
		{BlockType: types.BlockTypePage},
		{BlockType: types.BlockTypeLine, Text: aws.String("A Study of Things")},
		{BlockType: types.BlockTypeWord, Text: aws.String("A")},
		{BlockType: types.BlockTypeLine, Text: aws.String("J. Doe, R. Roe")},
	}}}
	text, err := NewWithAPI(api).Recognize(context.Background(), writeImage(t))
	require.NoError(t, err)
	assert.Equal(t, "A Study of Things\nJ. Doe, R. Roe", text)
	assert.Equal(t, []byte("png-bytes"), api.got.Document.Bytes)
}

func TestRecognizeError(t *testing.T) {
	api := &fakeAPI{err: errors.New("throttled")}
	_, err := NewWithAPI(api).Recognize(context.Background(), writeImage(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}
