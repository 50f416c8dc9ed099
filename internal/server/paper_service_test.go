package server

import (
	"context"
	"encoding/base64"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/paper-summarizer/constants"
	"github.com/joseph-ayodele/paper-summarizer/internal/async"
	"github.com/joseph-ayodele/paper-summarizer/internal/common"
	"github.com/joseph-ayodele/paper-summarizer/internal/entity"
	"github.com/joseph-ayodele/paper-summarizer/internal/pipeline"
	"github.com/joseph-ayodele/paper-summarizer/internal/repository"
)

// stubRunner persists nothing; documents named "bad.pdf" are skipped.
type stubRunner struct {
	lastOpts pipeline.Options
}

func (r *stubRunner) RunBatch(_ context.Context, docs []entity.Document, opts pipeline.Options) (*pipeline.BatchResult, error) {
	r.lastOpts = opts
	res := &pipeline.BatchResult{BatchID: uuid.New()}
	for _, d := range docs {
		if d.Filename == "bad.pdf" {
			res.Outcomes = append(res.Outcomes, pipeline.Outcome{Filename: d.Filename, Status: constants.DocumentSkipped, Kind: common.KindSummarization})
			continue
		}
		res.Outcomes = append(res.Outcomes, pipeline.Outcome{Filename: d.Filename, Status: constants.DocumentPersisted})
		res.Records = append(res.Records, entity.MetadataRecord{ID: uuid.New(), BatchID: res.BatchID, Title: string(d.Content), Model: opts.Model})
	}
	if len(res.Records) == 0 {
		res.Status = constants.BatchEmpty
		return res, common.ErrNoMetadataExtracted
	}
	res.Status = constants.BatchCompleted
	res.ArtifactStored = true
	res.Export = []byte("xlsx")
	return res, nil
}

type harness struct {
	client *PaperServiceClient
	conn   *grpc.ClientConn
	runner *stubRunner
	repos  *repository.Repositories
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	db, err := repository.Open(ctx, repository.Config{DSN: filepath.Join(t.TempDir(), "papers.db")}, nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))
	repos := repository.New(db, nil)

	runner := &stubRunner{}
	queue := async.NewBatchQueue(runner, nil)
	t.Cleanup(func() { queue.Shutdown(context.Background()) })

	svc := NewPaperService(runner, queue, repos, Config{
		AvailableModels:  []string{"m-1", "m-2"},
		DefaultModel:     "m-1",
		DefaultPageLimit: 3,
	}, nil)
	srv, _ := NewGRPCServer(svc, nil)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &harness{client: NewPaperServiceClient(conn), conn: conn, runner: runner, repos: repos}
}

func batchPayload(t *testing.T, fields map[string]any, docs ...[2]string) *structpb.Struct {
	t.Helper()
	list := make([]any, 0, len(docs))
	for _, d := range docs {
		list = append(list, map[string]any{
			"filename":       d[0],
			"content_base64": base64.StdEncoding.EncodeToString([]byte(d[1])),
		})
	}
	m := map[string]any{"documents": list}
	for k, v := range fields {
		m[k] = v
	}
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func TestRunBatch(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	out, err := h.client.RunBatch(ctx, batchPayload(t, map[string]any{"model": "m-2", "page_limit": 2},
		[2]string{"a.pdf", "Paper A"}, [2]string{"bad.pdf", "x"}))
	require.NoError(t, err)

	f := out.GetFields()
	assert.Equal(t, string(constants.BatchCompleted), f["status"].GetStringValue())
	assert.True(t, f["artifact_stored"].GetBoolValue())
	records := f["records"].GetListValue().GetValues()
	require.Len(t, records, 1)
	assert.Equal(t, "Paper A", records[0].GetStructValue().GetFields()["title"].GetStringValue())
	assert.Len(t, f["outcomes"].GetListValue().GetValues(), 2)
	assert.Equal(t, "m-2", h.runner.lastOpts.Model)
	assert.Equal(t, 2, h.runner.lastOpts.PageLimit)
}

func TestRunBatchDefaults(t *testing.T) {
	h := newHarness(t)
	_, err := h.client.RunBatch(context.Background(), batchPayload(t, nil, [2]string{"a.pdf", "A"}))
	require.NoError(t, err)
	assert.Equal(t, "m-1", h.runner.lastOpts.Model)
	assert.Equal(t, 3, h.runner.lastOpts.PageLimit)
}

func TestRunBatchNoMetadataIsFailedPrecondition(t *testing.T) {
	h := newHarness(t)
	_, err := h.client.RunBatch(context.Background(), batchPayload(t, nil, [2]string{"bad.pdf", "x"}))
	require.Error(t, err)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestRunBatchValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	cases := map[string]*structpb.Struct{
		"unknown model":  batchPayload(t, map[string]any{"model": "nope"}, [2]string{"a.pdf", "A"}),
		"negative limit": batchPayload(t, map[string]any{"page_limit": -1}, [2]string{"a.pdf", "A"}),
		"no documents":   batchPayload(t, nil),
		"not a pdf":      batchPayload(t, nil, [2]string{"notes.txt", "A"}),
		"empty content":  batchPayload(t, nil, [2]string{"a.pdf", ""}),
	}
	bad, err := structpb.NewStruct(map[string]any{"documents": []any{map[string]any{"filename": "a.pdf", "content_base64": "%%%"}}})
	require.NoError(t, err)
	cases["bad base64"] = bad

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := h.client.RunBatch(ctx, req)
			require.Error(t, err)
			assert.Equal(t, codes.InvalidArgument, status.Code(err))
		})
	}
}

func TestSubmitAndGetBatch(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	id, err := h.client.SubmitBatch(ctx, batchPayload(t, nil, [2]string{"a.pdf", "A"}))
	require.NoError(t, err)
	_, err = uuid.Parse(id.GetValue())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		st, err := h.client.GetBatch(ctx, id)
		return err == nil && st.GetFields()["status"].GetStringValue() == string(constants.BatchCompleted)
	}, 2*time.Second, 10*time.Millisecond)

	_, err = h.client.GetBatch(ctx, wrapperspb.String(uuid.NewString()))
	assert.Equal(t, codes.NotFound, status.Code(err))
	_, err = h.client.GetBatch(ctx, wrapperspb.String("not-a-uuid"))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestHistory(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	id, batchID := uuid.New(), uuid.New()
	require.NoError(t, h.repos.Uploads.Insert(ctx, entity.Upload{ID: id, Filename: "a.pdf", Blob: []byte("%PDF"), UploadedAt: time.Now().UTC(), Model: "m-1"}))
	require.NoError(t, h.repos.Metadata.Insert(ctx, entity.MetadataRecord{ID: id, BatchID: batchID, Title: "T", Authors: "A", Summary: "S", Model: "m-1", ProcessedAt: time.Now().UTC()}))
	require.NoError(t, h.repos.Outputs.Insert(ctx, entity.OutputArtifact{BatchID: batchID, Blob: []byte("xlsx"), GeneratedAt: time.Now().UTC()}))

	ups, err := h.client.ListUploads(ctx, &emptypb.Empty{})
	require.NoError(t, err)
	list := ups.GetFields()["uploads"].GetListValue().GetValues()
	require.Len(t, list, 1)
	assert.Equal(t, "a.pdf", list[0].GetStructValue().GetFields()["filename"].GetStringValue())
	assert.Equal(t, 4.0, list[0].GetStructValue().GetFields()["size"].GetNumberValue())

	md, err := h.client.GetMetadata(ctx, wrapperspb.String(id.String()))
	require.NoError(t, err)
	assert.Equal(t, "T", md.GetFields()["title"].GetStringValue())
	assert.Equal(t, batchID.String(), md.GetFields()["batch_id"].GetStringValue())

	blob, err := h.client.GetUploadBlob(ctx, wrapperspb.String(id.String()))
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), blob.GetValue())

	out, err := h.client.GetOutputBlob(ctx, wrapperspb.String(batchID.String()))
	require.NoError(t, err)
	assert.Equal(t, []byte("xlsx"), out.GetValue())

	_, err = h.client.GetMetadata(ctx, wrapperspb.String(uuid.NewString()))
	assert.Equal(t, codes.NotFound, status.Code(err))
	_, err = h.client.GetOutputBlob(ctx, wrapperspb.String(uuid.NewString()))
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	resp, err := healthpb.NewHealthClient(h.conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: PaperServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
