// Package server exposes the extraction pipeline and the processing history over gRPC.
package server

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/paper-summarizer/constants"
	"github.com/joseph-ayodele/paper-summarizer/internal/async"
	"github.com/joseph-ayodele/paper-summarizer/internal/common"
	"github.com/joseph-ayodele/paper-summarizer/internal/pipeline"
	"github.com/joseph-ayodele/paper-summarizer/internal/repository"
)

const maxFilenameLength = 255

// Config holds request defaults and limits.
type Config struct {
	AvailableModels  []string
	DefaultModel     string
	DefaultPageLimit int
	// HistoryLimit caps ListUploads; 0 lists everything.
	HistoryLimit int
}

type PaperService struct {
	runner async.BatchRunner
	queue  async.Queue
	repos  *repository.Repositories
	cfg    Config
	logger *slog.Logger
}

func NewPaperService(runner async.BatchRunner, queue async.Queue, repos *repository.Repositories, cfg Config, logger *slog.Logger) *PaperService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaperService{runner: runner, queue: queue, repos: repos, cfg: cfg, logger: logger}
}

var _ PaperServiceServer = (*PaperService)(nil)

// decodeBatch parses and validates a batch payload, filling in defaults.
func (s *PaperService) decodeBatch(req *structpb.Struct) (batchRequest, error) {
	br, err := parseBatchRequest(req)
	if err != nil {
		return batchRequest{}, status.Error(codes.InvalidArgument, err.Error())
	}
	if br.Model == "" {
		br.Model = s.cfg.DefaultModel
	}
	if _, ok := req.GetFields()["page_limit"]; !ok {
		br.PageLimit = s.cfg.DefaultPageLimit
	}

	v := common.NewValidator().
		Field("model", br.Model, common.Required, common.OneOf(s.cfg.AvailableModels...)).
		Field("page_limit", br.PageLimit, common.NonNegative).
		Field("documents", br.Documents, common.MinItems(1))
	for _, d := range br.Documents {
		v.Field("filename", d.Filename, common.Required, common.MaxLength(maxFilenameLength))
		if d.Filename != "" && !constants.IsAllowed(d.Filename) {
			v.Field("filename", d.Filename, func(field string, value interface{}) *common.ValidationError {
				return &common.ValidationError{Field: field, Value: value, Message: "must be a PDF document"}
			})
		}
		if len(d.Content) == 0 {
			v.Field("content_base64", d.Filename, func(field string, value interface{}) *common.ValidationError {
				return &common.ValidationError{Field: field, Value: value, Message: "must not be empty"}
			})
		}
	}
	if err := common.ValidateAndReturnError(v); err != nil {
		s.logger.Warn("server.batch.invalid", "error", err)
		return batchRequest{}, err
	}
	return br, nil
}

func (s *PaperService) RunBatch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	br, err := s.decodeBatch(req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("server.run_batch", append(common.LogAttrs(ctx), "documents", len(br.Documents), "model", br.Model)...)

	res, err := s.runner.RunBatch(ctx, br.Documents, pipeline.Options{Model: br.Model, PageLimit: br.PageLimit})
	if err != nil {
		s.logger.Error("server.run_batch.failed", "kind", common.KindOf(err), "error", err)
		return nil, common.ToStatus(err)
	}
	return batchResultStruct(res)
}

func (s *PaperService) SubmitBatch(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {
	br, err := s.decodeBatch(req)
	if err != nil {
		return nil, err
	}
	id, err := s.queue.Enqueue(ctx, async.Job{
		Documents: br.Documents,
		Model:     br.Model,
		PageLimit: br.PageLimit,
		RequestID: common.RequestIDFromContext(ctx),
	})
	if err != nil {
		s.logger.Error("server.submit_batch.failed", "error", err)
		return nil, status.Error(codes.Unavailable, err.Error())
	}
	return wrapperspb.String(id.String()), nil
}

func (s *PaperService) GetBatch(_ context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	id, err := parseID("batch_id", req.GetValue())
	if err != nil {
		return nil, err
	}
	st, ok := s.queue.Get(id)
	if !ok {
		return nil, common.NotFoundError("batch " + id.String() + " not found")
	}
	return batchStateStruct(st)
}

func (s *PaperService) ListUploads(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	ups, err := s.repos.Uploads.List(ctx, s.cfg.HistoryLimit)
	if err != nil {
		s.logger.Error("server.list_uploads.failed", "error", err)
		return nil, common.ToStatus(err)
	}
	return uploadsStruct(ups)
}

func (s *PaperService) GetMetadata(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	id, err := parseID("id", req.GetValue())
	if err != nil {
		return nil, err
	}
	rec, err := s.repos.Metadata.Get(ctx, id)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return structpb.NewStruct(recordMap(*rec))
}

func (s *PaperService) GetUploadBlob(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	id, err := parseID("id", req.GetValue())
	if err != nil {
		return nil, err
	}
	blob, err := s.repos.Uploads.GetBlob(ctx, id)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return wrapperspb.Bytes(blob), nil
}

func (s *PaperService) GetOutputBlob(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	id, err := parseID("batch_id", req.GetValue())
	if err != nil {
		return nil, err
	}
	out, err := s.repos.Outputs.Get(ctx, id)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return wrapperspb.Bytes(out.Blob), nil
}

func parseID(field, raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if err := common.ValidateAndReturnError(common.NewValidator().Field(field, raw, common.Required, common.UUID)); err != nil {
		return uuid.Nil, err
	}
	return uuid.MustParse(raw), nil
}
