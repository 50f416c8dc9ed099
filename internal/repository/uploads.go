package repository

import (
	"context"
	"log/slog"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/paper-summarizer/internal/common"
	"github.com/joseph-ayodele/paper-summarizer/internal/entity"
)

type UploadRepository interface {
	Insert(ctx context.Context, u entity.Upload) error
	Get(ctx context.Context, id uuid.UUID) (*entity.Upload, error)
	GetBlob(ctx context.Context, id uuid.UUID) ([]byte, error)
	// List returns uploads newest first. limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]entity.UploadSummary, error)
}

type uploadRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewUploadRepository(db *DB, logger *slog.Logger) UploadRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &uploadRepo{db: db, logger: logger}
}

func (r *uploadRepo) Insert(ctx context.Context, u entity.Upload) error {
	q, args := r.db.builder().Insert("uploads").
		Columns("id", "file_name", "file_blob", "uploaded_at", "model_name").
		Values(u.ID.String(), u.Filename, u.Blob, u.UploadedAt.UTC(), u.Model).
		Query()
	if err := r.db.exec(ctx, q, args); err != nil {
		r.logger.Error("failed to insert upload", "upload_id", u.ID, "filename", u.Filename, "error", err)
		return writeError("upload", u.ID.String(), err)
	}
	return nil
}

func (r *uploadRepo) Get(ctx context.Context, id uuid.UUID) (*entity.Upload, error) {
	q, args := r.db.builder().Select("id", "file_name", "file_blob", "uploaded_at", "model_name").
		From(entsql.Table("uploads")).
		Where(entsql.EQ("id", id.String())).
		Query()
	rows, err := r.db.query(ctx, q, args)
	if err != nil {
		return nil, common.Database("get upload", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, common.Database("get upload", err)
		}
		return nil, notFound("upload", id.String())
	}
	var (
		u   entity.Upload
		sid string
	)
	if err := rows.Scan(&sid, &u.Filename, &u.Blob, &u.UploadedAt, &u.Model); err != nil {
		return nil, common.Database("scan upload", err)
	}
	if u.ID, err = uuid.Parse(sid); err != nil {
		return nil, common.Database("parse upload id", err)
	}
	return &u, nil
}

func (r *uploadRepo) GetBlob(ctx context.Context, id uuid.UUID) ([]byte, error) {
	u, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Blob, nil
}

func (r *uploadRepo) List(ctx context.Context, limit int) ([]entity.UploadSummary, error) {
	sel := r.db.builder().Select("id", "file_name", "uploaded_at", "model_name", "LENGTH(file_blob)").
		From(entsql.Table("uploads")).
		OrderBy(entsql.Desc("uploaded_at"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	q, args := sel.Query()
	rows, err := r.db.query(ctx, q, args)
	if err != nil {
		return nil, common.Database("list uploads", err)
	}
	defer rows.Close()

	var out []entity.UploadSummary
	for rows.Next() {
		var (
			s   entity.UploadSummary
			sid string
		)
		if err := rows.Scan(&sid, &s.Filename, &s.UploadedAt, &s.Model, &s.Size); err != nil {
			return nil, common.Database("scan upload", err)
		}
		if s.ID, err = uuid.Parse(sid); err != nil {
			return nil, common.Database("parse upload id", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, common.Database("list uploads", err)
	}
	return out, nil
}
