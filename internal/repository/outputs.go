package repository

import (
	"context"
	"log/slog"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/paper-summarizer/internal/common"
	"github.com/joseph-ayodele/paper-summarizer/internal/entity"
)

type OutputRepository interface {
	Insert(ctx context.Context, o entity.OutputArtifact) error
	Get(ctx context.Context, batchID uuid.UUID) (*entity.OutputArtifact, error)
}

type outputRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewOutputRepository(db *DB, logger *slog.Logger) OutputRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &outputRepo{db: db, logger: logger}
}

func (r *outputRepo) Insert(ctx context.Context, o entity.OutputArtifact) error {
	q, args := r.db.builder().Insert("outputs").
		Columns("batch_id", "excel_blob", "generated_at").
		Values(o.BatchID.String(), o.Blob, o.GeneratedAt.UTC()).
		Query()
	if err := r.db.exec(ctx, q, args); err != nil {
		r.logger.Error("failed to insert output", "batch_id", o.BatchID, "error", err)
		return writeError("output", o.BatchID.String(), err)
	}
	return nil
}

func (r *outputRepo) Get(ctx context.Context, batchID uuid.UUID) (*entity.OutputArtifact, error) {
	q, args := r.db.builder().Select("excel_blob", "generated_at").
		From(entsql.Table("outputs")).
		Where(entsql.EQ("batch_id", batchID.String())).
		Query()
	rows, err := r.db.query(ctx, q, args)
	if err != nil {
		return nil, common.Database("get output", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, common.Database("get output", err)
		}
		return nil, notFound("output", batchID.String())
	}
	o := entity.OutputArtifact{BatchID: batchID}
	if err := rows.Scan(&o.Blob, &o.GeneratedAt); err != nil {
		return nil, common.Database("scan output", err)
	}
	return &o, nil
}
