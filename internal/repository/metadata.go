package repository

import (
	"context"
	"log/slog"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/paper-summarizer/internal/common"
	"github.com/joseph-ayodele/paper-summarizer/internal/entity"
)

type MetadataRepository interface {
	Insert(ctx context.Context, m entity.MetadataRecord) error
	Get(ctx context.Context, id uuid.UUID) (*entity.MetadataRecord, error)
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]entity.MetadataRecord, error)
}

type metadataRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewMetadataRepository(db *DB, logger *slog.Logger) MetadataRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &metadataRepo{db: db, logger: logger}
}

var metadataColumns = []string{"id", "batch_id", "doi_issn", "title", "authors", "summary", "processed_at", "model_name"}

func (r *metadataRepo) Insert(ctx context.Context, m entity.MetadataRecord) error {
	q, args := r.db.builder().Insert("metadata").
		Columns(metadataColumns...).
		Values(m.ID.String(), m.BatchID.String(), m.DOIISSN, m.Title, m.Authors, m.Summary, m.ProcessedAt.UTC(), m.Model).
		Query()
	if err := r.db.exec(ctx, q, args); err != nil {
		r.logger.Error("failed to insert metadata", "document_id", m.ID, "batch_id", m.BatchID, "error", err)
		return writeError("metadata", m.ID.String(), err)
	}
	return nil
}

func (r *metadataRepo) Get(ctx context.Context, id uuid.UUID) (*entity.MetadataRecord, error) {
	q, args := r.db.builder().Select(metadataColumns...).
		From(entsql.Table("metadata")).
		Where(entsql.EQ("id", id.String())).
		Query()
	recs, err := r.scan(ctx, q, args)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, notFound("metadata", id.String())
	}
	return &recs[0], nil
}

func (r *metadataRepo) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]entity.MetadataRecord, error) {
	q, args := r.db.builder().Select(metadataColumns...).
		From(entsql.Table("metadata")).
		Where(entsql.EQ("batch_id", batchID.String())).
		OrderBy("processed_at").
		Query()
	return r.scan(ctx, q, args)
}

func (r *metadataRepo) scan(ctx context.Context, q string, args []any) ([]entity.MetadataRecord, error) {
	rows, err := r.db.query(ctx, q, args)
	if err != nil {
		return nil, common.Database("query metadata", err)
	}
	defer rows.Close()

	var out []entity.MetadataRecord
	for rows.Next() {
		var (
			m       entity.MetadataRecord
			id, bid string
		)
		if err := rows.Scan(&id, &bid, &m.DOIISSN, &m.Title, &m.Authors, &m.Summary, &m.ProcessedAt, &m.Model); err != nil {
			return nil, common.Database("scan metadata", err)
		}
		if m.ID, err = uuid.Parse(id); err != nil {
			return nil, common.Database("parse metadata id", err)
		}
		if m.BatchID, err = uuid.Parse(bid); err != nil {
			return nil, common.Database("parse batch id", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, common.Database("query metadata", err)
	}
	return out, nil
}
