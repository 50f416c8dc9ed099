package repository

import (
	"context"

	"entgo.io/ent/dialect"

	"github.com/joseph-ayodele/paper-summarizer/internal/common"
)

func ddl(dialectName string) []string {
	blob, ts := "BLOB", "TIMESTAMP"
	if dialectName == dialect.Postgres {
		blob, ts = "BYTEA", "TIMESTAMPTZ"
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS uploads (
			id TEXT PRIMARY KEY,
			file_name TEXT NOT NULL,
			file_blob ` + blob + ` NOT NULL,
			uploaded_at ` + ts + ` NOT NULL,
			model_name TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS metadata (
			id TEXT PRIMARY KEY REFERENCES uploads(id),
			batch_id TEXT NOT NULL,
			doi_issn TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL,
			authors TEXT NOT NULL,
			summary TEXT NOT NULL,
			processed_at ` + ts + ` NOT NULL,
			model_name TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS metadata_batch_id_idx ON metadata (batch_id)`,
		`CREATE TABLE IF NOT EXISTS outputs (
			batch_id TEXT PRIMARY KEY,
			excel_blob ` + blob + ` NOT NULL,
			generated_at ` + ts + ` NOT NULL
		)`,
	}
}

// Migrate creates the tables if they do not exist.
func (d *DB) Migrate(ctx context.Context) error {
	for _, stmt := range ddl(d.Dialect()) {
		if err := d.exec(ctx, stmt, []any{}); err != nil {
			d.logger.Error("db.migrate.failed", "error", err)
			return common.Database("migrate schema", err)
		}
	}
	d.logger.Info("db.migrate.ok", "dialect", d.Dialect())
	return nil
}
