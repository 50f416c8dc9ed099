package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"entgo.io/ent/dialect"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/paper-summarizer/internal/common"
	"github.com/joseph-ayodele/paper-summarizer/internal/entity"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, Config{DSN: filepath.Join(t.TempDir(), "db", "papers.db")}, nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Migrate(ctx), "migrate is idempotent")
	require.NoError(t, db.Ping(ctx, time.Second))
	return db
}

func TestUploadsRoundTrip(t *testing.T) {
	ctx := context.Background()
	repos := New(openTestDB(t), nil)

	older := entity.Upload{ID: uuid.New(), Filename: "a.pdf", Blob: []byte("AAAA"), UploadedAt: time.Now().Add(-time.Hour), Model: "m1"}
	newer := entity.Upload{ID: uuid.New(), Filename: "b.pdf", Blob: []byte("BB"), UploadedAt: time.Now(), Model: "m2"}
	require.NoError(t, repos.Uploads.Insert(ctx, older))
	require.NoError(t, repos.Uploads.Insert(ctx, newer))

	got, err := repos.Uploads.Get(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, older.Filename, got.Filename)
	assert.Equal(t, older.Blob, got.Blob)
	assert.Equal(t, "m1", got.Model)
	assert.WithinDuration(t, older.UploadedAt, got.UploadedAt, time.Second)

	blob, err := repos.Uploads.GetBlob(ctx, newer.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("BB"), blob)

	list, err := repos.Uploads.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, int64(2), list[0].Size)
	assert.Equal(t, older.ID, list[1].ID)

	list, err = repos.Uploads.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUploadsDuplicateAndMissing(t *testing.T) {
	ctx := context.Background()
	repos := New(openTestDB(t), nil)

	u := entity.Upload{ID: uuid.New(), Filename: "a.pdf", Blob: []byte("x"), UploadedAt: time.Now(), Model: "m"}
	require.NoError(t, repos.Uploads.Insert(ctx, u))
	err := repos.Uploads.Insert(ctx, u)
	require.Error(t, err)
	assert.Equal(t, common.KindDatabase, common.KindOf(err))
	assert.ErrorIs(t, err, common.ErrDuplicateKey)

	_, err = repos.Uploads.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMetadataAndOutputs(t *testing.T) {
	ctx := context.Background()
	repos := New(openTestDB(t), nil)
	batch := uuid.New()

	u := entity.Upload{ID: uuid.New(), Filename: "a.pdf", Blob: []byte("x"), UploadedAt: time.Now(), Model: "m"}
	require.NoError(t, repos.Uploads.Insert(ctx, u))

	rec := entity.MetadataRecord{ID: u.ID, BatchID: batch, DOIISSN: "10.1000/182", Title: "T", Authors: "A, B", Summary: "S", Model: "m", ProcessedAt: time.Now()}
	require.NoError(t, repos.Metadata.Insert(ctx, rec))

	got, err := repos.Metadata.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Title, got.Title)
	assert.Equal(t, batch, got.BatchID)

	byBatch, err := repos.Metadata.ListByBatch(ctx, batch)
	require.NoError(t, err)
	assert.Len(t, byBatch, 1)

	err = repos.Metadata.Insert(ctx, rec)
	assert.ErrorIs(t, err, common.ErrDuplicateKey)

	// metadata requires a stored upload
	orphan := rec
	orphan.ID = uuid.New()
	err = repos.Metadata.Insert(ctx, orphan)
	assert.Equal(t, common.KindDatabase, common.KindOf(err))

	out := entity.OutputArtifact{BatchID: batch, Blob: []byte("xlsx"), GeneratedAt: time.Now()}
	require.NoError(t, repos.Outputs.Insert(ctx, out))
	gotOut, err := repos.Outputs.Get(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, []byte("xlsx"), gotOut.Blob)
	assert.ErrorIs(t, repos.Outputs.Insert(ctx, out), common.ErrDuplicateKey)

	_, err = repos.Outputs.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestWriteFailuresAreDatabaseErrors(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()
	db := NewFromSQL(sqlDB, dialect.SQLite, nil)
	repos := New(db, nil)
	ctx := context.Background()

	mock.ExpectPing().WillReturnError(errors.New("disk I/O error"))
	err = db.Ping(ctx, 0)
	assert.Equal(t, common.KindDatabase, common.KindOf(err))

	mock.ExpectExec("INSERT INTO .uploads.").WillReturnError(errors.New("database is locked"))
	err = repos.Uploads.Insert(ctx, entity.Upload{ID: uuid.New(), Filename: "a.pdf", UploadedAt: time.Now()})
	assert.Equal(t, common.KindDatabase, common.KindOf(err))
	assert.NotErrorIs(t, err, common.ErrDuplicateKey)

	mock.ExpectExec("INSERT INTO .metadata.").WillReturnError(errors.New("UNIQUE constraint failed: metadata.id"))
	err = repos.Metadata.Insert(ctx, entity.MetadataRecord{ID: uuid.New(), BatchID: uuid.New()})
	assert.ErrorIs(t, err, common.ErrDuplicateKey)

	mock.ExpectExec("INSERT INTO .outputs.").WillReturnError(errors.New("disk full"))
	err = repos.Outputs.Insert(ctx, entity.OutputArtifact{BatchID: uuid.New()})
	assert.Equal(t, common.KindDatabase, common.KindOf(err))

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("read-only"))
	err = db.Migrate(ctx)
	assert.Equal(t, common.KindDatabase, common.KindOf(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsPostgresDSN(t *testing.T) {
	assert.True(t, IsPostgresDSN("postgres://u:p@localhost/db"))
	assert.True(t, IsPostgresDSN("postgresql://localhost/db"))
	assert.False(t, IsPostgresDSN("/var/lib/papers.db"))
	assert.False(t, IsPostgresDSN(":memory:"))
}
