package repository

import "log/slog"

// Repositories groups the three stores over one DB.
type Repositories struct {
	Uploads  UploadRepository
	Metadata MetadataRepository
	Outputs  OutputRepository
}

func New(db *DB, logger *slog.Logger) *Repositories {
	return &Repositories{
		Uploads:  NewUploadRepository(db, logger),
		Metadata: NewMetadataRepository(db, logger),
		Outputs:  NewOutputRepository(db, logger),
	}
}
