package repository

import (
	"context"
	"fmt"
	"os"

	"github.com/debemdeboas/sorteio-admin/internal/config"
	"github.com/debemdeboas/sorteio-admin/internal/db"
)

// Open builds the repository selected by cfg.Backend. S3 credentials and a
// custom endpoint are read from S3_ACCESS_KEY_ID, S3_SECRET_ACCESS_KEY and
// S3_ENDPOINT.
func Open(ctx context.Context, cfg config.StoreConfig) (DocumentRepository, error) {
	switch cfg.Backend {
	case config.StoreBackendSQLite:
		database := db.NewSQLite(cfg.SQLite.Path)
		if err := database.InitDB(); err != nil {
			return nil, fmt.Errorf(config.ErrInitializeDatabaseFmt, err)
		}
		repoLogger.Info().Str("path", cfg.SQLite.Path).Msg("Using SQLite store")
		return NewDBRepository(database), nil

	case config.StoreBackendS3:
		repo, err := NewS3Repository(ctx, S3Options{
			Bucket:          cfg.S3.Bucket,
			Prefix:          cfg.S3.Prefix,
			Region:          cfg.S3.Region,
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		})
		if err != nil {
			return nil, err
		}
		repoLogger.Info().Str("bucket", cfg.S3.Bucket).Str("prefix", cfg.S3.Prefix).Msg("Using S3 store")
		return repo, nil

	case config.StoreBackendMemory:
		repoLogger.Warn().Msg("Using in-memory store, nothing survives a restart")
		return NewMemoryRepository(), nil

	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Backend)
	}
}
