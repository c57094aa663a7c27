package server

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"github.com/fileupload/service/internal/config"
	"github.com/fileupload/service/internal/logging"
	"github.com/fileupload/service/internal/storage"
)

// NewStorage builds the backend selected by storage.backend.
func NewStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Backend {
	case config.BackendFilesystem:
		return storage.NewFileSystemStorage(afero.NewOsFs(), cfg.Storage.Location)
	case config.BackendMinio:
		m := cfg.Storage.Minio
		return storage.NewMinioStorage(m.Endpoint, m.AccessKey, m.SecretKey, m.Bucket, cfg.Storage.Location, m.UseSSL)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// Prepare runs the boot sequence: with wipe set, every previously uploaded
// file is discarded before the root location is (re)created.
func Prepare(ctx context.Context, store storage.Storage, wipe bool) error {
	if wipe {
		if err := store.DeleteAll(ctx); err != nil {
			return fmt.Errorf("wipe storage: %w", err)
		}
		logging.Warn("storage wiped on start")
	}
	if err := store.Init(ctx); err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	return nil
}
