package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/debemdeboas/sorteio-admin/internal/config"
	"github.com/debemdeboas/sorteio-admin/internal/model"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("sqlite", func(t *testing.T) {
		cfg := config.StoreConfig{Backend: config.StoreBackendSQLite}
		cfg.SQLite.Path = filepath.Join(t.TempDir(), "processes.db")

		repo, err := Open(ctx, cfg)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		defer repo.Close()

		if _, ok := repo.(*DBRepository); !ok {
			t.Fatalf("Expected *DBRepository, got %T", repo)
		}
		if err := repo.Put(ctx, model.NewProcessDocument("A")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		// A second handle on the same file sees the document.
		again, err := Open(ctx, cfg)
		if err != nil {
			t.Fatalf("Reopen failed: %v", err)
		}
		defer again.Close()
		if _, err := again.GetByKey(ctx, "A"); err != nil {
			t.Errorf("Expected document to persist, got %v", err)
		}
	})

	t.Run("memory", func(t *testing.T) {
		repo, err := Open(ctx, config.StoreConfig{Backend: config.StoreBackendMemory})
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		if _, ok := repo.(*MemoryRepository); !ok {
			t.Errorf("Expected *MemoryRepository, got %T", repo)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if _, err := Open(ctx, config.StoreConfig{Backend: "mongo"}); err == nil {
			t.Error("Expected an error for an unknown backend")
		}
	})
}
