package options

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/botirk38/softcosine/backends/inmemory"
	"github.com/botirk38/softcosine/backends/sqlite"
	"github.com/botirk38/softcosine/types"
)

func TestConfigCreation(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		cfg := NewConfig()
		if cfg.Backend != nil {
			t.Error("Expected backend to be nil initially")
		}
	})

	t.Run("ValidateFillsMemoryBackend", func(t *testing.T) {
		cfg := NewConfig()
		if err := cfg.Apply(WithCapacity(16)); err != nil {
			t.Fatalf("Failed to apply capacity: %v", err)
		}
		if err := cfg.Validate(); err != nil {
			t.Fatalf("Expected validation to pass, got: %v", err)
		}
		if _, ok := cfg.Backend.(*inmemory.Store); !ok {
			t.Errorf("Expected in-memory backend, got %T", cfg.Backend)
		}
	})

	t.Run("NegativeCapacity", func(t *testing.T) {
		cfg := NewConfig()
		if err := cfg.Apply(WithCapacity(-1)); err == nil {
			t.Error("Expected error for negative capacity")
		}
	})
}

func TestBackendOptions(t *testing.T) {
	t.Run("MemoryBackend", func(t *testing.T) {
		cfg := NewConfig()
		if err := cfg.Apply(WithMemoryBackend()); err != nil {
			t.Fatalf("Failed to apply memory backend: %v", err)
		}
		if _, ok := cfg.Backend.(*inmemory.Store); !ok {
			t.Errorf("Expected in-memory backend, got %T", cfg.Backend)
		}
	})

	t.Run("SQLiteBackend", func(t *testing.T) {
		cfg := NewConfig()
		path := filepath.Join(t.TempDir(), "index.db")
		if err := cfg.Apply(WithSQLiteBackend(path)); err != nil {
			t.Fatalf("Failed to apply sqlite backend: %v", err)
		}
		defer func() { _ = cfg.Backend.Close() }()
		if _, ok := cfg.Backend.(*sqlite.Store); !ok {
			t.Errorf("Expected sqlite backend, got %T", cfg.Backend)
		}
	})

	t.Run("FactoryBackend", func(t *testing.T) {
		cfg := NewConfig()
		if err := cfg.Apply(WithBackend(types.BackendMemory, types.BackendConfig{})); err != nil {
			t.Fatalf("Failed to apply factory backend: %v", err)
		}
		n, err := cfg.Backend.Len(context.Background())
		if err != nil || n != 0 {
			t.Errorf("Expected empty backend, got %d (err %v)", n, err)
		}
	})

	t.Run("UnsupportedBackend", func(t *testing.T) {
		cfg := NewConfig()
		err := cfg.Apply(WithBackend("cassandra", types.BackendConfig{}))
		if !errors.Is(err, types.ErrUnsupportedBackend) {
			t.Errorf("Expected ErrUnsupportedBackend, got %v", err)
		}
	})

	t.Run("CustomBackend", func(t *testing.T) {
		cfg := NewConfig()
		if err := cfg.Apply(WithCustomBackend(nil)); err == nil {
			t.Error("Expected error for nil backend")
		}

		store, _ := inmemory.NewStore(types.BackendConfig{})
		if err := cfg.Apply(WithCustomBackend(store)); err != nil {
			t.Fatalf("Failed to apply custom backend: %v", err)
		}
		if cfg.Backend != store {
			t.Error("Expected custom backend to be used")
		}
	})
}
