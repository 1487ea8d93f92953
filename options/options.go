// Package options provides functional options for configuring Index instances.
package options

import (
	"errors"
	"time"

	"github.com/botirk38/softcosine/backends"
	"github.com/botirk38/softcosine/types"
)

// Option represents a configuration option for an Index
type Option func(*Config) error

// Config holds the configuration for building an Index
type Config struct {
	Backend types.IndexBackend
	// Capacity preallocates room for the corpus in the default backend
	Capacity int
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{}
}

// Apply applies all the given options to the config
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// Validate fills in the default in-memory backend when none was chosen
func (c *Config) Validate() error {
	if c.Backend != nil {
		return nil
	}
	backend, err := backends.NewMemoryBackend(types.BackendConfig{
		Options: map[string]any{"capacity": c.Capacity},
	})
	if err != nil {
		return err
	}
	c.Backend = backend
	return nil
}

// WithCapacity preallocates room for n documents in the default backend
func WithCapacity(n int) Option {
	return func(cfg *Config) error {
		if n < 0 {
			return errors.New("capacity cannot be negative")
		}
		cfg.Capacity = n
		return nil
	}
}

// WithMemoryBackend stores documents in process memory
func WithMemoryBackend() Option {
	return func(cfg *Config) error {
		backend, err := backends.NewMemoryBackend(types.BackendConfig{
			Options: map[string]any{"capacity": cfg.Capacity},
		})
		if err != nil {
			return err
		}
		cfg.Backend = backend
		return nil
	}
}

// WithSQLiteBackend stores documents in a SQLite database file
func WithSQLiteBackend(path string) Option {
	return func(cfg *Config) error {
		backend, err := backends.NewSQLiteBackend(types.BackendConfig{
			ConnectionString: path,
		})
		if err != nil {
			return err
		}
		cfg.Backend = backend
		return nil
	}
}

// WithRedisBackend stores documents in a Redis list under prefix
func WithRedisBackend(addr string, db int, prefix string, cacheSize int) Option {
	return func(cfg *Config) error {
		backend, err := backends.NewRedisBackend(types.BackendConfig{
			ConnectionString: addr,
			Database:         db,
			CacheSize:        cacheSize,
			Timeout:          5 * time.Second,
			Options:          map[string]any{"prefix": prefix},
		})
		if err != nil {
			return err
		}
		cfg.Backend = backend
		return nil
	}
}

// WithBackend creates a backend through the factory
func WithBackend(backendType types.BackendType, config types.BackendConfig) Option {
	return func(cfg *Config) error {
		factory := &backends.BackendFactory{}
		backend, err := factory.NewBackend(backendType, config)
		if err != nil {
			return err
		}
		cfg.Backend = backend
		return nil
	}
}

// WithCustomBackend allows using a pre-configured backend
func WithCustomBackend(backend types.IndexBackend) Option {
	return func(cfg *Config) error {
		if backend == nil {
			return errors.New("backend cannot be nil")
		}
		cfg.Backend = backend
		return nil
	}
}
