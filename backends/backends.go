// Package backends creates index storage backends by type.
package backends

import (
	"github.com/botirk38/softcosine/backends/inmemory"
	"github.com/botirk38/softcosine/backends/remote"
	"github.com/botirk38/softcosine/backends/sqlite"
	"github.com/botirk38/softcosine/types"
)

// ErrUnsupportedBackend is returned for unknown backend types.
var ErrUnsupportedBackend = types.ErrUnsupportedBackend

// BackendFactory creates index backends based on type and configuration
type BackendFactory struct{}

// NewBackend creates a new index backend of the specified type
func (f *BackendFactory) NewBackend(backendType types.BackendType, config types.BackendConfig) (types.IndexBackend, error) {
	switch backendType {
	case types.BackendMemory, "":
		return NewMemoryBackend(config)
	case types.BackendSQLite:
		return NewSQLiteBackend(config)
	case types.BackendRedis:
		return NewRedisBackend(config)
	default:
		return nil, ErrUnsupportedBackend
	}
}

// NewMemoryBackend creates a new in-memory backend
func NewMemoryBackend(config types.BackendConfig) (types.IndexBackend, error) {
	return inmemory.NewStore(config)
}

// NewSQLiteBackend creates a new SQLite backend
func NewSQLiteBackend(config types.BackendConfig) (types.IndexBackend, error) {
	return sqlite.NewStore(config)
}

// NewRedisBackend creates a new Redis backend
func NewRedisBackend(config types.BackendConfig) (types.IndexBackend, error) {
	return remote.NewRedisStore(config)
}
