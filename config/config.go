// Package config loads softcosine settings from a TOML file and SOFTCOSINE_*
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/botirk38/softcosine/matrix"
	"github.com/botirk38/softcosine/options"
	"github.com/botirk38/softcosine/similarity"
	"github.com/botirk38/softcosine/types"
)

// EnvPrefix prefixes every environment override, e.g. SOFTCOSINE_MATRIX_NONZERO_LIMIT.
const EnvPrefix = "SOFTCOSINE"

// Term weighting schemes for matrix construction.
const (
	WeightingNone = "none"
	WeightingIDF  = "idf"
)

// Config is the complete tool configuration.
type Config struct {
	Matrix   MatrixConfig   `mapstructure:"matrix" toml:"matrix"`
	Index    IndexConfig    `mapstructure:"index" toml:"index"`
	Provider ProviderConfig `mapstructure:"provider" toml:"provider"`
}

// MatrixConfig controls term similarity matrix construction.
type MatrixConfig struct {
	NonzeroLimit  int     `mapstructure:"nonzero_limit" toml:"nonzero_limit"`
	MinSimilarity float64 `mapstructure:"min_similarity" toml:"min_similarity"`
	Exponent      float64 `mapstructure:"exponent" toml:"exponent"`
	Dominant      bool    `mapstructure:"dominant" toml:"dominant"`
	Weighting     string  `mapstructure:"weighting" toml:"weighting"`
	Comparator    string  `mapstructure:"comparator" toml:"comparator"`
}

// IndexConfig selects and configures the index backend.
type IndexConfig struct {
	Backend     string `mapstructure:"backend" toml:"backend"`
	SQLitePath  string `mapstructure:"sqlite_path" toml:"sqlite_path"`
	RedisAddr   string `mapstructure:"redis_addr" toml:"redis_addr"`
	RedisDB     int    `mapstructure:"redis_db" toml:"redis_db"`
	RedisPrefix string `mapstructure:"redis_prefix" toml:"redis_prefix"`
	CacheSize   int    `mapstructure:"cache_size" toml:"cache_size"`
}

// ProviderConfig configures remote embedding providers.
type ProviderConfig struct {
	Type              string  `mapstructure:"type" toml:"type"`
	Model             string  `mapstructure:"model" toml:"model"`
	APIKey            string  `mapstructure:"api_key" toml:"api_key,omitempty"`
	BaseURL           string  `mapstructure:"base_url" toml:"base_url,omitempty"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" toml:"requests_per_second"`
	MaxBatchSize      int     `mapstructure:"max_batch_size" toml:"max_batch_size"`
	MaxBatchTokens    int     `mapstructure:"max_batch_tokens" toml:"max_batch_tokens"`
}

// Default returns the configuration used when no file or environment overrides exist.
func Default() *Config {
	return &Config{
		Matrix: MatrixConfig{
			NonzeroLimit:  matrix.DefaultNonzeroLimit,
			MinSimilarity: 0,
			Exponent:      matrix.DefaultExponent,
			Weighting:     WeightingIDF,
			Comparator:    "cosine",
		},
		Index: IndexConfig{
			Backend:     string(types.BackendMemory),
			SQLitePath:  "softcosine.db",
			RedisAddr:   "localhost:6379",
			RedisPrefix: "softcosine:",
			CacheSize:   4096,
		},
		Provider: ProviderConfig{
			Type:              string(types.ProviderOpenAI),
			RequestsPerSecond: 5,
			MaxBatchSize:      256,
			MaxBatchTokens:    8000,
		},
	}
}

// setDefaults registers every key so environment overrides reach Unmarshal.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("matrix.nonzero_limit", d.Matrix.NonzeroLimit)
	v.SetDefault("matrix.min_similarity", d.Matrix.MinSimilarity)
	v.SetDefault("matrix.exponent", d.Matrix.Exponent)
	v.SetDefault("matrix.dominant", d.Matrix.Dominant)
	v.SetDefault("matrix.weighting", d.Matrix.Weighting)
	v.SetDefault("matrix.comparator", d.Matrix.Comparator)

	v.SetDefault("index.backend", d.Index.Backend)
	v.SetDefault("index.sqlite_path", d.Index.SQLitePath)
	v.SetDefault("index.redis_addr", d.Index.RedisAddr)
	v.SetDefault("index.redis_db", d.Index.RedisDB)
	v.SetDefault("index.redis_prefix", d.Index.RedisPrefix)
	v.SetDefault("index.cache_size", d.Index.CacheSize)

	v.SetDefault("provider.type", d.Provider.Type)
	v.SetDefault("provider.model", d.Provider.Model)
	v.SetDefault("provider.api_key", d.Provider.APIKey)
	v.SetDefault("provider.base_url", d.Provider.BaseURL)
	v.SetDefault("provider.requests_per_second", d.Provider.RequestsPerSecond)
	v.SetDefault("provider.max_batch_size", d.Provider.MaxBatchSize)
	v.SetDefault("provider.max_batch_tokens", d.Provider.MaxBatchTokens)
}

// Load reads path (if non-empty) and applies environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if c.Matrix.NonzeroLimit < 0 {
		return fmt.Errorf("%w: matrix.nonzero_limit must be non-negative", types.ErrConfiguration)
	}
	if c.Matrix.MinSimilarity < 0 || c.Matrix.MinSimilarity > 1 {
		return fmt.Errorf("%w: matrix.min_similarity must be in [0, 1]", types.ErrConfiguration)
	}
	if c.Matrix.Exponent <= 0 {
		return fmt.Errorf("%w: matrix.exponent must be positive", types.ErrConfiguration)
	}
	switch c.Matrix.Weighting {
	case WeightingNone, WeightingIDF:
	default:
		return fmt.Errorf("%w: unknown matrix.weighting %q", types.ErrConfiguration, c.Matrix.Weighting)
	}
	if _, err := similarity.ByName(c.Matrix.Comparator); err != nil {
		return err
	}

	switch types.BackendType(c.Index.Backend) {
	case types.BackendMemory:
	case types.BackendSQLite:
		if c.Index.SQLitePath == "" {
			return fmt.Errorf("%w: index.sqlite_path is required for the sqlite backend", types.ErrConfiguration)
		}
	case types.BackendRedis:
		if c.Index.RedisAddr == "" {
			return fmt.Errorf("%w: index.redis_addr is required for the redis backend", types.ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: %s", types.ErrUnsupportedBackend, c.Index.Backend)
	}
	if c.Index.CacheSize < 0 {
		return fmt.Errorf("%w: index.cache_size must be non-negative", types.ErrConfiguration)
	}

	switch types.ProviderType(c.Provider.Type) {
	case types.ProviderOpenAI, types.ProviderGemini:
	default:
		return fmt.Errorf("%w: %s", types.ErrUnknownProvider, c.Provider.Type)
	}
	if c.Provider.RequestsPerSecond < 0 || c.Provider.MaxBatchSize < 0 || c.Provider.MaxBatchTokens < 0 {
		return fmt.Errorf("%w: provider limits must be non-negative", types.ErrConfiguration)
	}
	return nil
}

// MatrixOptions converts the matrix section into build options.
// Term weights depend on the corpus and are added by the caller.
func (c *Config) MatrixOptions() []matrix.Option {
	opts := []matrix.Option{
		matrix.WithNonzeroLimit(c.Matrix.NonzeroLimit),
		matrix.WithMinSimilarity(c.Matrix.MinSimilarity),
		matrix.WithExponent(c.Matrix.Exponent),
	}
	if comparator, err := similarity.ByName(c.Matrix.Comparator); err == nil {
		opts = append(opts, matrix.WithComparator(comparator))
	}
	if c.Matrix.Dominant {
		opts = append(opts, matrix.WithDiagonalDominance())
	}
	return opts
}

// IndexOptions converts the index section into index options.
func (c *Config) IndexOptions() []options.Option {
	switch types.BackendType(c.Index.Backend) {
	case types.BackendSQLite:
		return []options.Option{options.WithSQLiteBackend(c.Index.SQLitePath)}
	case types.BackendRedis:
		return []options.Option{options.WithRedisBackend(c.Index.RedisAddr, c.Index.RedisDB, c.Index.RedisPrefix, c.Index.CacheSize)}
	default:
		return []options.Option{options.WithMemoryBackend()}
	}
}

// Write saves c as TOML at path, creating parent directories.
func (c *Config) Write(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0600)
}
