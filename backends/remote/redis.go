package remote

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/botirk38/softcosine/logger"
	"github.com/botirk38/softcosine/types"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix    = "softcosine:"
	defaultCacheSize = 4096
	defaultPageSize  = 512
)

// RedisStore implements IndexBackend with a Redis list of JSON documents.
// Decoded documents are kept in an LRU cache so repeated queries avoid
// re-fetching and re-decoding the corpus. Flush bumps a generation counter
// next to the list; a store that sees a new generation drops its cache, so
// several processes may share one list.
type RedisStore struct {
	client     *redis.Client
	listKey    string
	genKey     string
	pageSize   int
	cache      *lru.Cache[int, types.StoredDocument]
	generation atomic.Int64
}

// parseRedisURL parses a Redis URL and returns redis.Options
func parseRedisURL(connectionString string) (*redis.Options, error) {
	// Handle redis:// or rediss:// URLs
	if strings.HasPrefix(connectionString, "redis://") || strings.HasPrefix(connectionString, "rediss://") {
		parsedURL, err := url.Parse(connectionString)
		if err != nil {
			return nil, fmt.Errorf("invalid Redis URL: %w", err)
		}

		opts := &redis.Options{
			Addr: parsedURL.Host,
		}

		if parsedURL.Scheme == "rediss" {
			opts.TLSConfig = &tls.Config{
				MinVersion: tls.VersionTLS12,
			}
		}

		if parsedURL.User != nil {
			opts.Username = parsedURL.User.Username()
			if password, ok := parsedURL.User.Password(); ok {
				opts.Password = password
			}
		}

		// Extract database number from path
		if parsedURL.Path != "" && parsedURL.Path != "/" {
			dbStr := strings.TrimPrefix(parsedURL.Path, "/")
			if db, err := strconv.Atoi(dbStr); err == nil {
				opts.DB = db
			}
		}

		return opts, nil
	}

	// For simple address format (host:port), return minimal options
	return &redis.Options{
		Addr: connectionString,
	}, nil
}

// NewRedisStore creates a new Redis backend
func NewRedisStore(config types.BackendConfig) (*RedisStore, error) {
	opts, err := parseRedisURL(config.ConnectionString)
	if err != nil {
		return nil, err
	}

	// Override with explicit config values if provided
	if config.Username != "" {
		opts.Username = config.Username
	}
	if config.Password != "" {
		opts.Password = config.Password
	}
	if config.Database != 0 {
		opts.DB = config.Database
	}
	if config.Timeout > 0 {
		opts.ReadTimeout = config.Timeout
		opts.WriteTimeout = config.Timeout
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	prefix := defaultPrefix
	if p, ok := config.Options["prefix"].(string); ok && p != "" {
		prefix = p
	}

	pageSize := defaultPageSize
	if p, ok := config.Options["page_size"].(int); ok && p > 0 {
		pageSize = p
	}

	cacheSize := config.CacheSize
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, err := lru.New[int, types.StoredDocument](cacheSize)
	if err != nil {
		client.Close()
		return nil, err
	}

	logger.Debug("redis: connected to %s, list %sdocs", opts.Addr, prefix)
	store := &RedisStore{
		client:   client,
		listKey:  prefix + "docs",
		genKey:   prefix + "generation",
		pageSize: pageSize,
		cache:    cache,
	}
	store.generation.Store(-1)
	return store, nil
}

// syncGeneration purges the cache when the list was flushed since it was filled.
func (s *RedisStore) syncGeneration(ctx context.Context) error {
	gen, err := s.client.Get(ctx, s.genKey).Int64()
	if err == redis.Nil {
		gen, err = 0, nil
	}
	if err != nil {
		return fmt.Errorf("failed to read generation from Redis: %w", err)
	}
	if s.generation.Swap(gen) != gen {
		s.cache.Purge()
	}
	return nil
}

// Append pushes doc onto the Redis list using RPUSH
func (s *RedisStore) Append(ctx context.Context, doc types.StoredDocument) (int, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal document: %w", err)
	}

	n, err := s.client.RPush(ctx, s.listKey, data).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to append document to Redis: %w", err)
	}

	pos := int(n) - 1
	s.cache.Add(pos, doc)
	return pos, nil
}

// Get retrieves the document at pos using LINDEX
func (s *RedisStore) Get(ctx context.Context, pos int) (types.StoredDocument, bool, error) {
	if pos < 0 {
		return types.StoredDocument{}, false, nil
	}
	if err := s.syncGeneration(ctx); err != nil {
		return types.StoredDocument{}, false, err
	}
	if doc, ok := s.cache.Get(pos); ok {
		return doc, true, nil
	}

	result, err := s.client.LIndex(ctx, s.listKey, int64(pos)).Result()
	if err == redis.Nil {
		return types.StoredDocument{}, false, nil
	}
	if err != nil {
		return types.StoredDocument{}, false, fmt.Errorf("failed to get document from Redis: %w", err)
	}

	doc, err := decodeDocument(result)
	if err != nil {
		return types.StoredDocument{}, false, err
	}
	s.cache.Add(pos, doc)
	return doc, true, nil
}

// Len returns the list length using LLEN
func (s *RedisStore) Len(ctx context.Context) (int, error) {
	n, err := s.client.LLen(ctx, s.listKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count documents in Redis: %w", err)
	}
	return int(n), nil
}

// Range iterates over the list page by page. Pages fully present in the
// cache are served without a round trip.
func (s *RedisStore) Range(ctx context.Context, fn func(pos int, doc types.StoredDocument) error) error {
	if err := s.syncGeneration(ctx); err != nil {
		return err
	}
	n, err := s.Len(ctx)
	if err != nil {
		return err
	}

	page := make([]types.StoredDocument, 0, s.pageSize)
	for start := 0; start < n; start += s.pageSize {
		end := min(start+s.pageSize, n)

		page, err = s.loadPage(ctx, page[:0], start, end)
		if err != nil {
			return err
		}
		for i, doc := range page {
			if err := fn(start+i, doc); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *RedisStore) loadPage(ctx context.Context, page []types.StoredDocument, start, end int) ([]types.StoredDocument, error) {
	for pos := start; pos < end; pos++ {
		doc, ok := s.cache.Get(pos)
		if !ok {
			page = page[:0]
			break
		}
		page = append(page, doc)
	}
	if len(page) == end-start {
		return page, nil
	}

	results, err := s.client.LRange(ctx, s.listKey, int64(start), int64(end-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read documents from Redis: %w", err)
	}
	for i, raw := range results {
		doc, err := decodeDocument(raw)
		if err != nil {
			return nil, err
		}
		s.cache.Add(start+i, doc)
		page = append(page, doc)
	}
	return page, nil
}

func decodeDocument(raw string) (types.StoredDocument, error) {
	var doc types.StoredDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return types.StoredDocument{}, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return doc, nil
}

// Flush deletes the document list, bumps the generation and clears the cache
func (s *RedisStore) Flush(ctx context.Context) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.listKey)
	incr := pipe.Incr(ctx, s.genKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to flush Redis: %w", err)
	}
	s.cache.Purge()
	s.generation.Store(incr.Val())
	return nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
