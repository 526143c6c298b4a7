// Package cache is a read-through cache for upstream CRM queries, with
// explicit invalidation after mutations.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrMiss is returned by Store.Get for absent keys.
var ErrMiss = errors.New("cache miss")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return b, err
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// QueryCache wraps a Store. A nil Store disables caching. Store failures
// are logged and bypassed so the cache can never fail a read.
type QueryCache struct {
	store  Store
	prefix string
	ttl    time.Duration
	table  InvalidationTable
	logger *zap.Logger
}

func NewQueryCache(store Store, prefix string, ttl time.Duration, table InvalidationTable, logger *zap.Logger) *QueryCache {
	if table == nil {
		table = DefaultInvalidationTable()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryCache{store: store, prefix: prefix, ttl: ttl, table: table, logger: logger}
}

// Key is "<prefix>:<query>" or "<prefix>:<query>:<customerID>".
func (c *QueryCache) Key(q Query, customerID string) string {
	key := string(q)
	if c.prefix != "" {
		key = c.prefix + ":" + key
	}
	if customerID != "" {
		key += ":" + customerID
	}
	return key
}

// Fetch returns the cached value for (q, customerID) or calls load and
// caches its result. Values are stored as JSON and decoded with UseNumber
// so raw upstream numbers survive a round trip unchanged.
func Fetch[T any](ctx context.Context, c *QueryCache, q Query, customerID string, load func(context.Context) (T, error)) (T, error) {
	if c == nil || c.store == nil {
		return load(ctx)
	}

	key := c.Key(q, customerID)
	if b, err := c.store.Get(ctx, key); err == nil {
		var v T
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.UseNumber()
		if err := dec.Decode(&v); err == nil {
			return v, nil
		}
		c.logger.Warn("discarding undecodable cache entry", zap.String("key", key))
	} else if !errors.Is(err, ErrMiss) {
		c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}

	b, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return v, nil
	}
	if err := c.store.Set(ctx, key, b, c.ttl); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}

// Invalidate drops every query the table lists for op and customerID and
// returns the keys it targeted.
func (c *QueryCache) Invalidate(ctx context.Context, op Operation, customerID string) []string {
	if c == nil {
		return nil
	}
	queries := c.table[op]
	keys := make([]string, 0, len(queries))
	for _, q := range queries {
		id := customerID
		if q == QueryCustomerIDs {
			id = ""
		}
		keys = append(keys, c.Key(q, id))
	}
	if c.store == nil || len(keys) == 0 {
		return keys
	}
	if err := c.store.Del(ctx, keys...); err != nil {
		c.logger.Warn("cache invalidation failed",
			zap.String("operation", string(op)),
			zap.String("customer_id", customerID),
			zap.Error(err),
		)
	}
	return keys
}
