package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/omnix/pkg/model"
	"github.com/m-mizutani/omnix/pkg/utils/logging"
	"github.com/redis/go-redis/v9"
)

// Redis stores JSON encoded cache entries. The Redis key expiry is only a
// storage hint; freshness is decided by the entry's ExpiresAt on read.
type Redis struct {
	client *redis.Client
	opts   *options
}

// NewRedis creates a Redis backed evidence cache
func NewRedis(addr, password string, db int, opts ...Option) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	return &Redis{
		client: client,
		opts:   newOptions(opts),
	}
}

func (r *Redis) key(key model.ProductKey) string {
	return r.opts.keyPrefix + key.String()
}

func (r *Redis) GetEvidence(ctx context.Context, key model.ProductKey) (*model.ResearchResult, error) {
	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get cache entry", goerr.V("key", key))
	}

	var entry model.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, goerr.Wrap(err, "failed to decode cache entry", goerr.V("key", key))
	}

	if entry.Expired(r.opts.now()) {
		if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
			logging.From(ctx).Warn("failed to delete expired cache entry", "key", key, "error", err)
		}
		return nil, nil
	}

	return entry.Result(), nil
}

func (r *Redis) PutEvidence(ctx context.Context, key model.ProductKey, result *model.ResearchResult) error {
	entry := model.NewCacheEntry(key, result, r.opts.now())
	raw, err := json.Marshal(entry)
	if err != nil {
		return goerr.Wrap(err, "failed to encode cache entry", goerr.V("key", key))
	}

	if err := r.client.Set(ctx, r.key(key), raw, model.EvidenceTTL).Err(); err != nil {
		return goerr.Wrap(err, "failed to put cache entry", goerr.V("key", key))
	}
	return nil
}

// Ping checks connectivity to the Redis server
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return goerr.Wrap(err, "redis ping failed")
	}
	return nil
}

// Close releases the underlying client
func (r *Redis) Close() error {
	return r.client.Close()
}
