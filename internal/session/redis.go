package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Store backed by a redis server, for deployments where the
// hand-off has to outlive a single process.
//
// The envelope expiry is still authoritative: redis key TTL alone would
// let a value with a drifted server clock linger, so Get re-checks the
// envelope and evicts just like the in-memory store.
type Redis struct {
	client    *redis.Client
	namespace string
	now       func() time.Time
}

// NewRedis builds a redis-backed store. namespace prefixes every key so
// several checkout flows can share one server.
func NewRedis(addr, namespace string) *Redis {
	return &Redis{
		client:    redis.NewClient(&redis.Options{Addr: addr}),
		namespace: namespace,
		now:       time.Now,
	}
}

// Close releases the underlying redis connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) key(key string) string {
	return fmt.Sprintf("%s:%s", r.namespace, key)
}

func (r *Redis) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	sealed, err := sealEnvelope(value, r.now(), ttl)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(key), sealed, ttl).Err()
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	raw, err := r.client.Get(ctx, r.key(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	value, ok := openEnvelope(raw, r.now())
	if !ok {
		if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
			return "", false, err
		}
		return "", false, nil
	}
	return value, true, nil
}

func (r *Redis) Take(ctx context.Context, key string) (string, bool, error) {
	value, ok, err := r.Get(ctx, key)
	if err != nil || !ok {
		return "", false, err
	}
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}
