package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/odyssey-crm/internal/listview"
)

// Redis persists state under "<prefix>:<key>" with a sliding TTL.
type Redis struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedis constructs a Redis store. A zero ttl keeps entries forever.
func NewRedis(client redis.Cmdable, prefix string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = "listview"
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

// Load reads the state and, when a ttl is set, restarts its expiry.
func (r *Redis) Load(ctx context.Context, key string) ([]byte, error) {
	var cmd *redis.StringCmd
	if r.ttl > 0 {
		cmd = r.client.GetEx(ctx, r.redisKey(key), r.ttl)
	} else {
		cmd = r.client.Get(ctx, r.redisKey(key))
	}
	data, err := cmd.Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, listview.ErrStateNotFound
		}
		return nil, fmt.Errorf("storage/redis: get %s: %w", key, err)
	}
	return data, nil
}

func (r *Redis) Save(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, r.redisKey(key), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("storage/redis: set %s: %w", key, err)
	}
	return nil
}

// Scoped returns a Persister whose keys are prefixed with scope, e.g. a session id.
func (r *Redis) Scoped(scope string) listview.Persister {
	return scopedPersister{scope: scope, next: r}
}

func (r *Redis) redisKey(key string) string {
	return r.prefix + ":" + key
}

type scopedPersister struct {
	scope string
	next  listview.Persister
}

func (s scopedPersister) Load(ctx context.Context, key string) ([]byte, error) {
	return s.next.Load(ctx, s.scope+":"+key)
}

func (s scopedPersister) Save(ctx context.Context, key string, data []byte) error {
	return s.next.Save(ctx, s.scope+":"+key, data)
}
