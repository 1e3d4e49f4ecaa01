package lease

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long a crashed holder can wedge a key. Pick a
// longer TTL when constructing the lease for historical imports.
const DefaultTTL = 30 * time.Minute

// RedisLease is the multi-instance backend: SET NX with a TTL.
type RedisLease struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisLease(client *redis.Client, ttl time.Duration) *RedisLease {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisLease{client: client, ttl: ttl, prefix: "sync_lease:"}
}

func (l *RedisLease) TryAcquire(ctx context.Context, key string) (bool, error) {
	return l.client.SetNX(ctx, l.prefix+key, "1", l.ttl).Result()
}

func (l *RedisLease) Release(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.prefix+key).Err()
}
