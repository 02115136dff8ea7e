package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/houi19lb/Gstore-theme-sub001/internal/port/outbound"
	"github.com/redis/go-redis/v9"
)

// unlockScript deletes the key only while it still holds our token, so an
// expired lock taken over by another replica is never released by us.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// sweepLock implements outbound.SweepLockPort.
type sweepLock struct {
	client redis.UniversalClient
	token  string
}

// NewSweepLock creates a new sweep lock adapter. Each instance holds its own token.
func NewSweepLock(client redis.UniversalClient) outbound.SweepLockPort {
	return &sweepLock{client: client, token: uuid.NewString()}
}

func (l *sweepLock) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, key, l.token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	return ok, nil
}

func (l *sweepLock) Unlock(ctx context.Context, key string) error {
	if err := unlockScript.Run(ctx, l.client, []string{key}, l.token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("release lock %s: %w", key, err)
	}
	return nil
}

// Compile-time check
var _ outbound.SweepLockPort = (*sweepLock)(nil)
