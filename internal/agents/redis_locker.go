package agents

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"voiceagent-platform/pkg/utils"
)

// RedisLocker implements SubmitLocker over Redis so double submits are
// collapsed across dashboard instances, not just within one process.
type RedisLocker struct {
	RDB *redis.Client
}

func (l RedisLocker) Acquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	return utils.AcquireSubmitLock(ctx, l.RDB, key, owner, ttl)
}

func (l RedisLocker) Release(ctx context.Context, key, owner string) error {
	return utils.ReleaseSubmitLock(ctx, l.RDB, key, owner)
}
