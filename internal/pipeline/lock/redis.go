package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"onboard/internal/platform/redis"
	"onboard/pkg/platform/sentinel"
)

// Lease TTL bounds how long a crashed run can block its employee.
const leaseTTL = 5 * time.Minute

// releaseScript deletes the lease only if this holder still owns it, so a
// slow release after lease expiry cannot free someone else's lock.
var releaseScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Redis is the multi-process locker backed by a SET NX lease.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) (*Redis, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &Redis{client: client}, nil
}

func (l *Redis) Acquire(ctx context.Context, employeeID int64) (func(), error) {
	key := fmt.Sprintf("onboard:run:%d", employeeID)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, leaseTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, sentinel.ErrConflict
	}

	return func() {
		// Release outlives the request context.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.client, []string{key}, token).Err()
	}, nil
}
