package reservation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/metinatakli/room-booking-bridge/internal/domain"
	"github.com/redis/go-redis/v9"
)

const LockTTL = 2 * time.Minute

// releaseLockScript deletes the lock only if it still holds our token.
var releaseLockScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	end
	return 0
`)

type Locker interface {
	Lock(ctx context.Context, orderID int64) (unlock func(), err error)
}

type RedisLocker struct {
	redis  redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisLocker(client redis.UniversalClient, logger *slog.Logger) *RedisLocker {
	return &RedisLocker{
		redis:  client,
		ttl:    LockTTL,
		logger: logger,
	}
}

func lockKey(orderID int64) string {
	return fmt.Sprintf("reservation_lock:%d", orderID)
}

// Lock returns domain.ErrSynthesisInProgress while another holder owns the
// order.
func (l *RedisLocker) Lock(ctx context.Context, orderID int64) (func(), error) {
	key := lockKey(orderID)
	token := uuid.NewString()

	acquired, err := l.redis.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire reservation lock: %w", err)
	}

	if !acquired {
		return nil, domain.ErrSynthesisInProgress
	}

	unlock := func() {
		// the request context may already be cancelled
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		deleted, err := releaseLockScript.Run(releaseCtx, l.redis, []string{key}, token).Int64()
		switch {
		case err != nil:
			l.logger.Error("failed to release reservation lock",
				"order_id", orderID,
				"ttl", l.ttl,
				"error", err)
		case deleted == 0:
			l.logger.Warn("reservation lock expired before release", "order_id", orderID)
		}
	}

	return unlock, nil
}
