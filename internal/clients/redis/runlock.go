package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/tiertok/tiertok-backend/internal/logger"
	"github.com/tiertok/tiertok-backend/internal/services"
	"github.com/tiertok/tiertok-backend/internal/utils"
)

// releaseScript deletes the lock only when it still holds our token, so an
// expired lease cannot release somebody else's run.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`

type runLock struct {
	log *logger.Logger
	rdb *goredis.Client
	key string
	ttl time.Duration
}

// NewRunLock builds the distribution run lock on a SET NX lease. The TTL
// caps how long a crashed run can block the next one.
func NewRunLock(log *logger.Logger) (services.RunLock, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(utils.GetEnv("REDIS_ADDR", "", log))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	key := utils.GetEnv("DISTRIBUTION_LOCK_KEY", "tiertok:distribution:lock", log)
	ttlSeconds := utils.GetEnvAsInt("DISTRIBUTION_LOCK_TTL_SECONDS", 1800, log)

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &runLock{
		log: log.With("service", "RedisRunLock"),
		rdb: rdb,
		key: key,
		ttl: time.Duration(ttlSeconds) * time.Second,
	}, nil
}

func (l *runLock) TryLock(ctx context.Context) (func(context.Context) error, bool, error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	release := func(ctx context.Context) error {
		if err := l.rdb.Eval(ctx, releaseScript, []string{l.key}, token).Err(); err != nil {
			l.log.Warn("Failed to release distribution lock", "error", err)
			return err
		}
		return nil
	}
	return release, true, nil
}
