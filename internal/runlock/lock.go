// Package runlock keeps two operators from provisioning the same project at the same time.
package runlock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/Proton-105/zaza-provision/internal/errors"
	"github.com/Proton-105/zaza-provision/pkg/metrics"
)

const (
	lockKeyPattern = "provision:lock:%s"
	unknownHolder  = "unknown"
)

// ErrLocked indicates that another run already holds the lock.
var ErrLocked = errors.New("another provisioning run holds the lock")

// Lock is a Redis SETNX lock keyed by project host and owned by one run id.
// A nil client turns every operation into a logged no-op.
type Lock struct {
	client *redis.Client
	log    *slog.Logger
	key    string
	owner  string
	ttl    time.Duration
}

// releaseScript deletes the key only when it still belongs to owner.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// New builds a lock for the project at projectURL.
func New(client *redis.Client, projectURL, owner string, ttl time.Duration, log *slog.Logger) *Lock {
	if log == nil {
		log = slog.Default()
	}

	return &Lock{
		client: client,
		log:    log,
		key:    fmt.Sprintf(lockKeyPattern, projectKey(projectURL)),
		owner:  owner,
		ttl:    ttl,
	}
}

// Key returns the Redis key guarding the project.
func (l *Lock) Key() string {
	return l.key
}

// Acquire takes the lock or returns ErrLocked wrapped in a state error.
func (l *Lock) Acquire(ctx context.Context) error {
	if l.client == nil {
		l.log.Warn("redis client not configured for run lock; skipping", "key", l.key)
		return nil
	}

	acquired, err := l.client.SetNX(ctx, l.key, l.owner, l.ttl).Result()
	if err != nil {
		l.log.Warn("failed to acquire run lock", "key", l.key, "error", err)
		metrics.RecordLockOperation("acquire", "error")
		return fmt.Errorf("acquire run lock: %w", err)
	}

	if !acquired {
		holder, getErr := l.client.Get(ctx, l.key).Result()
		if getErr != nil {
			l.log.Warn("failed to read run lock holder", "key", l.key, "error", getErr)
			holder = unknownHolder
		}
		l.log.Warn("run lock already held", "key", l.key, "holder", holder)
		metrics.RecordLockOperation("acquire", "held")
		return fmt.Errorf("%w: %w", apperrors.NewStateError(fmt.Sprintf("run lock %s held by %s", l.key, holder)), ErrLocked)
	}

	metrics.RecordLockOperation("acquire", "ok")
	return nil
}

// Release drops the lock if this run still owns it.
func (l *Lock) Release(ctx context.Context) error {
	if l.client == nil {
		return nil
	}

	if err := releaseScript.Run(ctx, l.client, []string{l.key}, l.owner).Err(); err != nil && !errors.Is(err, redis.Nil) {
		l.log.Warn("failed to release run lock", "key", l.key, "error", err)
		metrics.RecordLockOperation("release", "error")
		return fmt.Errorf("release run lock: %w", err)
	}

	metrics.RecordLockOperation("release", "ok")
	return nil
}

// NewClient connects to Redis and verifies the connection with Ping. A blank addr returns a nil client.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return rdb, nil
}

func projectKey(projectURL string) string {
	if u, err := url.Parse(projectURL); err == nil && u.Host != "" {
		return u.Host
	}
	return projectURL
}
