package lifecycle

import "context"

// Hook describes a named cleanup step run when the provisioner exits.
type Hook struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Common hook names used by the provisioner.
const (
	HookReleaseLock = "release_lock"
	HookCloseRedis  = "close_redis"
	HookFlushSentry = "flush_sentry"
	HookPushMetrics = "push_metrics"
)
