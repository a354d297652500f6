package lifecycle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestShutdown_RunsHooksInReverseOrder(t *testing.T) {
	s := NewShutdown(testLogger())

	var order []string
	for _, name := range []string{HookCloseRedis, HookReleaseLock, HookPushMetrics} {
		name := name
		s.Register(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}
	s.Register("nil hook", nil)

	require.NoError(t, s.Execute(context.Background()))
	assert.Equal(t, []string{HookPushMetrics, HookReleaseLock, HookCloseRedis}, order)
}

func TestShutdown_ContinuesAfterFailure(t *testing.T) {
	s := NewShutdown(testLogger())
	errRedis := errors.New("redis gone")

	closed := false
	s.Register(HookCloseRedis, func(context.Context) error { closed = true; return nil })
	s.Register(HookReleaseLock, func(context.Context) error { return errRedis })

	err := s.Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errRedis)
	assert.Contains(t, err.Error(), HookReleaseLock)
	assert.True(t, closed)
}

func TestShutdown_ExecutesOnce(t *testing.T) {
	s := NewShutdown(nil)

	calls := 0
	s.Register(HookFlushSentry, func(context.Context) error { calls++; return nil })

	require.NoError(t, s.Execute(context.Background()))
	require.NoError(t, s.Execute(context.Background()))
	assert.Equal(t, 1, calls)
}
