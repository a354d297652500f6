package runlock

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Proton-105/zaza-provision/internal/errors"
)

const projectURL = "https://example.supabase.co"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestLock_AcquireAndRelease(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	lock := New(client, projectURL, "run-a", time.Minute, testLogger())
	assert.Equal(t, "provision:lock:example.supabase.co", lock.Key())

	require.NoError(t, lock.Acquire(ctx))
	got, err := mr.Get(lock.Key())
	require.NoError(t, err)
	assert.Equal(t, "run-a", got)
	assert.Equal(t, time.Minute, mr.TTL(lock.Key()))

	require.NoError(t, lock.Release(ctx))
	assert.False(t, mr.Exists(lock.Key()))
}

func TestLock_SecondRunIsRejected(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()

	first := New(client, projectURL, "run-a", time.Minute, testLogger())
	second := New(client, projectURL, "run-b", time.Minute, testLogger())

	require.NoError(t, first.Acquire(ctx))

	err := second.Acquire(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLocked)
	assert.Equal(t, apperrors.CodeState, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "run-a")
}

func TestLock_UnreadableHolderIsReportedUnknown(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	lock := New(client, projectURL, "run-a", time.Minute, testLogger())
	_, err := mr.Lpush(lock.Key(), "not-a-lock")
	require.NoError(t, err)

	err = lock.Acquire(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLocked)
	assert.Contains(t, err.Error(), "held by unknown")
}

func TestLock_ReleaseKeepsForeignLock(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	owner := New(client, projectURL, "run-a", time.Minute, testLogger())
	other := New(client, projectURL, "run-b", time.Minute, testLogger())

	require.NoError(t, owner.Acquire(ctx))
	require.NoError(t, other.Release(ctx))

	got, err := mr.Get(owner.Key())
	require.NoError(t, err)
	assert.Equal(t, "run-a", got)
}

func TestLock_ExpiresAfterTTL(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, New(client, projectURL, "run-a", time.Minute, testLogger()).Acquire(ctx))
	mr.FastForward(2 * time.Minute)

	assert.NoError(t, New(client, projectURL, "run-b", time.Minute, testLogger()).Acquire(ctx))
}

func TestLock_NilClientIsNoop(t *testing.T) {
	lock := New(nil, projectURL, "run-a", time.Minute, testLogger())

	assert.NoError(t, lock.Acquire(context.Background()))
	assert.NoError(t, lock.Release(context.Background()))
}

func TestNewClient(t *testing.T) {
	client, err := NewClient(context.Background(), "", "", 0)
	require.NoError(t, err)
	assert.Nil(t, client)

	mr := miniredis.RunT(t)
	client, err = NewClient(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	require.NotNil(t, client)
	_ = client.Close()
}
