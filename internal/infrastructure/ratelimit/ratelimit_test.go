package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_FixedWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(10)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		res, err := s.Hit(ctx, "1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 3-i, res.Remaining)
	}

	res, err := s.Hit(ctx, "1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 4, res.Count)
	assert.Equal(t, time.Minute, res.RetryAfter(now))

	// 其他 IP 不受影響
	res, err = s.Hit(ctx, "5.6.7.8", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	// 視窗結束後重新計數
	now = now.Add(time.Minute)
	res, err = s.Hit(ctx, "1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 1, res.Count)
}

func TestMemoryStore_EvictsEarliestReset(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(2)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = s.Hit(ctx, "a", 5, time.Minute)
	now = now.Add(time.Second)
	_, _ = s.Hit(ctx, "b", 5, time.Minute)
	now = now.Add(time.Second)
	_, _ = s.Hit(ctx, "c", 5, time.Minute)

	assert.Equal(t, 2, s.Len())

	// a 已被移除，重新計數
	res, _ := s.Hit(ctx, "a", 5, time.Minute)
	assert.Equal(t, 1, res.Count)
}

func TestMemoryStore_DropsExpiredBeforeEvicting(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(2)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = s.Hit(ctx, "short", 5, time.Second)
	_, _ = s.Hit(ctx, "long", 5, time.Hour)
	_, _ = s.Hit(ctx, "long", 5, time.Hour)

	now = now.Add(2 * time.Second)
	_, _ = s.Hit(ctx, "new", 5, time.Hour)

	res, _ := s.Hit(ctx, "long", 5, time.Hour)
	assert.Equal(t, 3, res.Count)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s := NewRedisStore(client, "")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := s.Hit(ctx, "ip", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}
	res, err := s.Hit(ctx, "ip", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)

	assert.True(t, mr.Exists("ratelimit:ip"))
	assert.Equal(t, time.Minute, mr.TTL("ratelimit:ip"))

	mr.FastForward(time.Minute + time.Second)
	res, err = s.Hit(ctx, "ip", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 1, res.Count)
}
