package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisQueue_FIFO(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	ctx := context.Background()
	q, err := NewRedisQueue(ctx, mr.Addr(), "", 0, "")
	require.NoError(t, err)
	defer q.Close()

	require.NoError(t, q.Enqueue(ctx, Job{RawNewsID: "first", Lang: "ko"}))
	require.NoError(t, q.Enqueue(ctx, Job{RawNewsID: "second"}))

	// Check the raw list using miniredis direct inspection
	items, err := mr.List(DefaultKey)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	job, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "first", job.RawNewsID)
	assert.Equal(t, "ko", job.Lang)
	assert.False(t, job.EnqueuedAt.IsZero())

	job, err = q.Pop(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "second", job.RawNewsID)
}

func TestRedisQueue_PopEmpty(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	q := NewRedisQueueFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "queue:test")
	defer q.Close()

	_, err = q.Pop(context.Background(), 100*time.Millisecond)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestRedisQueue_BadJobPayload(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	_, err = mr.Lpush(DefaultKey, "not json")
	require.NoError(t, err)

	q := NewRedisQueueFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "")
	defer q.Close()

	_, err = q.Pop(context.Background(), time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode job")
}

func TestNewRedisQueue_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := NewRedisQueue(ctx, "127.0.0.1:1", "", 0, "")
	assert.Error(t, err)
}
