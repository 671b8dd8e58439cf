package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultKey = "queue:feynman"

// ErrEmpty is returned by Pop when nothing arrived before the timeout.
var ErrEmpty = errors.New("queue empty")

// Job asks for one raw article to be transformed.
type Job struct {
	RawNewsID  string    `json:"rawNewsId"`
	Lang       string    `json:"lang,omitempty"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

// RedisQueue is a FIFO of jobs on a Redis list (LPUSH in, BRPOP out).
type RedisQueue struct {
	rdb *redis.Client
	key string
}

func NewRedisQueue(ctx context.Context, addr, password string, db int, key string) (*RedisQueue, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisQueueFromClient(rdb, key), nil
}

func NewRedisQueueFromClient(rdb *redis.Client, key string) *RedisQueue {
	if key == "" {
		key = DefaultKey
	}
	return &RedisQueue{rdb: rdb, key: key}
}

func (q *RedisQueue) Enqueue(ctx context.Context, job Job) error {
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := q.rdb.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("enqueue %s: %w", job.RawNewsID, err)
	}
	return nil
}

// Pop waits up to timeout for the oldest job.
func (q *RedisQueue) Pop(ctx context.Context, timeout time.Duration) (Job, error) {
	result, err := q.rdb.BRPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return Job{}, ErrEmpty
	}
	if err != nil {
		return Job{}, err
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return Job{}, fmt.Errorf("decode job: %w", err)
	}
	return job, nil
}

func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.key).Result()
}

func (q *RedisQueue) Close() error {
	return q.rdb.Close()
}
