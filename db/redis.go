package db

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const ReclassifyQueueKey = "reddit-analytics:queue:reclassify"

type Queue struct {
	client *redis.Client
}

func ConnectRedis(redisURL string) (*Queue, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}

	client := redis.NewClient(opt)

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		client.Close()
		return nil, err
	}

	return &Queue{client: client}, nil
}

func (q *Queue) Push(ctx context.Context, queueKey string, data string) error {
	return q.client.LPush(ctx, queueKey, data).Err()
}

func (q *Queue) Pop(ctx context.Context, queueKey string, timeout time.Duration) (string, error) {
	result, err := q.client.BRPop(ctx, timeout, queueKey).Result()
	if err != nil {
		return "", err
	}
	return result[1], nil
}

func (q *Queue) Len(ctx context.Context, queueKey string) (int64, error) {
	return q.client.LLen(ctx, queueKey).Result()
}

func (q *Queue) Close() error {
	return q.client.Close()
}
