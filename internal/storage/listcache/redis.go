package listcache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"bugdash/internal/domain/models"
)

// Redis shares the projection across server instances. Any redis failure is
// treated as a plain cache miss; the list is always recoverable from the
// backing store.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func (r *Redis) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Get(ctx context.Context) ([]models.BugSummary, bool) {
	payload, err := r.client.Get(ctx, summaryKey).Bytes()
	if err != nil {
		return nil, false
	}

	var summaries []models.BugSummary
	if err := json.Unmarshal(payload, &summaries); err != nil {
		return nil, false
	}

	return summaries, true
}

func (r *Redis) Set(ctx context.Context, summaries []models.BugSummary) {
	payload, err := json.Marshal(summaries)
	if err != nil {
		return
	}

	r.client.Set(ctx, summaryKey, payload, r.ttl)
}

func (r *Redis) Invalidate(ctx context.Context) {
	r.client.Del(ctx, summaryKey)
}
