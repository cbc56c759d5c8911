package data

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// EventChannel carries domain events (venture created, listing updated) for
// downstream consumers such as notification workers.
const EventChannel = "venturehub:events"

const statsTTL = 30 * time.Second

// MustRedis connects to redis or exits.
func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	rdb := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis ping: %v", err)
	}
	return rdb
}

// PublishEvent fans a domain event out on the shared channel. Failures are
// logged and ignored; events are advisory, not part of any workflow.
func PublishEvent(ctx context.Context, rdb *redis.Client, payload map[string]any) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("event marshal: %v", err)
		return
	}
	if err := rdb.Publish(ctx, EventChannel, body).Err(); err != nil {
		log.Printf("event publish: %v", err)
	}
}

func statsKey(ventureID string) string {
	return "venture:stats:" + ventureID
}

// CacheStats stores a venture stats snapshot with a short TTL.
func CacheStats(ctx context.Context, rdb *redis.Client, ventureID string, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = rdb.Set(ctx, statsKey(ventureID), body, statsTTL).Err()
}

// CachedStats loads a cached stats snapshot into out. Returns false on miss.
func CachedStats(ctx context.Context, rdb *redis.Client, ventureID string, out any) bool {
	body, err := rdb.Get(ctx, statsKey(ventureID)).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(body, out) == nil
}
