package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lunavoice/billing/internal/pkg/env"
	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// SetupCache initializes the connection to the Redis cache server.
func SetupCache() {
	host := env.GetEnv("CACHE_HOST", "localhost")
	port := env.GetEnv("CACHE_PORT", "6379")

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: "", // no password set
		DB:       0,  // use default DB
	})

	pong, err := client.Ping(context.Background()).Result()
	if err != nil {
		log.Printf("Warning: Could not connect to Redis cache: %v", err)
	} else {
		log.Printf("Successfully connected to Redis cache: %s", pong)
	}
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	if client == nil {
		SetupCache()
	}
	return client
}

// Set stores a value in the cache with the given key and expiration time
func Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return GetClient().Set(ctx, key, value, expiration).Err()
}

// Get retrieves a value from the cache by key
func Get(ctx context.Context, key string) (string, error) {
	return GetClient().Get(ctx, key).Result()
}

// Delete removes a value from the cache by key
func Delete(ctx context.Context, key string) error {
	return GetClient().Del(ctx, key).Err()
}

// RedisStore adapts the shared client to the identity resolver's cache
// interface so the resolver stays testable without a live Redis.
type RedisStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisStore(ttl time.Duration) *RedisStore {
	return &RedisStore{Client: GetClient(), TTL: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool) {
	val, err := s.Client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (s *RedisStore) Set(ctx context.Context, key, value string) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if err := s.Client.Set(ctx, key, value, ttl).Err(); err != nil {
		log.Printf("Warning: cache set failed for %s: %v", key, err)
	}
}
