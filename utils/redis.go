package utils

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	redisClient *redis.Client
	redisCtx    = context.Background()
)

// InitRedis connects the shared Redis client.
func InitRedis() error {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))

	redisClient = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	})

	if err := redisClient.Ping(redisCtx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	log.Println("✅ Redis connected:", addr)
	return nil
}

// RevokeToken marks a refresh token as revoked until its natural expiry.
func RevokeToken(token string, ttl time.Duration) error {
	if redisClient == nil {
		return nil
	}
	return redisClient.Set(redisCtx, "revoked:"+token, "1", ttl).Err()
}

// IsTokenRevoked reports whether the refresh token has been revoked.
func IsTokenRevoked(token string) bool {
	if redisClient == nil {
		return false
	}
	n, err := redisClient.Exists(redisCtx, "revoked:"+token).Result()
	return err == nil && n > 0
}

// GatePassCacheKey builds the cache key for a gate-pass verification. The key
// carries the estate code so a pass cached at its home gate never answers for
// another estate.
func GatePassCacheKey(estateCode, passCode string) string {
	return "gatepass:" + estateCode + ":" + passCode
}

// CacheSet stores a short-lived value, used for hot gate verification lookups.
func CacheSet(key, value string, ttl time.Duration) {
	if redisClient == nil {
		return
	}
	if err := redisClient.Set(redisCtx, key, value, ttl).Err(); err != nil {
		log.Printf("⚠️ Redis cache set failed for %s: %v", key, err)
	}
}

// CacheGet fetches a cached value; ok is false on miss or when Redis is down.
func CacheGet(key string) (string, bool) {
	if redisClient == nil {
		return "", false
	}
	val, err := redisClient.Get(redisCtx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// CacheDelete drops cached entries, e.g. after a gate pass is revoked.
func CacheDelete(keys ...string) {
	if redisClient == nil || len(keys) == 0 {
		return
	}
	redisClient.Del(redisCtx, keys...)
}
