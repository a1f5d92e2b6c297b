package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/straitwatch/backend/config"
)

// CacheService wraps redis for dashboard response caching. The cache is an
// optimization only: when redis is unreachable the service degrades to
// pass-through and the API keeps working.
type CacheService struct {
	client *redis.Client
}

func NewCacheService(cfg config.RedisConfig) *CacheService {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️ Redis unavailable, caching disabled: %v", err)
		client.Close()
		return &CacheService{client: nil}
	}

	log.Println("✓ Redis cache connected")
	return &CacheService{client: client}
}

func (s *CacheService) Available() bool {
	return s.client != nil
}

// Get unmarshals a cached value into dest. Returns false on miss or when the
// cache is disabled.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) bool {
	if s.client == nil {
		return false
	}
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("⚠️ Cache get %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false
	}
	return true
}

func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if s.client == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Printf("⚠️ Cache set %s: %v", key, err)
	}
}

func (s *CacheService) Delete(ctx context.Context, key string) {
	if s.client == nil {
		return
	}
	s.client.Del(ctx, key)
}

func (s *CacheService) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
