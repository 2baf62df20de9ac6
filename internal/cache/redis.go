package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/opdqueue/config"
	"github.com/Domenick1991/opdqueue/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client     *redis.Client
	doctorsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, doctorsTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}), doctorsTTL)
}

func NewRedisCacheWithClient(client *redis.Client, doctorsTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, doctorsTTL: doctorsTTL}
}

// GetDoctors returns nil, nil on a cache miss.
func (c *RedisCache) GetDoctors(ctx context.Context) ([]domain.Doctor, error) {
	data, err := c.client.Get(ctx, doctorsKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var doctors []domain.Doctor
	if err := json.Unmarshal(data, &doctors); err != nil {
		return nil, err
	}
	return doctors, nil
}

func (c *RedisCache) SetDoctors(ctx context.Context, doctors []domain.Doctor) error {
	payload, err := json.Marshal(doctors)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, doctorsKey(), payload, c.doctorsTTL).Err()
}

func (c *RedisCache) InvalidateDoctors(ctx context.Context) error {
	return c.client.Del(ctx, doctorsKey()).Err()
}

// ClaimToken reserves token within scope for ttl. It reports false when another
// submission already holds the claim.
func (c *RedisCache) ClaimToken(ctx context.Context, scope string, token int, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, tokenClaimKey(scope, token), "claimed", ttl).Result()
}

func (c *RedisCache) ReleaseToken(ctx context.Context, scope string, token int) error {
	return c.client.Del(ctx, tokenClaimKey(scope, token)).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func doctorsKey() string {
	return "cache:doctors"
}

func tokenClaimKey(scope string, token int) string {
	return fmt.Sprintf("claim:token:%s:%d", scope, token)
}
