package telegram

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dedupePrefix     = "telegram:update:v1:"
	DefaultDedupeTTL = 10 * time.Minute
)

// Deduper claims an update id so a redelivered update is handled once.
type Deduper interface {
	Claim(ctx context.Context, updateID int64) (bool, error)
}

// RedisDeduper records claimed update ids with SETNX. A nil client claims everything.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDeduper builds a deduper; ttl <= 0 means DefaultDedupeTTL.
func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	if ttl <= 0 {
		ttl = DefaultDedupeTTL
	}
	return &RedisDeduper{client: client, ttl: ttl}
}

// Claim reports whether updateID was seen for the first time.
func (d *RedisDeduper) Claim(ctx context.Context, updateID int64) (bool, error) {
	if d == nil || d.client == nil {
		return true, nil
	}
	ok, err := d.client.SetNX(ctx, dedupePrefix+strconv.FormatInt(updateID, 10), 1, d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("telegram: claim update %d: %w", updateID, err)
	}
	return ok, nil
}
