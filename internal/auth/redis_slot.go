package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/kodbank/backend/internal/bank"
)

// RedisSlots stores slots under "kodbank:<device>:<key>".
type RedisSlots struct {
	client *redis.Client
}

func NewRedisSlots(client *redis.Client) *RedisSlots {
	return &RedisSlots{client: client}
}

func (r *RedisSlots) Slot(device string) Slot {
	return &redisSlot{client: r.client, device: device}
}

type redisSlot struct {
	client *redis.Client
	device string
}

func (s *redisSlot) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, slotKey(s.device, key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: get %s: %v", bank.ErrStorageUnavailable, key, err)
	}
	return val, true, nil
}

func (s *redisSlot) SetAll(ctx context.Context, values map[string]string, ttl time.Duration) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range sortedKeys(values) {
			pipe.Set(ctx, slotKey(s.device, k), values[k], ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: set session: %v", bank.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *redisSlot) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = slotKey(s.device, k)
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("%w: delete session: %v", bank.ErrStorageUnavailable, err)
	}
	return nil
}
