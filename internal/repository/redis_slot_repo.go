package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix はスロットキーに付与するRedisキープレフィックス。
const redisKeyPrefix = "supportdesk:slot:"

// RedisSlotRepo はRedisの文字列キーを使用したスロットリポジトリ。
// TTLは設定しない。
type RedisSlotRepo struct {
	client redis.UniversalClient
}

// NewRedisSlotRepo はRedisSlotRepoを生成する。
func NewRedisSlotRepo(client redis.UniversalClient) *RedisSlotRepo {
	return &RedisSlotRepo{client: client}
}

// Get は指定キーの値を取得する。キーが存在しない場合はnil, nilを返す。
func (r *RedisSlotRepo) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}
	return value, nil
}

// Put は指定キーの値を有効期限なしで保存する。
func (r *RedisSlotRepo) Put(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, redisKeyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to put slot: %w", err)
	}
	return nil
}

// Delete は指定キーを削除する。
func (r *RedisSlotRepo) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}
	return nil
}

// compile-time interface check
var _ SlotRepository = (*RedisSlotRepo)(nil)
