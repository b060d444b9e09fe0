package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/oriys/cockpit/internal/domain"
	"github.com/redis/go-redis/v9"
)

// DefaultKey 是持久化槽位的固定键名。
const DefaultKey = "cockpit:logs:recent"

// RedisStore 基于 Redis 的持久化槽位实现。
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore 创建 Redis 持久化槽位。key 为空时使用 DefaultKey。
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{client: client, key: key}
}

// Connect 按地址建立 Redis 连接并验证连通性。
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}

// Save 将尾部窗口序列化后整体覆写到固定键。
func (s *RedisStore) Save(ctx context.Context, entries []domain.LogEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal persisted logs: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("save persisted logs: %w", err)
	}
	return nil
}

// Load 读取并反序列化槽位内容。键不存在视为空窗口；内容损坏返回错误，
// 由调用方记录诊断后继续无持久化运行。
func (s *RedisStore) Load(ctx context.Context) ([]domain.LogEntry, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("load persisted logs: %w", err)
	}

	var entries []domain.LogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse persisted logs: %w", err)
	}
	return entries, nil
}

// Clear 删除整个槽位。
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("clear persisted logs: %w", err)
	}
	return nil
}

// Close 关闭底层 Redis 连接。
func (s *RedisStore) Close() error {
	return s.client.Close()
}
