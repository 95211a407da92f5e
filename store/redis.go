package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/microcrowd/engine/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// =============================================================================
// 💾 Redis 存储
// =============================================================================

const redisKeyPrefix = "microcrowd:conversation:"

// RedisConfig Redis 存储配置。
type RedisConfig struct {
	Addr     string        `yaml:"addr" json:"addr"`
	Password string        `yaml:"password" json:"password"`
	DB       int           `yaml:"db" json:"db"`
	PoolSize int           `yaml:"pool_size" json:"pool_size"`
	// TTL 是快照的过期时间，0 表示永不过期。
	TTL time.Duration `yaml:"ttl" json:"ttl"`
}

// DefaultRedisConfig 返回默认 Redis 配置。
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:     "localhost:6379",
		DB:       0,
		PoolSize: 10,
		TTL:      24 * time.Hour,
	}
}

// RedisStore 以 Redis 存储会话快照，适合多实例共享归档。
type RedisStore struct {
	client *redis.Client
	config RedisConfig
	logger *zap.Logger
}

// NewRedisStore 连接 Redis 并验证连通性。
func NewRedisStore(config RedisConfig, logger *zap.Logger) (*RedisStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
		PoolSize: config.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("redis snapshot store initialized", zap.String("addr", config.Addr))

	return &RedisStore{
		client: client,
		config: config,
		logger: logger.With(zap.String("component", "store")),
	}, nil
}

func (s *RedisStore) SaveConversation(ctx context.Context, conv *types.Conversation) error {
	if conv == nil || conv.ID == "" {
		return fmt.Errorf("conversation id is required")
	}

	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation snapshot: %w", err)
	}

	if err := s.client.Set(ctx, redisKeyPrefix+conv.ID, data, s.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to save conversation snapshot: %w", err)
	}
	return nil
}

func (s *RedisStore) LoadConversation(ctx context.Context, id string) (*types.Conversation, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation snapshot: %w", err)
	}

	var conv types.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation snapshot: %w", err)
	}
	return &conv, nil
}

func (s *RedisStore) ListConversationIDs(ctx context.Context) ([]string, error) {
	var (
		ids    []string
		cursor uint64
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, redisKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to list conversations: %w", err)
		}
		for _, key := range keys {
			ids = append(ids, key[len(redisKeyPrefix):])
		}
		if next == 0 {
			return ids, nil
		}
		cursor = next
	}
}

func (s *RedisStore) DeleteConversation(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete conversation snapshot: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
