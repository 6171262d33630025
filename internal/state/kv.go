package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"photostudio-bot/internal/config"
	"photostudio-bot/internal/database"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// KV - строковое хранилище по ключу. Get возвращает ok=false, если ключа нет.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// NewKV выбирает хранилище по state.backend
func NewKV(cfg config.State, db *sqlx.DB, logger *zap.Logger) (KV, error) {
	switch cfg.Backend {
	case "", "sql":
		return database.NewSettingsRepository(db, logger), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return NewRedisKV(client, cfg.Prefix, logger), nil
	case "memory":
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.Backend)
	}
}

// RedisKV хранит ключи в Redis без срока жизни
type RedisKV struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

func NewRedisKV(client *redis.Client, prefix string, logger *zap.Logger) *RedisKV {
	return &RedisKV{client: client, prefix: prefix, logger: logger}
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		r.logger.Error("Ошибка чтения из Redis", zap.Error(err), zap.String("key", key))
		return "", false, err
	}
	return v, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		r.logger.Error("Ошибка записи в Redis", zap.Error(err), zap.String("key", key))
		return err
	}
	return nil
}

func (r *RedisKV) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		r.logger.Error("Ошибка удаления из Redis", zap.Error(err), zap.String("key", key))
		return err
	}
	return nil
}

// Ping нужен для проверки готовности
func (r *RedisKV) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisKV) Close() error {
	return r.client.Close()
}

// MemoryKV - хранилище в памяти процесса, теряется при перезапуске
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
