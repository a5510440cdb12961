package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"shop-svc/models"
)

// cartTTL is refreshed on every write, so an active session never loses
// its cart while an abandoned one eventually expires with the session.
const cartTTL = 24 * time.Hour

type RedisStore struct {
	rdb *redis.Client
}

func InitRedis(logger *zap.Logger) (*redis.Client, error) {
	host := getEnv("REDIS_HOST", "localhost")
	port := getEnv("REDIS_PORT", "6379")
	password := getEnv("REDIS_PASSWORD", "")

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established")
	return rdb, nil
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

func (s *RedisStore) load(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	data, err := s.rdb.Get(ctx, cartKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var items []models.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		// A corrupt cart is treated as empty, same as a broken
		// session blob in the original storefront.
		return nil, nil
	}
	return items, nil
}

func (s *RedisStore) save(ctx context.Context, sessionID string, items []models.CartItem) error {
	if len(items) == 0 {
		return s.rdb.Del(ctx, cartKey(sessionID)).Err()
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}
	return s.rdb.Set(ctx, cartKey(sessionID), data, cartTTL).Err()
}

func (s *RedisStore) Add(ctx context.Context, sessionID string, item models.CartItem) error {
	items, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	return s.save(ctx, sessionID, mergeAdd(items, item))
}

func (s *RedisStore) Update(ctx context.Context, sessionID string, key models.CartKey, quantity int) error {
	items, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	return s.save(ctx, sessionID, setQuantity(items, key, quantity))
}

func (s *RedisStore) Remove(ctx context.Context, sessionID string, key models.CartKey) error {
	items, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	return s.save(ctx, sessionID, removeItem(items, key))
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, cartKey(sessionID)).Err()
}

func (s *RedisStore) Items(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	return s.load(ctx, sessionID)
}

func (s *RedisStore) Count(ctx context.Context, sessionID string) (int, error) {
	items, err := s.load(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return totalQuantity(items), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
