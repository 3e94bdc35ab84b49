// Package cache отдает счетчики для пагинации из Redis. Значение может
// отставать на TTL, для поля total это допустимо.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/ButyrinIA/feedrank/internal/logger"
	"github.com/ButyrinIA/feedrank/internal/query"
	"github.com/ButyrinIA/feedrank/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "feed:count:"

// CountCache оборачивает хранилище; все методы, кроме CountPosts и Close, проходят насквозь
type CountCache struct {
	storage.Storage
	rdb *redis.Client
	ttl time.Duration
	log *logrus.Entry
}

// Connect создает клиента Redis и проверяет соединение
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 2 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

func New(store storage.Storage, rdb *redis.Client, ttl time.Duration) *CountCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CountCache{Storage: store, rdb: rdb, ttl: ttl, log: logger.For("count-cache")}
}

// CountPosts читает счетчик из Redis; при промахе или ошибке Redis считает в хранилище
func (c *CountCache) CountPosts(ctx context.Context, p query.Predicate) (int64, error) {
	key := Key(p)

	n, err := c.rdb.Get(ctx, key).Int64()
	if err == nil {
		return n, nil
	}
	if !errors.Is(err, redis.Nil) {
		c.log.WithError(err).Warn("redis недоступен, считаем в хранилище")
	}

	n, err = c.Storage.CountPosts(ctx, p)
	if err != nil {
		return 0, err
	}
	if err := c.rdb.Set(ctx, key, n, c.ttl).Err(); err != nil {
		c.log.WithError(err).Debug("не удалось сохранить счетчик")
	}
	return n, nil
}

func (c *CountCache) Close() error {
	rerr := c.rdb.Close()
	if err := c.Storage.Close(); err != nil {
		return err
	}
	return rerr
}

// Key - ключ Redis для предиката
func Key(p query.Predicate) string {
	sum := sha1.Sum([]byte(p.Key()))
	return keyPrefix + hex.EncodeToString(sum[:])
}
