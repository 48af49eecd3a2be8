package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Domenick1991/shortlet/config"
	"github.com/Domenick1991/shortlet/internal/availability"
	"github.com/Domenick1991/shortlet/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client        *redis.Client
	propertiesTTL time.Duration
	datesTTL      time.Duration
}

func NewRedisCache(cfg config.RedisConfig, propertiesTTL, datesTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		propertiesTTL,
		datesTTL,
	)
}

func NewRedisCacheWithClient(client *redis.Client, propertiesTTL, datesTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, propertiesTTL: propertiesTTL, datesTTL: datesTTL}
}

func (c *RedisCache) Client() *redis.Client {
	return c.client
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) GetProperties(ctx context.Context) ([]domain.Property, error) {
	data, err := c.client.Get(ctx, propertiesKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var properties []domain.Property
	if err := json.Unmarshal(data, &properties); err != nil {
		return nil, err
	}
	return properties, nil
}

func (c *RedisCache) SetProperties(ctx context.Context, properties []domain.Property) error {
	payload, err := json.Marshal(properties)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, propertiesKey(), string(payload), c.propertiesTTL).Err()
}

func (c *RedisCache) InvalidateProperties(ctx context.Context) error {
	return c.client.Del(ctx, propertiesKey()).Err()
}

// GetUnavailableDates returns nil, nil on a miss.
func (c *RedisCache) GetUnavailableDates(ctx context.Context, propertyID string) (*availability.UnavailableSet, error) {
	data, err := c.client.Get(ctx, datesKey(propertyID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var set availability.UnavailableSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

func (c *RedisCache) SetUnavailableDates(ctx context.Context, set *availability.UnavailableSet) error {
	payload, err := json.Marshal(set)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, datesKey(set.PropertyID), string(payload), c.datesTTL).Err()
}

func (c *RedisCache) InvalidateUnavailableDates(ctx context.Context, propertyID string) error {
	return c.client.Del(ctx, datesKey(propertyID)).Err()
}

func propertiesKey() string {
	return "cache:properties"
}

func datesKey(propertyID string) string {
	return "cache:property:" + propertyID + ":unavailable"
}

var _ availability.Cache = (*RedisCache)(nil)
