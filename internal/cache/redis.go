package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/skyconnect/config"
	"github.com/Domenick1991/skyconnect/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache keeps generated offers per search key and the wizard state of
// every open session.
type RedisCache struct {
	client     redis.Cmdable
	offersTTL  time.Duration
	sessionTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, offersTTL, sessionTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		offersTTL,
		sessionTTL,
	)
}

func NewRedisCacheWithClient(client redis.Cmdable, offersTTL, sessionTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, offersTTL: offersTTL, sessionTTL: sessionTTL}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) GetOffers(ctx context.Context, key string) ([]domain.FlightOffer, error) {
	data, err := c.client.Get(ctx, offersKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var offers []domain.FlightOffer
	if err := json.Unmarshal(data, &offers); err != nil {
		return nil, err
	}
	return offers, nil
}

func (c *RedisCache) SetOffers(ctx context.Context, key string, offers []domain.FlightOffer) error {
	payload, err := json.Marshal(offers)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, offersKey(key), payload, c.offersTTL).Err()
}

// CreateSession stores the initial state of a new session. It reports false
// if the id is already taken.
func (c *RedisCache) CreateSession(ctx context.Context, id string, state any) (bool, error) {
	payload, err := json.Marshal(state)
	if err != nil {
		return false, err
	}
	return c.client.SetNX(ctx, sessionKey(id), payload, c.sessionTTL).Result()
}

func (c *RedisCache) LoadSession(ctx context.Context, id string, dst any) error {
	data, err := c.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.ErrSessionNotFound
		}
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode session %s: %w", id, err)
	}
	return nil
}

// SaveSession overwrites the session state and refreshes its expiry.
func (c *RedisCache) SaveSession(ctx context.Context, id string, state any) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, sessionKey(id), payload, c.sessionTTL).Err()
}

// AcquireSessionLock takes the per-session lock for ttl. It reports false if
// another request holds it.
func (c *RedisCache) AcquireSessionLock(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, sessionLockKey(id), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseSessionLock(ctx context.Context, id string) error {
	return c.client.Del(ctx, sessionLockKey(id)).Err()
}

func offersKey(key string) string {
	return "cache:offers:" + key
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

func sessionLockKey(id string) string {
	return fmt.Sprintf("lock:session:%s", id)
}
